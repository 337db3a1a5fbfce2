package export

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// frontmatter is the metadata block at the top of every exported file.
// Field order is the file format's compatibility contract; yaml.v3
// preserves struct field order on marshal.
type frontmatter struct {
	Title           string `yaml:"title"`
	Author          string `yaml:"author"`
	Genre           string `yaml:"genre"`
	ReadingDuration string `yaml:"reading_duration"`
	Source          string `yaml:"source"`
	StatsAvailable  bool   `yaml:"stats_available"`
	Duplicate       bool   `yaml:"duplicate,omitempty"`
}

// Render produces the markdown document for one book: a frontmatter block
// followed by its annotations in creation order, separated by rules.
// Per item the structural order is tags, highlight, note, chapter
// progress, creation timestamp.
func Render(b *Book) (string, error) {
	fm := frontmatter{
		Title:           b.Key.Title,
		Author:          b.Key.Author,
		Genre:           PlaceholderUnknown,
		ReadingDuration: PlaceholderUnknown,
		Source:          string(b.Source),
		StatsAvailable:  b.StatsAvailable,
		Duplicate:       b.Duplicate,
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(head)
	sb.WriteString("---\n\n")

	blocks := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		blocks = append(blocks, renderItem(item))
	}
	sb.WriteString(strings.Join(blocks, "\n\n---\n\n"))
	sb.WriteString("\n")
	return sb.String(), nil
}

func renderItem(item Item) string {
	var lines []string
	if len(item.Tags) > 0 {
		lines = append(lines, strings.Join(item.Tags, " "))
	}
	if item.Highlight != "" {
		lines = append(lines, quote(item.Highlight))
	}
	if item.Note != "" {
		lines = append(lines, strings.TrimSpace(item.Note))
	}
	if item.Body != "" {
		lines = append(lines, item.Body)
	}
	if item.ChapterProgress != nil {
		lines = append(lines, fmt.Sprintf("Progress: %d%%", int(math.Round(*item.ChapterProgress*100))))
	}
	lines = append(lines, "Created: "+createdDisplay(item))
	return strings.Join(lines, "\n")
}

func createdDisplay(item Item) string {
	if item.Created != "" {
		return item.Created
	}
	if !item.CreatedAt.IsZero() {
		return item.CreatedAt.Format(time.RFC3339)
	}
	return PlaceholderUnknown
}

// quote prefixes every line of a highlight with a blockquote marker so
// multi-line highlights stay inside one quote block.
func quote(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = "> " + strings.TrimRight(line, "\r")
	}
	return strings.Join(lines, "\n")
}
