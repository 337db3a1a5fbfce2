package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sanitize strips characters that are illegal in filesystem paths from a
// title and substitutes the placeholder when nothing usable remains.
func Sanitize(title string) string {
	if strings.TrimSpace(title) == "" {
		return PlaceholderUnknown
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '*', '?', '[', ']', ':', ';':
			return -1
		}
		return r
	}, title)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return PlaceholderUnknown
	}
	return cleaned
}

// Namer hands out collision-free filenames within one export run. It
// tracks names assigned during the run and probes the output directory for
// pre-existing files, so a re-export never overwrites a prior file.
type Namer struct {
	dir   string
	taken map[string]bool
}

// NewNamer creates a Namer for the given output directory.
func NewNamer(dir string) *Namer {
	return &Namer{dir: dir, taken: make(map[string]bool)}
}

// Claim returns a free .md filename for the title, appending _2, _3, ...
// until no collision remains. The second return reports whether a suffix
// was needed; callers mark such books as duplicates.
func (n *Namer) Claim(title string) (string, bool) {
	base := Sanitize(title)
	name := base + ".md"
	duplicate := false
	for i := 2; n.inUse(name); i++ {
		name = fmt.Sprintf("%s_%d.md", base, i)
		duplicate = true
	}
	n.taken[name] = true
	return name, duplicate
}

func (n *Namer) inUse(name string) bool {
	if n.taken[name] {
		return true
	}
	_, err := os.Stat(filepath.Join(n.dir, name))
	return err == nil
}
