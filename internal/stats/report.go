package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
)

// RenderReport renders the full markdown report: total, the three
// calendar-bucket tables ascending by key, the top-N book table, and the
// per-book session detail table.
func RenderReport(t *Totals, topN int) string {
	parts := []string{
		"# Reading Statistics",
		"",
		fmt.Sprintf("**Total reading time**: **%.1f hours**", t.TotalHours),
		"",
		bucketSection("Weekly Overview", t.Weeks),
		"",
		bucketSection("Monthly Overview", t.Months),
		"",
		bucketSection("Yearly Overview", t.Years),
		"",
		topBooksSection(t, topN),
		"",
		bookDetailSection(t),
	}
	return strings.Join(parts, "\n")
}

// WriteReport writes the report atomically.
func WriteReport(path, content string) error {
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func bucketSection(title string, buckets map[string]float64) string {
	lines := []string{"### " + title, "", "| Period | Hours |", "|--------|-------|"}
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("| %s | %.1f |", key, buckets[key]))
	}
	return strings.Join(lines, "\n")
}

// topBooksSection lists the N books with the most reading time, ties
// broken by input encounter order.
func topBooksSection(t *Totals, n int) string {
	titles := make([]string, len(t.BookOrder))
	copy(titles, t.BookOrder)
	sort.SliceStable(titles, func(i, j int) bool {
		return t.BookHours[titles[i]] > t.BookHours[titles[j]]
	})
	if len(titles) > n {
		titles = titles[:n]
	}

	lines := []string{
		fmt.Sprintf("### Top %d Books by Reading Time", n),
		"",
		"| Title | Hours |",
		"|-------|-------|",
	}
	for _, title := range titles {
		lines = append(lines, fmt.Sprintf("| %s | %.1f |", title, t.BookHours[title]))
	}
	return strings.Join(lines, "\n")
}

func bookDetailSection(t *Totals) string {
	lines := []string{
		"### Sessions per Book",
		"",
		"| Title | Date | Hours |",
		"|-------|------|-------|",
	}
	for _, title := range t.BookOrder {
		for _, s := range t.BookSessions[title] {
			lines = append(lines, fmt.Sprintf("| %s | %s | %.1f |", title, s.Date, s.Hours))
		}
	}
	return strings.Join(lines, "\n")
}
