// Package handwriting folds note files produced by an external
// handwriting-recognition tool into the export. Title and author come
// from the filename, which is inherently heuristic; the parsing is kept
// behind ParseFileName so it can be hardened without touching the
// grouping or export logic.
package handwriting

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Note is one handwriting note file with its filename-derived metadata.
type Note struct {
	Title  string
	Author string
	Body   string
}

// ParseFileName derives (title, author) from a note filename of the form
// <title>_<author-part>_<author-part...>.md. Files with fewer than two
// underscore-delimited segments carry no author and are rejected.
func ParseFileName(name string) (title, author string, ok bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(stem, "_")
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], "_"), true
}

// Load reads all .md files in dir. Files whose name cannot be parsed are
// skipped with a log line; an unreadable file aborts the run.
func Load(dir string) ([]Note, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading handwriting directory: %w", err)
	}

	var notes []Note
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		title, author, ok := ParseFileName(entry.Name())
		if !ok {
			log.Printf("Skipping handwriting file %s: cannot derive author from filename", entry.Name())
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading handwriting file %s: %w", entry.Name(), err)
		}
		notes = append(notes, Note{
			Title:  title,
			Author: author,
			Body:   strings.TrimSpace(string(data)),
		})
	}
	return notes, nil
}
