package export

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/TobiSchelling/inksync/internal/config"
	"github.com/TobiSchelling/inksync/internal/handwriting"
	"github.com/TobiSchelling/inksync/internal/kobodb"
	"github.com/TobiSchelling/inksync/internal/source"
)

// Runner orchestrates one export run: read watermark, query, group, merge
// handwriting notes, write files, advance watermark.
type Runner struct {
	cfg *config.Config
	db  *kobodb.DB
	now func() time.Time
}

// Result summarizes a completed export run.
type Result struct {
	Books      int
	Items      int
	Duplicates int
	Watermark  time.Time
}

// NewRunner creates an export runner.
func NewRunner(cfg *config.Config, db *kobodb.DB) *Runner {
	return &Runner{cfg: cfg, db: db, now: time.Now}
}

// Run executes one export. In incremental mode only annotations created
// after the persisted watermark are exported; full mode exports the whole
// corpus. The watermark is advanced to the run start time, and only after
// every file write succeeded, so a failed run reprocesses the same window.
func (r *Runner) Run(full bool) (*Result, error) {
	start := r.now()

	since, err := LoadWatermark(r.cfg.GetWatermarkFile())
	if err != nil {
		return nil, err
	}
	if full {
		since = time.Unix(0, 0).UTC()
	}

	rows, err := r.db.Annotations(since)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	books := Group(rows, ParsePolicy(r.cfg.Export.GroupBy))

	if r.cfg.Handwriting.Enabled && r.cfg.Handwriting.Dir != "" {
		notes, err := handwriting.Load(r.cfg.GetHandwritingDir())
		if err != nil {
			return nil, err
		}
		books = mergeHandwriting(books, notes, start)
	}

	outDir := r.cfg.GetOutputDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	result := &Result{Watermark: start}
	namer := NewNamer(outDir)
	for _, book := range books {
		name, duplicate := namer.Claim(book.Key.Title)
		book.Duplicate = duplicate

		content, err := Render(book)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}

		result.Books++
		result.Items += len(book.Items)
		if duplicate {
			result.Duplicates++
		}
		log.Printf("Exported %s (%d items)", name, len(book.Items))
	}

	wmPath := r.cfg.GetWatermarkFile()
	if err := os.MkdirAll(filepath.Dir(wmPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating watermark directory: %w", err)
	}
	if err := SaveWatermark(wmPath, start); err != nil {
		return nil, err
	}
	return result, nil
}

// mergeHandwriting folds handwriting notes into the grouped books by
// (title, author), creating a unit when none exists. The notes carry no
// native creation timestamp, so they get the run start time and are not
// subject to the watermark.
func mergeHandwriting(books []*Book, notes []handwriting.Note, now time.Time) []*Book {
	index := make(map[[2]string]*Book)
	for _, book := range books {
		key := [2]string{book.Key.Title, book.Key.Author}
		if _, ok := index[key]; !ok {
			index[key] = book
		}
	}

	for _, note := range notes {
		key := [2]string{note.Title, note.Author}
		book, ok := index[key]
		if !ok {
			book = &Book{
				Key:    BookKey{Title: note.Title, Author: note.Author},
				Source: source.Unknown,
			}
			index[key] = book
			books = append(books, book)
		}
		book.Items = append(book.Items, Item{
			Body:      note.Body,
			Tags:      []string{"#handwriting"},
			CreatedAt: now,
			Created:   now.Format(time.RFC3339),
		})
	}
	return books
}
