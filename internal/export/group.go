// Package export turns annotation rows into per-book markdown files with
// incremental watermark support.
package export

import (
	"sort"
	"time"

	"github.com/TobiSchelling/inksync/internal/kobodb"
	"github.com/TobiSchelling/inksync/internal/source"
)

// PlaceholderUnknown substitutes missing titles and authors.
const PlaceholderUnknown = "Unknown"

// Policy selects how rows are grouped into books.
type Policy string

const (
	// ByBook groups by the full book identity including content ID and
	// type, keeping distinct formats and sources of the same title apart.
	// This is the default.
	ByBook Policy = "book"
	// ByTitleAuthor groups by (title, author) only, conflating formats.
	// Kept for compatibility with exports produced by older tooling.
	ByTitleAuthor Policy = "title-author"
)

// ParsePolicy maps a config string to a Policy, defaulting to ByBook.
func ParsePolicy(s string) Policy {
	if s == string(ByTitleAuthor) {
		return ByTitleAuthor
	}
	return ByBook
}

// BookKey identifies one book. Missing title or author is substituted
// with PlaceholderUnknown, never left empty.
type BookKey struct {
	Title       string
	Author      string
	ContentID   string
	ContentType int
}

// Item is one annotation inside a book export.
type Item struct {
	Highlight       string
	Note            string
	Body            string // handwriting note body; highlight and note are empty then
	ChapterProgress *float64
	Tags            []string
	CreatedAt       time.Time
	Created         string // device timestamp as stored, kept for display
}

// Book is one export unit: a book plus its annotations in creation order.
type Book struct {
	Key            BookKey
	Source         source.Source
	StatsAvailable bool
	Duplicate      bool
	Items          []Item
}

// Group joins annotation rows into per-book export units. Books come out
// in first-encounter order; items within a book are sorted ascending by
// creation time (stable, so equal timestamps keep row order).
func Group(rows []kobodb.AnnotationRow, policy Policy) []*Book {
	var books []*Book
	index := make(map[BookKey]*Book)

	for _, row := range rows {
		key := BookKey{
			Title:  orPlaceholder(row.Title),
			Author: orPlaceholder(row.Attribution),
		}
		if policy == ByBook {
			key.ContentID = row.ContentID
			key.ContentType = row.ContentType
		}

		book, ok := index[key]
		if !ok {
			src, stats := source.Classify(row.ContentID, row.ContentType)
			book = &Book{Key: key, Source: src, StatsAvailable: stats}
			index[key] = book
			books = append(books, book)
		}
		book.Items = append(book.Items, newItem(row))
	}

	for _, book := range books {
		items := book.Items
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	}
	return books
}

func newItem(row kobodb.AnnotationRow) Item {
	item := Item{ChapterProgress: row.ChapterProgress}
	if row.Text != nil && *row.Text != "" {
		item.Highlight = *row.Text
		item.Tags = append(item.Tags, "#highlight")
	}
	if row.Annotation != nil && *row.Annotation != "" {
		item.Note = *row.Annotation
		item.Tags = append(item.Tags, "#note")
	}
	if row.DateCreated != nil {
		item.Created = *row.DateCreated
		if t, ok := kobodb.ParseTimestamp(*row.DateCreated); ok {
			item.CreatedAt = t
		}
	}
	return item
}

func orPlaceholder(s *string) string {
	if s == nil || *s == "" {
		return PlaceholderUnknown
	}
	return *s
}
