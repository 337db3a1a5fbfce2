// Package stats aggregates reading time from one or more device database
// snapshots into calendar buckets and per-book totals, and renders the
// markdown report.
package stats

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/TobiSchelling/inksync/internal/kobodb"
)

// SessionDetail is one reading session in the per-book detail list.
type SessionDetail struct {
	Date  string
	Hours float64
}

// Totals holds the aggregated reading time. Map keys: ISO calendar week
// "YYYY-KWww", month "YYYY-MM", year "YYYY". BookOrder preserves the
// input encounter order of titles for deterministic ties.
type Totals struct {
	TotalHours   float64
	Weeks        map[string]float64
	Months       map[string]float64
	Years        map[string]float64
	BookHours    map[string]float64
	BookOrder    []string
	BookSessions map[string][]SessionDetail
}

// FetchAll reads session rows from every snapshot sequentially and pools
// them in source order.
func FetchAll(paths []string) ([]kobodb.ReadingSessionRow, error) {
	var all []kobodb.ReadingSessionRow
	for _, path := range paths {
		db, err := kobodb.Open(path)
		if err != nil {
			return nil, err
		}
		rows, err := db.Sessions()
		db.Close()
		if err != nil {
			return nil, fmt.Errorf("reading sessions from %s: %w", path, err)
		}
		all = append(all, rows...)
	}
	return all, nil
}

// Collect accumulates session rows into Totals. Rows with unparseable
// timestamps are dropped, never fatal. Hours are rounded to one decimal
// at accumulation time; repeated accumulation of pre-rounded values is
// the defined, if lossy, behavior. A non-empty filter keeps only titles
// containing it case-insensitively.
func Collect(rows []kobodb.ReadingSessionRow, filter string) *Totals {
	t := &Totals{
		Weeks:        make(map[string]float64),
		Months:       make(map[string]float64),
		Years:        make(map[string]float64),
		BookHours:    make(map[string]float64),
		BookSessions: make(map[string][]SessionDetail),
	}
	filter = strings.ToLower(filter)

	for _, row := range rows {
		if filter != "" && !strings.Contains(strings.ToLower(row.Title), filter) {
			continue
		}
		started, ok := kobodb.ParseTimestamp(row.LastStartedAt)
		if !ok {
			log.Printf("Dropping session for %q: unparseable timestamp %q", row.Title, row.LastStartedAt)
			continue
		}

		hours := math.Round(row.Minutes/60.0*10) / 10
		t.TotalHours += hours

		if _, seen := t.BookHours[row.Title]; !seen {
			t.BookOrder = append(t.BookOrder, row.Title)
		}
		t.BookHours[row.Title] += hours
		t.BookSessions[row.Title] = append(t.BookSessions[row.Title], SessionDetail{
			Date:  started.Format("2006-01-02"),
			Hours: hours,
		})

		isoYear, isoWeek := started.ISOWeek()
		t.Weeks[fmt.Sprintf("%d-KW%02d", isoYear, isoWeek)] += hours
		t.Months[started.Format("2006-01")] += hours
		t.Years[started.Format("2006")] += hours
	}
	return t
}
