package kobodb

import "database/sql"

// Sessions returns reading-time rows from the content table, pre-filtered
// to rows with a positive duration, a title, and a start timestamp.
func (db *DB) Sessions() ([]ReadingSessionRow, error) {
	rows, err := db.conn.Query(
		`SELECT Title, TimeSpentReading, LastTimeStartedReading
		FROM content
		WHERE TimeSpentReading > 0 AND Title IS NOT NULL AND LastTimeStartedReading IS NOT NULL`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]ReadingSessionRow, error) {
	var out []ReadingSessionRow
	for rows.Next() {
		var s ReadingSessionRow
		var seconds int64
		if err := rows.Scan(&s.Title, &seconds, &s.LastStartedAt); err != nil {
			return nil, err
		}
		s.Minutes = float64(seconds) / 60.0
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetCounts returns aggregate counts for the status command.
func (db *DB) GetCounts() (*Counts, error) {
	c := &Counts{}
	queries := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(DISTINCT Bookmark.ContentID) FROM Bookmark
			WHERE Bookmark.Text IS NOT NULL OR Bookmark.Annotation IS NOT NULL`, &c.AnnotatedBooks},
		{`SELECT COUNT(*) FROM Bookmark
			WHERE Bookmark.Text IS NOT NULL OR Bookmark.Annotation IS NOT NULL`, &c.Annotations},
		{`SELECT COUNT(*) FROM content
			WHERE TimeSpentReading > 0 AND Title IS NOT NULL AND LastTimeStartedReading IS NOT NULL`, &c.Sessions},
	}
	for _, q := range queries {
		if err := db.conn.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, err
		}
	}
	return c, nil
}
