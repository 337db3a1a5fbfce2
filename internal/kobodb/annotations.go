package kobodb

import (
	"database/sql"
	"time"
)

// Annotations returns all bookmark rows joined with their book metadata,
// created after the given watermark and carrying a highlight or a note.
// Pass the epoch to get the full corpus; DateCreated is a text column, so
// the comparison is the same ISO-8601 string comparison the device uses.
func (db *DB) Annotations(since time.Time) ([]AnnotationRow, error) {
	rows, err := db.conn.Query(
		`SELECT Bookmark.BookmarkID, Bookmark.ContentID, Bookmark.Text, Bookmark.Annotation,
			Bookmark.DateCreated, Bookmark.ChapterProgress,
			Content.Title, Content.Attribution, Content.ContentType
		FROM Bookmark
		JOIN Content ON Bookmark.ContentID = Content.ContentID
		WHERE (Bookmark.Text IS NOT NULL OR Bookmark.Annotation IS NOT NULL)
			AND Bookmark.DateCreated > ?
		ORDER BY Bookmark.DateCreated ASC`,
		since.UTC().Format("2006-01-02T15:04:05"),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAnnotations(rows)
}

func scanAnnotations(rows *sql.Rows) ([]AnnotationRow, error) {
	var out []AnnotationRow
	for rows.Next() {
		var a AnnotationRow
		var contentType sql.NullInt64
		if err := rows.Scan(&a.BookmarkID, &a.ContentID, &a.Text, &a.Annotation,
			&a.DateCreated, &a.ChapterProgress, &a.Title, &a.Attribution, &contentType); err != nil {
			return nil, err
		}
		a.ContentType = int(contentType.Int64)
		out = append(out, a)
	}
	return out, rows.Err()
}
