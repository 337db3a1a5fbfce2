// Package kobodb reads annotation and reading-time rows from a Kobo
// device database (KoboReader.sqlite). The schema belongs to the device,
// so the database is opened read-only and never migrated. All dynamic,
// string-typed column access is confined to this package; callers only
// see the typed row structs.
package kobodb

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// DB wraps a read-only connection to a Kobo device database.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens an existing Kobo database in read-only mode. It fails if the
// file does not exist: the database is produced by the device, never by us.
func Open(dbPath string) (*DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("kobo database not found: %s", dbPath)
	}

	conn, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}
