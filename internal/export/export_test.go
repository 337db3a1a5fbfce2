package export

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/inksync/internal/config"
	"github.com/TobiSchelling/inksync/internal/kobodb"
)

type fixture struct {
	cfg    *config.Config
	db     *kobodb.DB
	dbPath string
	outDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "KoboReader.sqlite")

	conn, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Exec(`CREATE TABLE content (
		ContentID TEXT PRIMARY KEY, Title TEXT, Attribution TEXT, ContentType INTEGER,
		TimeSpentReading INTEGER, LastTimeStartedReading TEXT)`)
	require.NoError(t, err)
	_, err = conn.Exec(`CREATE TABLE Bookmark (
		BookmarkID TEXT PRIMARY KEY, ContentID TEXT, Text TEXT, Annotation TEXT,
		DateCreated TEXT, ChapterProgress REAL)`)
	require.NoError(t, err)

	outDir := filepath.Join(dir, "highlights")
	cfg := &config.Config{
		Export: config.Export{
			Database:      dbPath,
			OutputDir:     outDir,
			WatermarkFile: filepath.Join(dir, "last_export.json"),
			GroupBy:       "book",
		},
	}

	db, err := kobodb.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &fixture{cfg: cfg, db: db, dbPath: dbPath, outDir: outDir}
}

func (f *fixture) seed(t *testing.T, stmt string, args ...any) {
	t.Helper()
	conn, err := sql.Open("sqlite", f.dbPath)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Exec(stmt, args...)
	require.NoError(t, err)
}

func (f *fixture) runner(now time.Time) *Runner {
	r := NewRunner(f.cfg, f.db)
	r.now = func() time.Time { return now }
	return r
}

func TestRunExportsHighlightAndNote(t *testing.T) {
	f := newFixture(t)
	f.seed(t, `INSERT INTO content VALUES ('file:1', 'Foo', 'Bar', 6, 0, NULL)`)
	f.seed(t, `INSERT INTO Bookmark VALUES ('b1', 'file:1', 'x', NULL, '2024-01-01T08:00:00.000', NULL)`)
	f.seed(t, `INSERT INTO Bookmark VALUES ('b2', 'file:1', NULL, 'y', '2024-01-02T08:00:00.000', NULL)`)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	result, err := f.runner(now).Run(false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Books)
	assert.Equal(t, 2, result.Items)
	assert.Equal(t, 0, result.Duplicates)

	data, err := os.ReadFile(filepath.Join(f.outDir, "Foo.md"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "source: Calibre")
	assert.Contains(t, content, "stats_available: true")
	highlight := strings.Index(content, "> x")
	note := strings.Index(content, "\ny\n")
	require.Greater(t, highlight, 0)
	require.Greater(t, note, 0)
	assert.Less(t, highlight, note, "highlight (older) must precede note (newer)")
	assert.Contains(t, content, "Created: 2024-01-01T08:00:00.000")
	assert.Contains(t, content, "Created: 2024-01-02T08:00:00.000")

	// Watermark advanced to run start.
	wm, err := LoadWatermark(f.cfg.Export.WatermarkFile)
	require.NoError(t, err)
	assert.True(t, wm.Equal(now))
}

func TestRunIncrementalSkipsExported(t *testing.T) {
	f := newFixture(t)
	f.seed(t, `INSERT INTO content VALUES ('file:1', 'Foo', 'Bar', 6, 0, NULL)`)
	f.seed(t, `INSERT INTO Bookmark VALUES ('b1', 'file:1', 'x', NULL, '2024-01-01T08:00:00.000', NULL)`)

	first := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.runner(first).Run(false)
	require.NoError(t, err)

	// A row created after the first run is the only one picked up next.
	f.seed(t, `INSERT INTO Bookmark VALUES ('b2', 'file:1', 'z', NULL, '2024-02-15T08:00:00.000', NULL)`)
	second := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	result, err := f.runner(second).Run(false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Books)
	assert.Equal(t, 1, result.Items)

	// Nothing new since then: the next incremental run is empty.
	third := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	result, err = f.runner(third).Run(false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Books)
}

func TestRunIdempotentReexport(t *testing.T) {
	f := newFixture(t)
	f.seed(t, `INSERT INTO content VALUES ('file:1', 'Foo', 'Bar', 6, 0, NULL)`)
	f.seed(t, `INSERT INTO Bookmark VALUES ('b1', 'file:1', 'x', NULL, '2024-01-01T08:00:00.000', NULL)`)

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.runner(now).Run(true)
	require.NoError(t, err)
	result, err := f.runner(now).Run(true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Duplicates)

	first, err := os.ReadFile(filepath.Join(f.outDir, "Foo.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(first), "duplicate: true", "original file untouched")

	second, err := os.ReadFile(filepath.Join(f.outDir, "Foo_2.md"))
	require.NoError(t, err)
	assert.Contains(t, string(second), "duplicate: true")
}

func TestRunFailureLeavesWatermark(t *testing.T) {
	f := newFixture(t)
	f.seed(t, `INSERT INTO content VALUES ('file:1', 'Foo', 'Bar', 6, 0, NULL)`)
	f.seed(t, `INSERT INTO Bookmark VALUES ('b1', 'file:1', 'x', NULL, '2024-01-01T08:00:00.000', NULL)`)

	// A plain file where the output directory should be makes MkdirAll fail.
	require.NoError(t, os.WriteFile(f.outDir, []byte{}, 0o644))

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.runner(now).Run(false)
	require.Error(t, err)

	wm, err := LoadWatermark(f.cfg.Export.WatermarkFile)
	require.NoError(t, err)
	assert.True(t, wm.Equal(time.Unix(0, 0)), "failed run must not advance the watermark")
}

func TestRunMergesHandwritingNotes(t *testing.T) {
	f := newFixture(t)
	f.seed(t, `INSERT INTO content VALUES ('file:1', 'Foo', 'Bar', 6, 0, NULL)`)
	f.seed(t, `INSERT INTO Bookmark VALUES ('b1', 'file:1', 'x', NULL, '2024-01-01T08:00:00.000', NULL)`)

	hwDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(hwDir, "Foo_Bar.md"), []byte("margin scribble\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(hwDir, "Solo_Author_Name.md"), []byte("other note"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(hwDir, "noauthor.md"), []byte("skipped"), 0o644))
	f.cfg.Handwriting = config.Handwriting{Enabled: true, Dir: hwDir}

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	result, err := f.runner(now).Run(false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Books)

	foo, err := os.ReadFile(filepath.Join(f.outDir, "Foo.md"))
	require.NoError(t, err)
	assert.Contains(t, string(foo), "#handwriting\nmargin scribble")

	solo, err := os.ReadFile(filepath.Join(f.outDir, "Solo.md"))
	require.NoError(t, err)
	assert.Contains(t, string(solo), "author: Author_Name")
	assert.Contains(t, string(solo), "source: Unknown")

	entries, err := os.ReadDir(f.outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "the unparseable handwriting file is skipped")
}
