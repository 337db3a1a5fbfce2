package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Databases) == 0 {
		t.Error("expected databases to be populated")
	}
	if cfg.Export.GroupBy != "book" {
		t.Errorf("expected group_by 'book', got %q", cfg.Export.GroupBy)
	}
	if cfg.Stats.TopN != 10 {
		t.Errorf("expected top_n 10, got %d", cfg.Stats.TopN)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Handwriting.Enabled {
		t.Error("expected handwriting disabled by default")
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
export:
  database: /backups/KoboReader.sqlite
  group_by: title-author
stats:
  top_n: 5
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Export.Database != "/backups/KoboReader.sqlite" {
		t.Errorf("unexpected export database %q", cfg.Export.Database)
	}
	if cfg.Export.GroupBy != "title-author" {
		t.Errorf("expected group_by 'title-author', got %q", cfg.Export.GroupBy)
	}
	if cfg.Stats.TopN != 5 {
		t.Errorf("expected top_n 5, got %d", cfg.Stats.TopN)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Databases) == 0 {
		t.Error("expected databases to be populated from file")
	}
}

func TestExportDatabaseFallback(t *testing.T) {
	cfg := &Config{Databases: []string{"/snapshots/a.sqlite"}}
	got, err := cfg.GetExportDatabase()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/snapshots/a.sqlite" {
		t.Errorf("expected fallback to databases[0], got %q", got)
	}

	cfg.Export.Database = "/other.sqlite"
	got, _ = cfg.GetExportDatabase()
	if got != "/other.sqlite" {
		t.Errorf("expected export.database to win, got %q", got)
	}

	empty := &Config{}
	if _, err := empty.GetExportDatabase(); err == nil {
		t.Error("expected error when no database is configured")
	}
}

func TestDefaultPaths(t *testing.T) {
	cfg := &Config{}
	if cfg.GetOutputDir() == "" {
		t.Error("expected non-empty default output dir")
	}
	if cfg.GetWatermarkFile() == "" {
		t.Error("expected non-empty default watermark path")
	}

	cfg.Export.OutputDir = "/custom/highlights"
	if cfg.GetOutputDir() != "/custom/highlights" {
		t.Errorf("expected '/custom/highlights', got %q", cfg.GetOutputDir())
	}
}
