package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Databases   []string    `yaml:"databases"`
	Export      Export      `yaml:"export"`
	Handwriting Handwriting `yaml:"handwriting"`
	Stats       Stats       `yaml:"stats"`
	Server      Server      `yaml:"server"`
	Logging     Logging     `yaml:"logging"`
}

type Export struct {
	Database      string `yaml:"database"`
	OutputDir     string `yaml:"output_dir"`
	WatermarkFile string `yaml:"watermark_file"`
	GroupBy       string `yaml:"group_by"`
}

type Handwriting struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type Stats struct {
	Output string `yaml:"output"`
	Filter string `yaml:"filter"`
	TopN   int    `yaml:"top_n"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for inksync.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "inksync")
}

// DataDir returns the XDG data directory for inksync.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "inksync")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/inksync/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'inksync init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Export:  Export{GroupBy: "book"},
		Stats:   Stats{TopN: 10},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetExportDatabase returns the database used by the export command:
// export.database if set, otherwise the first stats database.
func (c *Config) GetExportDatabase() (string, error) {
	if c.Export.Database != "" {
		return expandHome(c.Export.Database), nil
	}
	if len(c.Databases) > 0 {
		return expandHome(c.Databases[0]), nil
	}
	return "", fmt.Errorf("no database configured; set export.database or databases in the config")
}

// GetStatsDatabases returns the snapshot paths for the stats command.
func (c *Config) GetStatsDatabases() []string {
	paths := make([]string, 0, len(c.Databases))
	for _, p := range c.Databases {
		paths = append(paths, expandHome(p))
	}
	return paths
}

// GetOutputDir returns the export directory from config or XDG default.
func (c *Config) GetOutputDir() string {
	if c.Export.OutputDir != "" {
		return expandHome(c.Export.OutputDir)
	}
	return filepath.Join(DataDir(), "highlights")
}

// GetWatermarkFile returns the watermark path from config or XDG default.
func (c *Config) GetWatermarkFile() string {
	if c.Export.WatermarkFile != "" {
		return expandHome(c.Export.WatermarkFile)
	}
	return filepath.Join(DataDir(), "last_export.json")
}

// GetHandwritingDir returns the handwriting note directory.
func (c *Config) GetHandwritingDir() string {
	return expandHome(c.Handwriting.Dir)
}

// GetStatsOutput returns the stats report path from config or XDG default.
func (c *Config) GetStatsOutput() string {
	if c.Stats.Output != "" {
		return expandHome(c.Stats.Output)
	}
	return filepath.Join(DataDir(), "reading_stats.md")
}

func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
