package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/inksync/internal/config"
	"github.com/TobiSchelling/inksync/internal/export"
	"github.com/TobiSchelling/inksync/internal/kobodb"
	"github.com/TobiSchelling/inksync/internal/server"
	"github.com/TobiSchelling/inksync/internal/stats"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "inksync",
	Short:   "Kobo annotation export and reading statistics",
	Long:    "inksync extracts highlights and notes from a Kobo device database into per-book markdown files and aggregates reading time into a statistics report.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("inksync", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/inksync/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point at your KoboReader.sqlite backup(s).")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database contents and export state",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExportDB()
		if err != nil {
			return err
		}
		defer db.Close()

		counts, err := db.GetCounts()
		if err != nil {
			return fmt.Errorf("reading counts: %w", err)
		}

		watermark, err := export.LoadWatermark(cfg.GetWatermarkFile())
		if err != nil {
			return err
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Println("Annotations:")
		fmt.Printf("  Books with annotations: %d\n", counts.AnnotatedBooks)
		fmt.Printf("  Highlights and notes:   %d\n", counts.Annotations)
		fmt.Println("\nReading sessions:")
		fmt.Printf("  Sessions recorded: %d\n", counts.Sessions)
		fmt.Println("\nExport:")
		fmt.Printf("  Output directory: %s\n", cfg.GetOutputDir())
		fmt.Printf("  Exported through: %s\n", watermark.Format("2006-01-02 15:04:05"))
		return nil
	},
}

// --- export command ---

var exportAll bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export annotations into per-book markdown files",
	Long:  "Export reads highlights and notes created since the last run and writes one markdown file per book. Use --all to re-export the whole corpus; existing files are never overwritten, colliding exports get a numeric suffix and a duplicate marker.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openExportDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runner := export.NewRunner(cfg, db)
		result, err := runner.Run(exportAll)
		if err != nil {
			return err
		}

		fmt.Println("Export complete:")
		fmt.Printf("  Books:      %d\n", result.Books)
		fmt.Printf("  Items:      %d\n", result.Items)
		fmt.Printf("  Duplicates: %d\n", result.Duplicates)
		fmt.Printf("  Output:     %s\n", cfg.GetOutputDir())
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export the full corpus, ignoring the watermark")
}

// --- stats command ---

var (
	statsDBs    []string
	statsFilter string
	statsTop    int
	statsOutput string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate reading time into a statistics report",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := statsDBs
		if len(paths) == 0 {
			paths = cfg.GetStatsDatabases()
		}
		if len(paths) == 0 {
			return fmt.Errorf("no databases configured; set databases in the config or pass --db")
		}

		rows, err := stats.FetchAll(paths)
		if err != nil {
			return err
		}

		filter := statsFilter
		if filter == "" {
			filter = cfg.Stats.Filter
		}
		topN := statsTop
		if topN <= 0 {
			topN = cfg.Stats.TopN
		}

		totals := stats.Collect(rows, filter)
		report := stats.RenderReport(totals, topN)

		output := statsOutput
		if output == "" {
			output = cfg.GetStatsOutput()
		}
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
		if err := stats.WriteReport(output, report); err != nil {
			return err
		}

		fmt.Printf("Reading statistics for %d book(s), %.1f hours total.\n", len(totals.BookOrder), totals.TotalHours)
		fmt.Printf("Report written to %s\n", output)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringArrayVar(&statsDBs, "db", nil, "Database snapshot path (repeatable, overrides config)")
	statsCmd.Flags().StringVar(&statsFilter, "filter", "", "Case-insensitive title substring filter")
	statsCmd.Flags().IntVar(&statsTop, "top", 0, "Number of books in the top table (default from config)")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "", "Report output path (default from config)")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Browse exported highlights and the stats report locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg.GetOutputDir(), cfg.GetStatsOutput(), port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func openExportDB() (*kobodb.DB, error) {
	dbPath, err := cfg.GetExportDatabase()
	if err != nil {
		return nil, err
	}
	return kobodb.Open(dbPath)
}
