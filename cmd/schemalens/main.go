package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/schemalens/schemalens"
	"github.com/schemalens/schemalens/internal/config"
	"github.com/schemalens/schemalens/internal/job"
	"github.com/schemalens/schemalens/internal/llm"
	"github.com/schemalens/schemalens/internal/report"
	"github.com/schemalens/schemalens/pkg/logger"
)

var (
	sqlitePath    string
	outputDir     string
	configPath    string
	formats       string
	tables        string
	excludeTables string
	displayName   string
	skipModel     bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "schemalens",
	Short: "Analyze a SQLite database with AI-assisted reverse engineering",
	Long: `SchemaLens extracts the schema of a SQLite database file, sends it to the
Gemini API for reverse-engineering analysis, and renders the combined result
as Markdown, JSON, and HTML reports.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path (.db, .sqlite, .sqlite3)")
	rootCmd.Flags().StringVarP(&outputDir, "out-dir", "d", "", "Output directory for report artifacts")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (optional)")
	rootCmd.Flags().StringVarP(&formats, "formats", "f", "", "Output formats, comma-separated: markdown, json, html")
	rootCmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	rootCmd.Flags().StringVar(&excludeTables, "exclude-tables", "", "Tables to exclude (comma-separated, optional)")
	rootCmd.Flags().StringVar(&displayName, "name", "", "Display name for the report (default: file name)")
	rootCmd.Flags().BoolVar(&skipModel, "skip-model", false, "Skip the model call and report schema facts only")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	if sqlitePath == "" {
		return fmt.Errorf("--sqlite must be specified")
	}

	log := logger.NewLogger(verbose)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}

	formatList, err := parseFormats(formats, cfg.Output.Formats)
	if err != nil {
		return err
	}

	ctx := context.Background()

	var client llm.Client
	if !skipModel {
		if cfg.Gemini.APIKey == "" {
			return fmt.Errorf("no Gemini API key configured (set GEMINI_API_KEY or gemini.api_key in the config file, or pass --skip-model)")
		}
		gemini, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:          cfg.Gemini.APIKey,
			Model:           cfg.Gemini.Model,
			Temperature:     cfg.Gemini.Temperature,
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		})
		if err != nil {
			return err
		}
		client = gemini
		log.Debugf("using model %s", gemini.Model())
	}

	tracker := job.NewTracker()
	rec := tracker.Create(sqlitePath)
	if err := tracker.Start(rec.ID); err != nil {
		return err
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("analyzing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	opts := &schemalens.Options{
		Tables:        splitList(tables),
		ExcludeTables: splitList(excludeTables),
		Formats:       formatList,
		RunID:         rec.ID,
		DisplayName:   displayName,
		Logger:        log,
		Progress: func(stage string, percent int) {
			_ = tracker.SetProgress(rec.ID, stage, percent)
			bar.Describe(stage)
			_ = bar.Set(percent)
		},
	}

	record, artifacts, err := schemalens.AnalyzeDatabase(ctx, sqlitePath, outputDir, client, opts)
	if err != nil {
		_ = tracker.Fail(rec.ID, err)
		return err
	}

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		paths = append(paths, a.Path)
	}
	if err := tracker.Complete(rec.ID, paths); err != nil {
		return err
	}

	_ = bar.Finish()

	if record.Analysis.IsFallback() {
		fmt.Fprintln(os.Stderr, "warning: analysis used a fallback path; the report contains schema facts with generic insights")
	}
	for _, a := range artifacts {
		fmt.Printf("%s\t%s\n", a.Format, a.Path)
	}

	return nil
}

func parseFormats(flagValue string, defaults []string) ([]report.Format, error) {
	names := splitList(flagValue)
	if len(names) == 0 {
		names = defaults
	}

	parsed := make([]report.Format, 0, len(names))
	for _, name := range names {
		format, err := report.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, format)
	}
	return parsed, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
