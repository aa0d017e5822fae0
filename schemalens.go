// Package schemalens turns a SQLite database file into a structured
// analysis report by combining schema introspection with a hosted model.
//
// The pipeline is: extract schema -> build prompt -> call model ->
// interpret response -> assemble record -> render artifacts. Each stage is
// available on its own for callers that want to intervene, and
// AnalyzeDatabase runs the whole sequence in one call:
//
//	client, err := llm.NewGeminiClient(ctx, llm.DefaultGeminiConfig(apiKey))
//	...
//	record, artifacts, err := schemalens.AnalyzeDatabase(
//		ctx, "shop.db", "analysis_results", client, nil)
//
// The pipeline holds no shared mutable state: concurrent invocations on
// independent files need no coordination, and artifact paths are
// namespaced by a per-run identifier so they never collide.
//
// Model interpretation never fails the pipeline. When the response cannot
// be parsed as the expected JSON shape, the report carries a degraded
// fallback analysis tagged so callers can present it distinctly.
package schemalens

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schemalens/schemalens/internal/db"
	"github.com/schemalens/schemalens/internal/interpret"
	"github.com/schemalens/schemalens/internal/llm"
	"github.com/schemalens/schemalens/internal/prompt"
	"github.com/schemalens/schemalens/internal/report"
	"github.com/schemalens/schemalens/internal/schema"
	"github.com/schemalens/schemalens/pkg/logger"
)

// Error kinds surfaced by the pipeline. Extraction and render errors are
// fatal and propagate to the caller; interpretation degrades instead of
// failing.
type (
	ExtractionError = db.ExtractionError
	RenderError     = report.RenderError
)

// ProgressFunc receives stage transitions with an approximate percent
// complete. Called synchronously from the pipeline goroutine.
type ProgressFunc func(stage string, percent int)

// Options configures an analysis run. All fields are optional.
type Options struct {
	// Tables restricts extraction to the named tables. If empty, all user
	// tables are extracted.
	Tables []string

	// ExcludeTables removes tables after extraction. Useful for omitting
	// migrations or audit tables. Ignored for tables not present.
	ExcludeTables []string

	// Formats selects which artifacts to render. Defaults to markdown
	// and JSON.
	Formats []report.Format

	// Charts maps chart names to pre-generated image paths embedded by
	// relative reference in the report. Chart generation itself is the
	// caller's concern.
	Charts map[string]string

	// RunID namespaces artifact paths. Generated when empty.
	RunID string

	// DisplayName overrides the file name shown in the report.
	DisplayName string

	// Progress receives stage transitions.
	Progress ProgressFunc

	// Logger receives pipeline logging. A quiet default is used when nil.
	Logger *logger.Logger
}

func (o *Options) progress(stage string, percent int) {
	if o.Progress != nil {
		o.Progress(stage, percent)
	}
}

func (o *Options) logger() *logger.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.NewLogger(false)
}

// AnalyzeDatabase runs the full pipeline against one database file and
// writes report artifacts under outDir.
//
// A model call failure does not fail the run: the report falls back to a
// schema-facts-only analysis, tagged as fallback. Extraction and render
// failures are fatal and returned to the caller.
func AnalyzeDatabase(ctx context.Context, filePath, outDir string, client llm.Client, opts *Options) (*report.Record, []report.Artifact, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.logger()

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	opts.progress("extracting", 10)
	doc, err := ExtractSchema(ctx, filePath, opts)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("extracted %d tables from %s", len(doc.Tables), filePath)

	meta, err := fileMeta(filePath, opts.DisplayName)
	if err != nil {
		return nil, nil, &db.ExtractionError{Path: filePath, Err: err}
	}

	opts.progress("prompting", 25)
	built := prompt.Build(doc, meta.Name)
	if built.Truncated() {
		log.Warnf("prompt covers %d of %d tables; %d omitted",
			built.TablesIncluded, len(doc.Tables), built.TablesOmitted)
	}

	opts.progress("analyzing", 40)
	rawText := ""
	if client != nil {
		rawText, err = client.Analyze(ctx, built.Text)
		if err != nil {
			// One shot, no retry: degrade to the fallback analysis.
			log.Warnf("model call failed, using fallback analysis: %v", err)
			rawText = ""
		}
	}

	opts.progress("interpreting", 70)
	analysis := interpret.Interpret(rawText, doc)
	if analysis.IsFallback() {
		log.Warn("model response could not be parsed; report uses fallback analysis")
	}

	opts.progress("assembling", 80)
	record := report.Assemble(doc, analysis, meta, report.RunInfo{
		RunID:         runID,
		GeneratedAt:   time.Now().UTC(),
		Truncated:     built.Truncated(),
		TablesOmitted: built.TablesOmitted,
	})

	opts.progress("rendering", 90)
	artifacts, err := report.Render(record, outDir, opts.Formats, opts.Charts)
	if err != nil {
		return nil, nil, err
	}

	opts.progress("done", 100)
	log.Infof("analysis %s complete: %d artifacts in %s", runID, len(artifacts), outDir)
	return record, artifacts, nil
}

// ExtractSchema extracts the schema document from the given SQLite file.
//
// Extraction is read-only and deterministic: two calls on an unmodified
// file yield equal documents. Fails with *ExtractionError when the file is
// missing, unreadable, or not a SQLite database.
func ExtractSchema(ctx context.Context, filePath string, opts *Options) (*schema.Document, error) {
	if opts == nil {
		opts = &Options{}
	}

	client, err := db.NewSQLiteClient(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	extractor := db.NewSQLiteExtractor(client, opts.logger().Logger)
	doc, err := extractor.ExtractSchema(ctx, opts.Tables)
	if err != nil {
		return nil, err
	}

	if len(opts.ExcludeTables) > 0 {
		filterExcludedTables(doc, opts.ExcludeTables)
	}

	return doc, nil
}

// BuildPrompt builds the analysis prompt for a schema document. Exposed
// for callers that manage the model call themselves.
func BuildPrompt(doc *schema.Document, fileLabel string) prompt.Prompt {
	return prompt.Build(doc, fileLabel)
}

// InterpretResponse maps raw model output to an analysis result. Never
// fails; unparseable output yields the tagged fallback result.
func InterpretResponse(rawText string, doc *schema.Document) *interpret.AnalysisResult {
	return interpret.Interpret(rawText, doc)
}

func fileMeta(filePath, displayName string) (report.FileMeta, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return report.FileMeta{}, err
	}

	name := displayName
	if name == "" {
		name = filepath.Base(filePath)
	}

	return report.FileMeta{
		Name: name,
		Size: info.Size(),
		Type: strings.TrimPrefix(filepath.Ext(filePath), "."),
	}, nil
}

func filterExcludedTables(doc *schema.Document, excludeList []string) {
	if len(excludeList) == 0 {
		return
	}

	excludeSet := make(map[string]bool)
	for _, tableName := range excludeList {
		excludeSet[tableName] = true
	}

	filtered := make([]schema.Table, 0, len(doc.Tables))
	for _, table := range doc.Tables {
		if !excludeSet[table.Name] {
			filtered = append(filtered, table)
		}
	}
	doc.Tables = filtered
}
