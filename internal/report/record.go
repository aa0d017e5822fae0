// Package report assembles schema facts and model analysis into a
// renderer-ready record and serializes it as markdown, JSON, and HTML
// artifacts.
package report

import (
	"time"

	"github.com/schemalens/schemalens/internal/interpret"
	"github.com/schemalens/schemalens/internal/schema"
)

// FileMeta describes the analyzed database file.
type FileMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// RunInfo identifies one pipeline invocation. RunID namespaces artifact
// paths so concurrent invocations never collide.
type RunInfo struct {
	RunID         string    `json:"run_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	Truncated     bool      `json:"truncated"`
	TablesOmitted int       `json:"tables_omitted"`
}

// Record is the merged, renderer-ready combination of schema facts and
// analysis. Created once per pipeline invocation and never mutated.
type Record struct {
	Run      RunInfo                  `json:"run"`
	File     FileMeta                 `json:"file"`
	Schema   schema.Document          `json:"schema"`
	Analysis interpret.AnalysisResult `json:"analysis"`

	// Cross-cutting aggregates computed from the schema document.
	TotalTables    int   `json:"total_tables"`
	TotalColumns   int   `json:"total_columns"`
	TotalRows      int64 `json:"total_rows"`
	HasForeignKeys bool  `json:"has_foreign_keys"`
	HasIndexes     bool  `json:"has_indexes"`
}

// Assemble merges the schema document and analysis into a Record. Pure:
// no I/O, no randomness, fully deterministic given its inputs.
func Assemble(doc *schema.Document, analysis *interpret.AnalysisResult, meta FileMeta, run RunInfo) *Record {
	return &Record{
		Run:            run,
		File:           meta,
		Schema:         *doc,
		Analysis:       *analysis,
		TotalTables:    len(doc.Tables),
		TotalColumns:   doc.TotalColumns(),
		TotalRows:      doc.TotalRows(),
		HasForeignKeys: doc.HasForeignKeys(),
		HasIndexes:     doc.HasIndexes(),
	}
}
