package report

import (
	"fmt"
	"io"
	"strings"
)

// noItems is the placeholder rendered under every empty section. Other
// renderers must keep an equivalent marker so reports stay comparable.
const noItems = "_No items identified._"

// chartSlot pairs a chart map key with its display title. Slots render in
// this fixed order; charts missing from the map are skipped.
type chartSlot struct {
	key   string
	title string
}

var chartSlots = []chartSlot{
	{"table_sizes", "Table Sizes"},
	{"business_domain", "Business Domain"},
	{"performance", "Performance"},
	{"data_types", "Data Types"},
	{"foreign_keys", "Foreign Keys"},
	{"index_analysis", "Index Analysis"},
	{"entity_relationship", "Entity Relationship"},
	{"schema_overview", "Schema Overview"},
}

// MarkdownRenderer renders a Record as a human-oriented markdown report.
// The markdown format is lossy; the JSON renderer is the round-trip format.
type MarkdownRenderer struct {
	writer io.Writer
	charts map[string]string
}

// NewMarkdownRenderer creates a markdown renderer. charts maps chart names
// to image file paths embedded by relative reference; it may be nil.
func NewMarkdownRenderer(w io.Writer, charts map[string]string) *MarkdownRenderer {
	return &MarkdownRenderer{writer: w, charts: charts}
}

// Render writes the full report. Section ordering is fixed, and every
// section renders even when its data is empty.
func (r *MarkdownRenderer) Render(rec *Record) error {
	r.renderHeader(rec)
	r.renderExecutiveSummary(rec)
	r.renderBusinessDomain(rec)
	r.renderArchitecture(rec)
	r.renderEntitiesAndRelationships(rec)
	r.renderDataQuality(rec)
	r.renderPerformance(rec)
	r.renderUseCases(rec)
	r.renderMigration(rec)
	r.renderVisualizations(rec)
	r.renderRecommendations(rec)
	r.renderTechnicalDetails(rec)
	return nil
}

func (r *MarkdownRenderer) renderHeader(rec *Record) {
	fmt.Fprintf(r.writer, "# Database Analysis Report: %s\n\n", rec.File.Name)
	fmt.Fprintf(r.writer, "**Generated:** %s\n", rec.Run.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(r.writer, "**Analysis ID:** %s\n\n", rec.Run.RunID)
	if rec.Analysis.IsFallback() {
		fmt.Fprintln(r.writer, "> **Note:** the model response could not be parsed; this report uses a fallback analysis. Schema facts below come directly from introspection.")
		fmt.Fprintln(r.writer)
	}
	if rec.Run.Truncated {
		fmt.Fprintf(r.writer, "> **Coverage:** the analysis prompt covered %d of %d tables (%d omitted).\n\n",
			rec.TotalTables-rec.Run.TablesOmitted, rec.TotalTables, rec.Run.TablesOmitted)
	}
}

func (r *MarkdownRenderer) renderExecutiveSummary(rec *Record) {
	r.section("Executive Summary")
	fmt.Fprintf(r.writer, "- **Database File:** %s (%s)\n", rec.File.Name, humanSize(rec.File.Size))
	fmt.Fprintf(r.writer, "- **Tables:** %d\n", rec.TotalTables)
	fmt.Fprintf(r.writer, "- **Columns:** %d\n", rec.TotalColumns)
	fmt.Fprintf(r.writer, "- **Total Rows:** %d\n", rec.TotalRows)
	fmt.Fprintf(r.writer, "- **Foreign Keys Present:** %s\n", yesNo(rec.HasForeignKeys))
	fmt.Fprintf(r.writer, "- **Indexes Present:** %s\n", yesNo(rec.HasIndexes))
	fmt.Fprintf(r.writer, "- **Analysis Confidence:** %d/100\n\n", rec.Analysis.ConfidenceScore)
}

func (r *MarkdownRenderer) renderBusinessDomain(rec *Record) {
	r.section("Business Domain")
	bd := rec.Analysis.BusinessDomain
	fmt.Fprintf(r.writer, "- **Primary Domain:** %s\n", bd.Primary)
	fmt.Fprintf(r.writer, "- **Confidence:** %d/100\n", bd.Confidence)
	fmt.Fprintln(r.writer)
	r.subsection("Sub-domains")
	r.list(bd.SubDomains)
}

func (r *MarkdownRenderer) renderArchitecture(rec *Record) {
	r.section("Architecture")
	a := rec.Analysis.Architecture
	fmt.Fprintf(r.writer, "- **Design Pattern:** %s\n", a.DesignPattern)
	fmt.Fprintf(r.writer, "- **Normalization Level:** %s\n", a.NormalizationLevel)
	fmt.Fprintf(r.writer, "- **Flexibility Score:** %d/100\n\n", a.FlexibilityScore)
}

func (r *MarkdownRenderer) renderEntitiesAndRelationships(rec *Record) {
	r.section("Entities & Relationships")

	r.subsection("Core Entities")
	if len(rec.Analysis.Entities) == 0 {
		r.placeholder()
	} else {
		for _, e := range rec.Analysis.Entities {
			fmt.Fprintf(r.writer, "- **%s** (`%s`)", e.Name, e.TableName)
			if e.Purpose != "" {
				fmt.Fprintf(r.writer, " — %s", e.Purpose)
			}
			if len(e.KeyAttributes) > 0 {
				fmt.Fprintf(r.writer, " (key attributes: %s)", strings.Join(e.KeyAttributes, ", "))
			}
			fmt.Fprintln(r.writer)
		}
		fmt.Fprintln(r.writer)
	}

	r.subsection("Relationships")
	if len(rec.Analysis.Relationships) == 0 {
		r.placeholder()
	} else {
		for _, rel := range rec.Analysis.Relationships {
			fmt.Fprintf(r.writer, "- **%s:** %s -> %s (%s)", rel.Name, rel.Parent, rel.Child, rel.Type)
			if rel.Meaning != "" {
				fmt.Fprintf(r.writer, " — %s", rel.Meaning)
			}
			fmt.Fprintln(r.writer)
		}
		fmt.Fprintln(r.writer)
	}
}

func (r *MarkdownRenderer) renderDataQuality(rec *Record) {
	r.section("Data Quality")
	fmt.Fprintf(r.writer, "- **Completeness Score:** %d/100\n\n", rec.Analysis.DataQuality.CompletenessScore)
	r.subsection("Notes")
	r.list(rec.Analysis.DataQuality.Notes)
}

func (r *MarkdownRenderer) renderPerformance(rec *Record) {
	r.section("Performance")
	r.subsection("Bottlenecks")
	r.list(rec.Analysis.Performance.Bottlenecks)
	r.subsection("Optimization Opportunities")
	r.list(rec.Analysis.Performance.Recommendations)
}

func (r *MarkdownRenderer) renderUseCases(rec *Record) {
	r.section("Use Cases")
	if len(rec.Analysis.UseCases) == 0 {
		r.placeholder()
		return
	}
	for _, u := range rec.Analysis.UseCases {
		fmt.Fprintf(r.writer, "- **%s:** %s", u.Name, u.Description)
		if len(u.Entities) > 0 {
			fmt.Fprintf(r.writer, " (entities: %s)", strings.Join(u.Entities, ", "))
		}
		fmt.Fprintln(r.writer)
	}
	fmt.Fprintln(r.writer)
}

func (r *MarkdownRenderer) renderMigration(rec *Record) {
	r.section("Migration")
	m := rec.Analysis.Migration
	fmt.Fprintf(r.writer, "- **Complexity:** %s\n", m.Complexity)
	fmt.Fprintf(r.writer, "- **Effort:** %s\n", m.Effort)
	fmt.Fprintf(r.writer, "- **Strategy:** %s\n\n", m.Strategy)
}

func (r *MarkdownRenderer) renderVisualizations(rec *Record) {
	r.section("Visualizations")
	rendered := 0
	for _, slot := range chartSlots {
		path, ok := r.charts[slot.key]
		if !ok || path == "" {
			continue
		}
		fmt.Fprintf(r.writer, "### %s\n\n![%s](%s)\n\n", slot.title, slot.title, path)
		rendered++
	}
	if rendered == 0 {
		r.placeholder()
	}
}

func (r *MarkdownRenderer) renderRecommendations(rec *Record) {
	r.section("Recommendations")
	r.subsection("Key Insights")
	r.list(rec.Analysis.Insights)
	r.subsection("Recommended Actions")
	r.list(rec.Analysis.Recommendations)
}

func (r *MarkdownRenderer) renderTechnicalDetails(rec *Record) {
	r.section("Technical Details")
	fmt.Fprintf(r.writer, "- **Analysis Type:** %s\n", rec.Analysis.AnalysisType)
	fmt.Fprintf(r.writer, "- **File Type:** %s\n", rec.File.Type)
	fmt.Fprintf(r.writer, "- **File Size:** %d bytes\n", rec.File.Size)
	fmt.Fprintln(r.writer)

	for _, t := range rec.Schema.Tables {
		fmt.Fprintf(r.writer, "### %s\n\n", t.Name)
		fmt.Fprintf(r.writer, "%d columns, %d rows", len(t.Columns), t.RowCount)
		if len(t.PrimaryKey) > 0 {
			fmt.Fprintf(r.writer, ", PK (%s)", strings.Join(t.PrimaryKey, ", "))
		}
		fmt.Fprintln(r.writer)
		fmt.Fprintln(r.writer)
		for _, c := range t.Columns {
			constraint := ""
			if !c.Nullable {
				constraint = ", NOT NULL"
			}
			if c.DefaultValue != nil {
				constraint += fmt.Sprintf(", DEFAULT %s", *c.DefaultValue)
			}
			fmt.Fprintf(r.writer, "- **%s:** %s%s\n", c.Name, c.Type, constraint)
		}
		fmt.Fprintln(r.writer)
		for _, fk := range t.ForeignKeys {
			fmt.Fprintf(r.writer, "- FK (%s) -> %s (%s)\n",
				strings.Join(fk.Columns, ", "), fk.ReferencedTable, strings.Join(fk.ReferencedColumns, ", "))
		}
		for _, idx := range t.Indexes {
			unique := ""
			if idx.IsUnique {
				unique = ", unique"
			}
			fmt.Fprintf(r.writer, "- Index %s on (%s)%s\n", idx.Name, strings.Join(idx.Columns, ", "), unique)
		}
		if len(t.ForeignKeys) > 0 || len(t.Indexes) > 0 {
			fmt.Fprintln(r.writer)
		}
	}
}

func (r *MarkdownRenderer) section(title string) {
	fmt.Fprintf(r.writer, "## %s\n\n", title)
}

func (r *MarkdownRenderer) subsection(title string) {
	fmt.Fprintf(r.writer, "### %s\n\n", title)
}

func (r *MarkdownRenderer) placeholder() {
	fmt.Fprintf(r.writer, "%s\n\n", noItems)
}

func (r *MarkdownRenderer) list(items []string) {
	if len(items) == 0 {
		r.placeholder()
		return
	}
	for _, item := range items {
		fmt.Fprintf(r.writer, "- %s\n", item)
	}
	fmt.Fprintln(r.writer)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
