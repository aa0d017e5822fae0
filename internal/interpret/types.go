package interpret

// Analysis type tags. Every AnalysisResult carries exactly one; downstream
// consumers branch on it instead of probing optional fields.
const (
	// AnalysisTypeLLM marks a result parsed from model output, even when
	// the parsed object was empty and every field defaulted.
	AnalysisTypeLLM = "llm"
	// AnalysisTypeFallback marks the degraded result produced when no
	// valid JSON object could be recovered from the model output.
	AnalysisTypeFallback = "fallback"
)

// AnalysisResult is the structured interpretation of the model's free-text
// response. Immutable once built; consumed only by the report assembler
// and renderers.
type AnalysisResult struct {
	AnalysisType    string                `json:"analysis_type"`
	BusinessDomain  BusinessDomain        `json:"business_domain"`
	Architecture    Architecture          `json:"architecture"`
	Entities        []EntityInsight       `json:"entities"`
	Relationships   []RelationshipInsight `json:"relationships"`
	DataQuality     DataQuality           `json:"data_quality"`
	Performance     Performance           `json:"performance"`
	UseCases        []UseCase             `json:"use_cases"`
	Migration       Migration             `json:"migration"`
	Insights        []string              `json:"insights"`
	Recommendations []string              `json:"recommendations"`
	ConfidenceScore int                   `json:"confidence_score"`
	Note            string                `json:"note,omitempty"`
}

// BusinessDomain identifies what the data is about.
type BusinessDomain struct {
	Primary    string   `json:"primary"`
	Confidence int      `json:"confidence"`
	SubDomains []string `json:"sub_domains"`
}

// Architecture characterizes the data model design.
type Architecture struct {
	DesignPattern      string `json:"design_pattern"`
	NormalizationLevel string `json:"normalization_level"`
	FlexibilityScore   int    `json:"flexibility_score"`
}

// EntityInsight describes one business entity backed by a table.
type EntityInsight struct {
	Name          string   `json:"name"`
	TableName     string   `json:"table_name"`
	KeyAttributes []string `json:"key_attributes"`
	Purpose       string   `json:"purpose"`
}

// RelationshipInsight describes one relationship between entities.
type RelationshipInsight struct {
	Name       string `json:"name"`
	Parent     string `json:"parent"`
	Child      string `json:"child"`
	Type       string `json:"type"`
	ForeignKey string `json:"foreign_key"`
	Meaning    string `json:"meaning"`
}

// DataQuality summarizes integrity and completeness findings.
type DataQuality struct {
	CompletenessScore int      `json:"completeness_score"`
	Notes             []string `json:"notes"`
}

// Performance collects bottlenecks and optimization advice.
type Performance struct {
	Bottlenecks     []string `json:"bottlenecks"`
	Recommendations []string `json:"recommendations"`
}

// UseCase describes one primary use case the schema supports.
type UseCase struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Entities      []string `json:"entities"`
	BusinessValue string   `json:"business_value"`
}

// Migration carries migration planning notes.
type Migration struct {
	Complexity string `json:"complexity"`
	Effort     string `json:"effort"`
	Strategy   string `json:"strategy"`
}

// IsFallback reports whether this result came from the degraded path.
func (r *AnalysisResult) IsFallback() bool {
	return r.AnalysisType == AnalysisTypeFallback
}
