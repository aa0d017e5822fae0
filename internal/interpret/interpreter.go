// Package interpret turns raw model output into an AnalysisResult.
// Interpretation never fails: output that does not contain a valid JSON
// object degrades to a tagged fallback result instead of an error.
package interpret

import (
	"encoding/json"
	"strings"

	"github.com/schemalens/schemalens/internal/schema"
)

const (
	defaultString = "Unknown"
	// noteLimit bounds the raw-text prefix recorded on fallback results.
	noteLimit = 200
)

// wireResponse mirrors the JSON shape requested by the prompt builder.
// Unrecognized extra fields are ignored.
type wireResponse struct {
	ReverseEngineering struct {
		BusinessDomain struct {
			PrimaryDomain   string   `json:"primary_domain"`
			SubDomains      []string `json:"sub_domains"`
			ConfidenceScore int      `json:"confidence_score"`
		} `json:"business_domain_identification"`
		Architecture struct {
			DesignPattern      string `json:"design_pattern"`
			NormalizationLevel string `json:"normalization_level"`
			FlexibilityScore   int    `json:"flexibility_score"`
		} `json:"data_model_architecture"`
		EntityMapping struct {
			CoreEntities []struct {
				EntityName      string   `json:"entity_name"`
				TableName       string   `json:"table_name"`
				KeyAttributes   []string `json:"key_attributes"`
				BusinessPurpose string   `json:"business_purpose"`
			} `json:"core_entities"`
			Relationships []struct {
				RelationshipName string `json:"relationship_name"`
				ParentEntity     string `json:"parent_entity"`
				ChildEntity      string `json:"child_entity"`
				RelationshipType string `json:"relationship_type"`
				ForeignKey       string `json:"foreign_key"`
				BusinessMeaning  string `json:"business_meaning"`
			} `json:"relationships"`
		} `json:"entity_relationship_mapping"`
	} `json:"reverse_engineering_analysis"`
	DataQuality struct {
		Integrity struct {
			CompletenessScore int `json:"completeness_score"`
		} `json:"integrity_analysis"`
		QualityIssues []string `json:"quality_issues"`
	} `json:"data_quality_assessment"`
	Performance struct {
		Bottlenecks   []string `json:"bottleneck_identification"`
		Optimizations []string `json:"optimization_opportunities"`
	} `json:"performance_analysis"`
	UseCaseAnalysis struct {
		PrimaryUseCases []struct {
			UseCase       string   `json:"use_case"`
			Description   string   `json:"description"`
			DataEntities  []string `json:"data_entities"`
			BusinessValue string   `json:"business_value"`
		} `json:"primary_use_cases"`
	} `json:"use_case_analysis"`
	MigrationInsights struct {
		Complexity string `json:"complexity_assessment"`
		Effort     string `json:"migration_effort"`
		Strategy   string `json:"migration_strategy"`
	} `json:"migration_insights"`
	KeyInsights     []string `json:"key_insights"`
	Recommendations []string `json:"recommendations"`
}

// Interpret extracts the first balanced JSON object from rawText and maps
// it into an AnalysisResult, defaulting any missing field. The schema
// document is used to validate entity table references. On any parse
// failure a fallback result is returned; Interpret never fails.
func Interpret(rawText string, doc *schema.Document) *AnalysisResult {
	span, ok := extractObject(rawText)
	if !ok {
		return fallbackResult(rawText)
	}

	var wire wireResponse
	if err := json.Unmarshal([]byte(span), &wire); err != nil {
		return fallbackResult(rawText)
	}

	return mapResponse(&wire, doc)
}

// extractObject returns the first balanced {...} span in text. The scanner
// tracks nesting depth, string literals, and escapes, so prose containing
// stray braces before or after the object does not corrupt the match.
func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

func mapResponse(wire *wireResponse, doc *schema.Document) *AnalysisResult {
	re := &wire.ReverseEngineering

	result := &AnalysisResult{
		AnalysisType: AnalysisTypeLLM,
		BusinessDomain: BusinessDomain{
			Primary:    orUnknown(re.BusinessDomain.PrimaryDomain),
			Confidence: clampScore(re.BusinessDomain.ConfidenceScore),
			SubDomains: orEmpty(re.BusinessDomain.SubDomains),
		},
		Architecture: Architecture{
			DesignPattern:      orUnknown(re.Architecture.DesignPattern),
			NormalizationLevel: orUnknown(re.Architecture.NormalizationLevel),
			FlexibilityScore:   clampScore(re.Architecture.FlexibilityScore),
		},
		Entities:      []EntityInsight{},
		Relationships: []RelationshipInsight{},
		DataQuality: DataQuality{
			CompletenessScore: clampScore(wire.DataQuality.Integrity.CompletenessScore),
			Notes:             orEmpty(wire.DataQuality.QualityIssues),
		},
		Performance: Performance{
			Bottlenecks:     orEmpty(wire.Performance.Bottlenecks),
			Recommendations: orEmpty(wire.Performance.Optimizations),
		},
		UseCases: []UseCase{},
		Migration: Migration{
			Complexity: orUnknown(wire.MigrationInsights.Complexity),
			Effort:     orUnknown(wire.MigrationInsights.Effort),
			Strategy:   orUnknown(wire.MigrationInsights.Strategy),
		},
		Insights:        orEmpty(wire.KeyInsights),
		Recommendations: orEmpty(wire.Recommendations),
		ConfidenceScore: clampScore(re.BusinessDomain.ConfidenceScore),
	}

	for _, e := range re.EntityMapping.CoreEntities {
		// A truncated prompt cannot reference truncated tables; an entity
		// naming a table the document does not have is model confusion.
		if e.TableName != "" && doc != nil && doc.Table(e.TableName) == nil {
			continue
		}
		result.Entities = append(result.Entities, EntityInsight{
			Name:          orUnknown(e.EntityName),
			TableName:     e.TableName,
			KeyAttributes: orEmpty(e.KeyAttributes),
			Purpose:       e.BusinessPurpose,
		})
	}

	for _, r := range re.EntityMapping.Relationships {
		result.Relationships = append(result.Relationships, RelationshipInsight{
			Name:       orUnknown(r.RelationshipName),
			Parent:     r.ParentEntity,
			Child:      r.ChildEntity,
			Type:       orUnknown(r.RelationshipType),
			ForeignKey: r.ForeignKey,
			Meaning:    r.BusinessMeaning,
		})
	}

	for _, u := range wire.UseCaseAnalysis.PrimaryUseCases {
		result.UseCases = append(result.UseCases, UseCase{
			Name:          orUnknown(u.UseCase),
			Description:   u.Description,
			Entities:      orEmpty(u.DataEntities),
			BusinessValue: u.BusinessValue,
		})
	}

	return result
}

// fallbackResult builds the degraded result used when no JSON object could
// be recovered. Exactly three generic insights and three generic
// recommendations, confidence zero, and a raw-text prefix for debugging.
func fallbackResult(rawText string) *AnalysisResult {
	note := strings.TrimSpace(rawText)
	if len(note) > noteLimit {
		note = note[:noteLimit]
	}

	return &AnalysisResult{
		AnalysisType: AnalysisTypeFallback,
		BusinessDomain: BusinessDomain{
			Primary:    defaultString,
			Confidence: 0,
			SubDomains: []string{},
		},
		Architecture: Architecture{
			DesignPattern:      defaultString,
			NormalizationLevel: defaultString,
			FlexibilityScore:   0,
		},
		Entities:      []EntityInsight{},
		Relationships: []RelationshipInsight{},
		DataQuality: DataQuality{
			CompletenessScore: 0,
			Notes:             []string{},
		},
		Performance: Performance{
			Bottlenecks:     []string{},
			Recommendations: []string{},
		},
		UseCases: []UseCase{},
		Migration: Migration{
			Complexity: defaultString,
			Effort:     defaultString,
			Strategy:   defaultString,
		},
		Insights: []string{
			"The schema was extracted successfully but the model response could not be parsed",
			"Structural facts in this report come directly from database introspection",
			"Re-running the analysis may produce a parseable model response",
		},
		Recommendations: []string{
			"Review the raw model output recorded in the note field",
			"Verify the model and API configuration before retrying",
			"Use the schema facts in this report for manual analysis",
		},
		ConfidenceScore: 0,
		Note:            note,
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return defaultString
	}
	return s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
