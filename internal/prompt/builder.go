// Package prompt turns a schema document into the analysis prompt sent to
// the model. Building is pure: no I/O, deterministic for identical input.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/schemalens/schemalens/internal/schema"
)

// MaxTables caps how many tables are serialized into the prompt. Tables
// beyond the cap are silently omitted from the prompt text; the counters
// on Prompt make the omission visible to callers.
const MaxTables = 15

// Prompt is a built analysis prompt plus truncation accounting.
type Prompt struct {
	Text           string
	TablesIncluded int
	TablesOmitted  int
}

// Truncated reports whether any tables were dropped from the prompt.
func (p Prompt) Truncated() bool {
	return p.TablesOmitted > 0
}

// tableDetail is the JSON payload shape embedded per table.
type tableDetail struct {
	Name        string              `json:"name"`
	ColumnCount int                 `json:"column_count"`
	Columns     []columnDetail      `json:"columns"`
	RowCount    int64               `json:"row_count"`
	PrimaryKeys []string            `json:"primary_keys"`
	ForeignKeys []schema.ForeignKey `json:"foreign_keys"`
	Indexes     []schema.Index      `json:"indexes"`
}

type columnDetail struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default"`
}

// Build serializes the first MaxTables tables of the document, in document
// order, into a fixed instruction template requesting the analysis JSON
// shape back.
func Build(doc *schema.Document, fileLabel string) Prompt {
	included := doc.Tables
	omitted := 0
	if len(included) > MaxTables {
		omitted = len(included) - MaxTables
		included = included[:MaxTables]
	}

	details := make([]tableDetail, 0, len(included))
	for _, t := range included {
		cols := make([]columnDetail, 0, len(t.Columns))
		for _, c := range t.Columns {
			cols = append(cols, columnDetail{
				Name:     c.Name,
				Type:     c.Type,
				Nullable: c.Nullable,
				Default:  c.DefaultValue,
			})
		}
		details = append(details, tableDetail{
			Name:        t.Name,
			ColumnCount: len(t.Columns),
			Columns:     cols,
			RowCount:    t.RowCount,
			PrimaryKeys: emptyIfNil(t.PrimaryKey),
			ForeignKeys: t.ForeignKeys,
			Indexes:     t.Indexes,
		})
	}

	payload, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		// Only reachable with unmarshalable values, which the schema
		// types cannot contain.
		payload = []byte("[]")
	}

	var b strings.Builder
	b.WriteString("You are an expert database reverse engineer and data architect. ")
	b.WriteString("Perform a deep analysis of this database schema for reverse engineering purposes.\n\n")
	fmt.Fprintf(&b, "Database: %s\n", fileLabel)
	fmt.Fprintf(&b, "Database Type: sqlite\n")
	fmt.Fprintf(&b, "Tables Included: %d\n\n", len(included))
	b.WriteString("Detailed Schema:\n")
	b.Write(payload)
	b.WriteString("\n\n")
	b.WriteString(instruction)

	return Prompt{
		Text:           b.String(),
		TablesIncluded: len(included),
		TablesOmitted:  omitted,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// instruction specifies the exact response shape with one worked example.
// Field names here are a contract with the interpreter; change both
// together.
const instruction = `Respond with a single JSON object in this exact format:

{
  "reverse_engineering_analysis": {
    "business_domain_identification": {
      "primary_domain": "e-commerce",
      "sub_domains": ["customer_management", "order_processing"],
      "confidence_score": 95
    },
    "data_model_architecture": {
      "design_pattern": "Entity-Relationship Model",
      "normalization_level": "3NF",
      "flexibility_score": 75
    },
    "entity_relationship_mapping": {
      "core_entities": [
        {
          "entity_name": "Customer",
          "table_name": "customers",
          "key_attributes": ["customer_id", "email"],
          "business_purpose": "Store customer information"
        }
      ],
      "relationships": [
        {
          "relationship_name": "Customer-Orders",
          "parent_entity": "Customer",
          "child_entity": "Order",
          "relationship_type": "one-to-many",
          "business_meaning": "A customer can place multiple orders",
          "foreign_key": "orders.customer_id -> customers.customer_id"
        }
      ]
    }
  },
  "data_quality_assessment": {
    "integrity_analysis": {
      "completeness_score": 85
    },
    "quality_issues": [
      "Some nullable fields that should be required"
    ]
  },
  "performance_analysis": {
    "bottleneck_identification": [
      "Large table scans without proper indexing"
    ],
    "optimization_opportunities": [
      "Add composite indexes for common query patterns"
    ]
  },
  "use_case_analysis": {
    "primary_use_cases": [
      {
        "use_case": "Customer Management",
        "description": "Complete customer lifecycle from registration to order history",
        "data_entities": ["Customer", "Order"],
        "business_value": "Customer relationship management and analytics"
      }
    ]
  },
  "migration_insights": {
    "complexity_assessment": "Medium complexity - well-structured but needs optimization",
    "migration_effort": "2-3 months for complete migration",
    "migration_strategy": "Phased migration with parallel systems"
  },
  "key_insights": [
    "The schema models a classic order-to-cash flow"
  ],
  "recommendations": [
    "Index foreign key columns used in joins"
  ]
}

Focus on insights that help engineers understand the data model, business
logic, and potential use cases without manual exploration. Be specific about
relationships, data patterns, and business rules inferred from the schema
structure. Output only the JSON object.`
