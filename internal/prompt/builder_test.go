package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/schemalens/schemalens/internal/schema"
)

func docWithTables(n int) *schema.Document {
	tables := make([]schema.Table, 0, n)
	for i := 1; i <= n; i++ {
		tables = append(tables, schema.Table{
			Name: fmt.Sprintf("t%02d", i),
			Columns: []schema.Column{
				{Name: "id", Type: "INTEGER", Nullable: false},
				{Name: "label", Type: "TEXT", Nullable: true},
			},
			PrimaryKey:  []string{"id"},
			ForeignKeys: []schema.ForeignKey{},
			Indexes:     []schema.Index{},
			RowCount:    int64(i * 10),
		})
	}
	return &schema.Document{Tables: tables}
}

func TestBuildIncludesAllTablesUnderCap(t *testing.T) {
	doc := docWithTables(3)
	p := Build(doc, "small.db")

	if p.TablesIncluded != 3 {
		t.Errorf("expected 3 tables included, got %d", p.TablesIncluded)
	}
	if p.TablesOmitted != 0 {
		t.Errorf("expected 0 tables omitted, got %d", p.TablesOmitted)
	}
	if p.Truncated() {
		t.Error("prompt should not report truncation")
	}
	for _, name := range []string{"t01", "t02", "t03"} {
		if !strings.Contains(p.Text, fmt.Sprintf("%q", name)) {
			t.Errorf("prompt text missing table %s", name)
		}
	}
	if !strings.Contains(p.Text, "small.db") {
		t.Error("prompt text missing database label")
	}
}

func TestBuildTruncatesAtCap(t *testing.T) {
	doc := docWithTables(20)
	p := Build(doc, "big.db")

	if p.TablesIncluded != MaxTables {
		t.Errorf("expected %d tables included, got %d", MaxTables, p.TablesIncluded)
	}
	if p.TablesOmitted != 5 {
		t.Errorf("expected 5 tables omitted, got %d", p.TablesOmitted)
	}
	if !p.Truncated() {
		t.Error("prompt should report truncation")
	}

	// The first MaxTables tables in document order survive; the rest leave
	// no trace in the prompt text.
	for i := 1; i <= MaxTables; i++ {
		name := fmt.Sprintf("t%02d", i)
		if !strings.Contains(p.Text, fmt.Sprintf("%q", name)) {
			t.Errorf("prompt text missing table %s", name)
		}
	}
	for i := MaxTables + 1; i <= 20; i++ {
		name := fmt.Sprintf("t%02d", i)
		if strings.Contains(p.Text, name) {
			t.Errorf("prompt text should not mention omitted table %s", name)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	doc := docWithTables(5)
	first := Build(doc, "repeat.db")
	second := Build(doc, "repeat.db")

	if first != second {
		t.Error("two builds of the same document are not identical")
	}
}

func TestBuildSerializesTableDetail(t *testing.T) {
	defaultVal := "0"
	doc := &schema.Document{Tables: []schema.Table{
		{
			Name: "accounts",
			Columns: []schema.Column{
				{Name: "account_id", Type: "INTEGER", Nullable: false},
				{Name: "balance", Type: "REAL", Nullable: false, DefaultValue: &defaultVal},
			},
			PrimaryKey: []string{"account_id"},
			ForeignKeys: []schema.ForeignKey{
				{Columns: []string{"owner_id"}, ReferencedTable: "owners", ReferencedColumns: []string{"owner_id"}},
			},
			Indexes: []schema.Index{
				{Name: "idx_accounts_owner", Columns: []string{"owner_id"}, IsUnique: false},
			},
			RowCount: 42,
		},
	}}

	p := Build(doc, "bank.db")

	for _, want := range []string{
		`"name": "accounts"`,
		`"column_count": 2`,
		`"row_count": 42`,
		`"account_id"`,
		`"idx_accounts_owner"`,
		`"owners"`,
		"Tables Included: 1",
	} {
		if !strings.Contains(p.Text, want) {
			t.Errorf("prompt text missing %s", want)
		}
	}
}
