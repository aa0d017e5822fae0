package schema

// Document represents the complete schema of one database file.
// Tables are kept in extraction order; table names are unique within
// a document and column names unique within a table.
type Document struct {
	Tables []Table `json:"tables"`
}

// Table represents a database table
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	PrimaryKey  []string     `json:"primary_key"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
	Indexes     []Index      `json:"indexes"`
	RowCount    int64        `json:"row_count"`
}

// Column represents a table column. Type is the raw declared type string
// as the engine reports it (INTEGER, NVARCHAR(50), DATETIME, ...).
type Column struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Nullable     bool    `json:"nullable"`
	DefaultValue *string `json:"default,omitempty"`
}

// ForeignKey represents one foreign key constraint. Composite keys carry
// multiple columns in declaration order; Columns and ReferencedColumns
// always have the same length.
type ForeignKey struct {
	Columns           []string `json:"columns"`
	ReferencedTable   string   `json:"referenced_table"`
	ReferencedColumns []string `json:"referenced_columns"`
}

// Index represents a database index
type Index struct {
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	IsUnique bool     `json:"is_unique"`
}

// TotalColumns returns the column count summed across all tables.
func (d *Document) TotalColumns() int {
	total := 0
	for _, t := range d.Tables {
		total += len(t.Columns)
	}
	return total
}

// TotalRows returns the row count summed across all tables.
func (d *Document) TotalRows() int64 {
	var total int64
	for _, t := range d.Tables {
		total += t.RowCount
	}
	return total
}

// HasForeignKeys reports whether any table declares a foreign key.
func (d *Document) HasForeignKeys() bool {
	for _, t := range d.Tables {
		if len(t.ForeignKeys) > 0 {
			return true
		}
	}
	return false
}

// HasIndexes reports whether any table has at least one index.
func (d *Document) HasIndexes() bool {
	for _, t := range d.Tables {
		if len(t.Indexes) > 0 {
			return true
		}
	}
	return false
}

// Table returns the table with the given name, or nil if absent.
func (d *Document) Table(name string) *Table {
	for i := range d.Tables {
		if d.Tables[i].Name == name {
			return &d.Tables[i]
		}
	}
	return nil
}
