package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/schemalens/schemalens/internal/schema"
)

// SQLiteExtractor handles schema extraction from SQLite
type SQLiteExtractor struct {
	client *SQLiteClient
	log    *logrus.Logger
}

// NewSQLiteExtractor creates a new SQLite schema extractor
func NewSQLiteExtractor(client *SQLiteClient, log *logrus.Logger) *SQLiteExtractor {
	if log == nil {
		log = logrus.New()
	}
	return &SQLiteExtractor{
		client: client,
		log:    log,
	}
}

// ExtractSchema extracts the complete schema for specified tables.
// If tables is empty, extracts all user tables in the database.
// Extraction is read-only; two extractions of an unmodified file yield
// equal documents (row counts can drift under a concurrent writer).
func (e *SQLiteExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Document, error) {
	tableNames, err := e.getTableNames(ctx, tables)
	if err != nil {
		return nil, &ExtractionError{Path: e.client.Path(), Err: fmt.Errorf("failed to list tables: %w", err)}
	}

	extracted := make([]schema.Table, 0, len(tableNames))
	for _, tableName := range tableNames {
		e.log.Debugf("extracting table %s", tableName)
		table, err := e.extractTable(ctx, tableName)
		if err != nil {
			return nil, &ExtractionError{Path: e.client.Path(), Err: fmt.Errorf("failed to extract table %s: %w", tableName, err)}
		}
		extracted = append(extracted, *table)
	}

	return &schema.Document{Tables: extracted}, nil
}

// getTableNames returns the list of tables to extract, excluding
// engine-internal sqlite_* tables.
func (e *SQLiteExtractor) getTableNames(ctx context.Context, requestedTables []string) ([]string, error) {
	if len(requestedTables) > 0 {
		return requestedTables, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tableList []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tableList = append(tableList, tableName)
	}

	return tableList, rows.Err()
}

// extractTable collects all information for a single table in one pass.
func (e *SQLiteExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{
		Name:        tableName,
		PrimaryKey:  []string{},
		ForeignKeys: []schema.ForeignKey{},
		Indexes:     []schema.Index{},
	}

	columns, pk, err := e.extractColumns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	table.Columns = columns
	if len(pk) > 0 {
		table.PrimaryKey = pk
	}

	fks, err := e.extractForeignKeys(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	if len(fks) > 0 {
		table.ForeignKeys = fks
	}

	indexes, err := e.extractIndexes(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	if len(indexes) > 0 {
		table.Indexes = indexes
	}

	count, err := e.countRows(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	table.RowCount = count

	return table, nil
}

// extractColumns returns columns in declared ordinal order along with
// the primary key column set (in key order).
func (e *SQLiteExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, []string, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	type pkEntry struct {
		name  string
		order int
	}
	var pkEntries []pkEntry

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pkOrder int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pkOrder); err != nil {
			return nil, nil, err
		}

		col := schema.Column{
			Name:     name,
			Type:     colType,
			Nullable: notNull == 0,
		}
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}

		if pkOrder > 0 {
			pkEntries = append(pkEntries, pkEntry{name: name, order: pkOrder})
		}

		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("table %s has no columns", tableName)
	}

	// PRAGMA table_info reports pk position, not order; sort by it so
	// composite primary keys come out in key order.
	sort.Slice(pkEntries, func(i, j int) bool { return pkEntries[i].order < pkEntries[j].order })
	pk := make([]string, 0, len(pkEntries))
	for _, entry := range pkEntries {
		pk = append(pk, entry.name)
	}

	return columns, pk, nil
}

// extractForeignKeys groups PRAGMA foreign_key_list rows by constraint id,
// so a composite key produces one ForeignKey with multiple columns rather
// than one entry per column pair.
func (e *SQLiteExtractor) extractForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	query := fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byConstraint := make(map[int]*schema.ForeignKey)
	var order []int

	for rows.Next() {
		var id, seq int
		var targetTable, fromCol string
		var toCol sql.NullString
		var onUpdate, onDelete, match string

		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		fk, ok := byConstraint[id]
		if !ok {
			fk = &schema.ForeignKey{ReferencedTable: targetTable}
			byConstraint[id] = fk
			order = append(order, id)
		}
		fk.Columns = append(fk.Columns, fromCol)
		// toCol is NULL when the constraint references the target's
		// implicit primary key.
		if toCol.Valid {
			fk.ReferencedColumns = append(fk.ReferencedColumns, toCol.String)
		} else {
			fk.ReferencedColumns = append(fk.ReferencedColumns, "")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fks := make([]schema.ForeignKey, 0, len(order))
	for _, id := range order {
		fks = append(fks, *byConstraint[id])
	}
	return fks, nil
}

// extractIndexes extracts index information, skipping the implicit
// sqlite_autoindex entries that back primary keys.
func (e *SQLiteExtractor) extractIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := fmt.Sprintf("PRAGMA index_list(%s)", quoteIdent(tableName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index

	for rows.Next() {
		var seq int
		var name, origin string
		var unique, partial int

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}

		if strings.HasPrefix(name, "sqlite_autoindex") {
			continue
		}

		columns, err := e.indexColumns(ctx, name)
		if err != nil {
			return nil, err
		}

		if len(columns) > 0 {
			indexes = append(indexes, schema.Index{
				Name:     name,
				Columns:  columns,
				IsUnique: unique == 1,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// index_list order is not documented; sort by name for determinism.
	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })

	return indexes, nil
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%s)", quoteIdent(indexName))

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}
	return columns, rows.Err()
}

// countRows runs a full COUNT(*). Acceptable at analysis scale; not
// designed for huge tables.
func (e *SQLiteExtractor) countRows(ctx context.Context, tableName string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(tableName))

	var count int64
	if err := e.client.GetDB().QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// quoteIdent quotes an identifier for interpolation into a PRAGMA or
// COUNT statement; PRAGMA does not support bound parameters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
