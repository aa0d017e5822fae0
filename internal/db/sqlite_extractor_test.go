package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

// createFixtureDB builds a small e-commerce style database used across the
// extractor tests.
func createFixtureDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open fixture database: %v", err)
	}
	defer conn.Close()

	statements := []string{
		`CREATE TABLE customers (
			customer_id INTEGER PRIMARY KEY,
			email TEXT NOT NULL,
			name TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE products (
			product_id INTEGER PRIMARY KEY,
			sku TEXT NOT NULL,
			price REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE orders (
			order_id INTEGER PRIMARY KEY,
			customer_id INTEGER NOT NULL,
			status TEXT,
			FOREIGN KEY (customer_id) REFERENCES customers(customer_id)
		)`,
		`CREATE TABLE order_items (
			order_id INTEGER,
			line_no INTEGER,
			product_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL,
			PRIMARY KEY (order_id, line_no),
			FOREIGN KEY (product_id) REFERENCES products(product_id)
		)`,
		`CREATE TABLE shipments (
			shipment_id INTEGER PRIMARY KEY,
			order_id INTEGER,
			line_no INTEGER,
			FOREIGN KEY (order_id, line_no) REFERENCES order_items(order_id, line_no)
		)`,
		`CREATE INDEX idx_orders_customer ON orders(customer_id)`,
		`CREATE UNIQUE INDEX idx_customers_email ON customers(email)`,
		`INSERT INTO customers (customer_id, email) VALUES (1, 'a@example.com'), (2, 'b@example.com')`,
		`INSERT INTO products (product_id, sku) VALUES (1, 'SKU-1'), (2, 'SKU-2'), (3, 'SKU-3')`,
		`INSERT INTO orders (order_id, customer_id) VALUES (10, 1)`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("failed to execute %q: %v", stmt, err)
		}
	}
	return path
}

func TestExtractSchemaTables(t *testing.T) {
	path := createFixtureDB(t)
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteClient failed: %v", err)
	}
	defer client.Close()

	doc, err := NewSQLiteExtractor(client, nil).ExtractSchema(ctx, nil)
	if err != nil {
		t.Fatalf("ExtractSchema failed: %v", err)
	}

	want := []string{"customers", "order_items", "orders", "products", "shipments"}
	if len(doc.Tables) != len(want) {
		t.Fatalf("expected %d tables, got %d", len(want), len(doc.Tables))
	}
	for i, name := range want {
		if doc.Tables[i].Name != name {
			t.Errorf("table %d: expected %s, got %s", i, name, doc.Tables[i].Name)
		}
	}
}

func TestExtractSchemaDeterminism(t *testing.T) {
	path := createFixtureDB(t)
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteClient failed: %v", err)
	}
	defer client.Close()

	extractor := NewSQLiteExtractor(client, nil)
	first, err := extractor.ExtractSchema(ctx, nil)
	if err != nil {
		t.Fatalf("first extraction failed: %v", err)
	}
	second, err := extractor.ExtractSchema(ctx, nil)
	if err != nil {
		t.Fatalf("second extraction failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("two extractions of an unmodified file are not equal")
	}
}

func TestExtractCompositeForeignKey(t *testing.T) {
	path := createFixtureDB(t)
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteClient failed: %v", err)
	}
	defer client.Close()

	doc, err := NewSQLiteExtractor(client, nil).ExtractSchema(ctx, []string{"shipments"})
	if err != nil {
		t.Fatalf("ExtractSchema failed: %v", err)
	}

	table := doc.Table("shipments")
	if table == nil {
		t.Fatal("shipments table not extracted")
	}
	if len(table.ForeignKeys) != 1 {
		t.Fatalf("expected exactly 1 foreign key, got %d", len(table.ForeignKeys))
	}

	fk := table.ForeignKeys[0]
	if len(fk.Columns) != 2 {
		t.Fatalf("expected composite key with 2 columns, got %v", fk.Columns)
	}
	if fk.ReferencedTable != "order_items" {
		t.Errorf("expected reference to order_items, got %s", fk.ReferencedTable)
	}
	if len(fk.ReferencedColumns) != 2 {
		t.Errorf("expected 2 referenced columns, got %v", fk.ReferencedColumns)
	}
}

func TestExtractColumnsAndPrimaryKeys(t *testing.T) {
	path := createFixtureDB(t)
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteClient failed: %v", err)
	}
	defer client.Close()

	doc, err := NewSQLiteExtractor(client, nil).ExtractSchema(ctx, nil)
	if err != nil {
		t.Fatalf("ExtractSchema failed: %v", err)
	}

	customers := doc.Table("customers")
	if customers == nil {
		t.Fatal("customers table not extracted")
	}

	wantColumns := []string{"customer_id", "email", "name", "created_at"}
	if len(customers.Columns) != len(wantColumns) {
		t.Fatalf("expected %d columns, got %d", len(wantColumns), len(customers.Columns))
	}
	for i, name := range wantColumns {
		if customers.Columns[i].Name != name {
			t.Errorf("column %d: expected %s, got %s (ordinal order not preserved)", i, name, customers.Columns[i].Name)
		}
	}

	email := customers.Columns[1]
	if email.Nullable {
		t.Error("email should not be nullable")
	}
	createdAt := customers.Columns[3]
	if createdAt.DefaultValue == nil {
		t.Error("created_at should carry a default value")
	}

	items := doc.Table("order_items")
	if items == nil {
		t.Fatal("order_items table not extracted")
	}
	wantPK := []string{"order_id", "line_no"}
	if !reflect.DeepEqual(items.PrimaryKey, wantPK) {
		t.Errorf("expected composite primary key %v, got %v", wantPK, items.PrimaryKey)
	}
}

func TestExtractRowCountsAndIndexes(t *testing.T) {
	path := createFixtureDB(t)
	ctx := context.Background()

	client, err := NewSQLiteClient(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteClient failed: %v", err)
	}
	defer client.Close()

	doc, err := NewSQLiteExtractor(client, nil).ExtractSchema(ctx, nil)
	if err != nil {
		t.Fatalf("ExtractSchema failed: %v", err)
	}

	counts := map[string]int64{
		"customers":   2,
		"products":    3,
		"orders":      1,
		"order_items": 0,
		"shipments":   0,
	}
	for name, want := range counts {
		table := doc.Table(name)
		if table == nil {
			t.Fatalf("table %s not extracted", name)
		}
		if table.RowCount != want {
			t.Errorf("table %s: expected %d rows, got %d", name, want, table.RowCount)
		}
	}

	customers := doc.Table("customers")
	if len(customers.Indexes) != 1 {
		t.Fatalf("expected 1 index on customers, got %d", len(customers.Indexes))
	}
	if !customers.Indexes[0].IsUnique {
		t.Error("idx_customers_email should be unique")
	}
	if !reflect.DeepEqual(customers.Indexes[0].Columns, []string{"email"}) {
		t.Errorf("unexpected index columns: %v", customers.Indexes[0].Columns)
	}
}

func TestNewSQLiteClientErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "missing.db")},
		{name: "unsupported extension", path: filepath.Join(t.TempDir(), "schema.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSQLiteClient(ctx, tt.path)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			var extractionErr *ExtractionError
			if !errors.As(err, &extractionErr) {
				t.Errorf("expected *ExtractionError, got %T", err)
			}
		})
	}
}
