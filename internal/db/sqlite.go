package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// supportedExtensions lists the file extensions accepted as SQLite databases.
var supportedExtensions = map[string]bool{
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// ExtractionError reports a database file that could not be introspected.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("schema extraction failed for %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// SQLiteClient manages a read-only connection to a SQLite database file.
type SQLiteClient struct {
	db   *sql.DB
	path string
}

// NewSQLiteClient opens the database file read-only and verifies it is
// a usable SQLite database. The source file is never mutated.
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("unsupported file extension %q (want .db, .sqlite, or .sqlite3)", ext)}
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("failed to open database: %w", err)}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	// A fresh handle pings fine against a non-database file; force a read.
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		db.Close()
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("not a valid SQLite database: %w", err)}
	}

	return &SQLiteClient{db: db, path: path}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// Path returns the database file path this client was opened with.
func (c *SQLiteClient) Path() string {
	return c.path
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}
