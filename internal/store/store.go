// Package store loads the gene relations into a relational database.
// DuckDB is the default backend; SQLite is supported for environments
// without the DuckDB shared library.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Supported database drivers.
const (
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite3"
)

// Table names.
const (
	GenesTable    = "hgnc_gene"
	AliasesTable  = "gene_aliases"
	DiseasesTable = "gene_diseases"
	RunsTable     = "runs"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS hgnc_gene (
		hgnc_id VARCHAR PRIMARY KEY,
		hgnc_gene_name VARCHAR,
		hg38 VARCHAR,
		hg19 VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS gene_aliases (
		hgnc_id VARCHAR,
		alias VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS gene_diseases (
		hgnc_id VARCHAR,
		disease VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR PRIMARY KEY,
		source VARCHAR,
		loaded_at TIMESTAMP,
		genes INTEGER,
		aliases INTEGER,
		diseases INTEGER
	)`,
}

// Store manages a database connection holding the gene relations.
type Store struct {
	db     *sql.DB
	driver string
	dsn    string
	logger *zap.Logger
}

// Open opens the database for driver at dsn. A file DSN has its parent
// directory created. Use an empty DSN for an in-memory DuckDB database.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverDuckDB, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q (want %s or %s)", driver, DriverDuckDB, DriverSQLite)
	}

	if path := filePath(dsn); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	return &Store{db: db, driver: driver, dsn: dsn, logger: zap.NewNop()}, nil
}

// filePath returns the filesystem path of dsn, or "" for in-memory and
// empty DSNs.
func filePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

// SetLogger sets the logger for load progress messages.
func (s *Store) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WaitReady pings the database up to attempts times, sleeping delay
// between attempts, and returns the last error once attempts run out.
func (s *Store) WaitReady(ctx context.Context, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = s.db.PingContext(ctx); err == nil {
			s.logger.Info("database is ready", zap.String("driver", s.driver), zap.Int("attempt", i))
			return nil
		}
		s.logger.Warn("database not ready",
			zap.String("driver", s.driver),
			zap.Int("attempt", i),
			zap.Int("attempts", attempts),
			zap.Error(err))
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("database not ready after %d attempts: %w", attempts, err)
}

// EnsureSchema creates the tables if they don't exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	switch table {
	case GenesTable, AliasesTable, DiseasesTable, RunsTable:
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Diseases returns the confirmed diseases loaded for hgncID, sorted.
func (s *Store) Diseases(ctx context.Context, hgncID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT disease FROM gene_diseases WHERE hgnc_id = ? ORDER BY disease", hgncID)
	if err != nil {
		return nil, fmt.Errorf("query diseases: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan disease: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diseases: %w", err)
	}
	return out, nil
}
