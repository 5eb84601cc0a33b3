package store

import (
	"context"
	"database/sql/driver"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/inodb/hgnc-miner/internal/output"
)

// relation ties a table to the CSV file it is loaded from.
type relation struct {
	table  string
	file   string
	header []string
}

var relations = []relation{
	{GenesTable, output.GenesFile, output.GenesHeader},
	{AliasesTable, output.AliasesFile, output.AliasesHeader},
	{DiseasesTable, output.DiseasesFile, output.DiseasesHeader},
}

// TableLoad is the outcome of loading one table.
type TableLoad struct {
	Table string
	Rows  int
	Err   error
}

// LoadResult holds the outcome of LoadCSV per table.
type LoadResult struct {
	Tables []TableLoad
}

// Rows returns the number of rows loaded into table, or 0 if it failed.
func (r LoadResult) Rows(table string) int {
	for _, t := range r.Tables {
		if t.Table == table && t.Err == nil {
			return t.Rows
		}
	}
	return 0
}

// Failed returns the tables that failed to load.
func (r LoadResult) Failed() []string {
	var out []string
	for _, t := range r.Tables {
		if t.Err != nil {
			out = append(out, t.Table)
		}
	}
	return out
}

// LoadCSV replaces the contents of the gene tables with the CSV files in
// dir. The three files must exist. Each table loads independently: a
// table that fails is logged while the others still load.
func (s *Store) LoadCSV(ctx context.Context, dir string) (LoadResult, error) {
	for _, rel := range relations {
		if _, err := os.Stat(filepath.Join(dir, rel.file)); err != nil {
			return LoadResult{}, fmt.Errorf("load %s: %w", rel.table, err)
		}
	}

	var res LoadResult
	for _, rel := range relations {
		path := filepath.Join(dir, rel.file)
		rows, err := readCSV(path, rel.header)
		if err == nil {
			err = s.replaceRows(ctx, rel, rows)
		}
		if err != nil {
			s.logger.Warn("failed to load table",
				zap.String("table", rel.table), zap.String("path", path), zap.Error(err))
			res.Tables = append(res.Tables, TableLoad{Table: rel.table, Err: err})
			continue
		}
		s.logger.Info("loaded table", zap.String("table", rel.table), zap.Int("count", len(rows)))
		res.Tables = append(res.Tables, TableLoad{Table: rel.table, Rows: len(rows)})
	}
	return res, nil
}

// readCSV reads the data rows of path, checking its header row.
func readCSV(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	got, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: missing header", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for i, col := range header {
		if got[i] != col {
			return nil, fmt.Errorf("%s: unexpected header %q, want %q", path, got, header)
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func (s *Store) replaceRows(ctx context.Context, rel relation, rows [][]string) error {
	if s.driver == DriverDuckDB {
		return s.appendDuckDB(ctx, rel.table, rows)
	}
	return s.insertRows(ctx, rel, rows)
}

// appendDuckDB clears table and bulk-loads rows with the DuckDB Appender
// API. DuckDB rejects re-inserting a deleted key within the same
// transaction, so the clear is committed first and a failed append
// leaves the table empty.
func (s *Store) appendDuckDB(ctx context.Context, table string, rows [][]string) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	for _, row := range rows {
		values := make([]driver.Value, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := appender.AppendRow(values...); err != nil {
			appender.Close()
			return fmt.Errorf("append %s row: %w", table, err)
		}
	}
	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", table, err)
	}
	return nil
}

// insertRows loads rows with a prepared INSERT inside one transaction.
func (s *Store) insertRows(ctx context.Context, rel relation, rows [][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+rel.table); err != nil {
		return fmt.Errorf("clear %s: %w", rel.table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(rel.header)), ", ")
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+rel.table+" VALUES ("+placeholders+")")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row: %w", rel.table, err)
		}
	}
	return tx.Commit()
}
