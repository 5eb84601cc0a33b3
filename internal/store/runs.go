package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one entry of the load ledger.
type Run struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Genes    int
	Aliases  int
	Diseases int
}

// NewRun creates a ledger entry for a load of source with a fresh ID.
func NewRun(source string, res LoadResult) Run {
	return Run{
		ID:       uuid.NewString(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Genes:    res.Rows(GenesTable),
		Aliases:  res.Rows(AliasesTable),
		Diseases: res.Rows(DiseasesTable),
	}
}

// RecordRun appends r to the ledger.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, source, loaded_at, genes, aliases, diseases) VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.Source, r.LoadedAt, r.Genes, r.Aliases, r.Diseases)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Runs returns the ledger, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, source, loaded_at, genes, aliases, diseases FROM runs ORDER BY loaded_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.LoadedAt, &r.Genes, &r.Aliases, &r.Diseases); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}
