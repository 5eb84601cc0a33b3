// Package pipeline runs the end-to-end mining of one document: text
// extraction, identifier extraction, enrichment and writing.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/hgnc-miner/internal/gene"
	"github.com/inodb/hgnc-miner/internal/hgnc"
	"github.com/inodb/hgnc-miner/internal/textextract"
)

// Resolver turns identifiers into gene records.
type Resolver interface {
	ResolveAll(ctx context.Context, ids hgnc.IDSet, text string) []*gene.Record
}

// RecordWriter serializes gene records.
type RecordWriter interface {
	WriteHeader() error
	Write(rec *gene.Record) error
	Close() error
}

// OpenWriters creates the writers for a run. It is called only after the
// document has been read.
type OpenWriters func() ([]RecordWriter, error)

// Summary describes a completed run.
type Summary struct {
	Source      string
	Chars       int
	Identifiers int
	Records     []*gene.Record
	Aliases     int
	Diseases    int
}

// Runner runs the pipeline for one document at a time.
type Runner struct {
	extractor textextract.Extractor
	resolver  Resolver
	logger    *zap.Logger
}

// NewRunner creates a runner.
func NewRunner(e textextract.Extractor, r Resolver) *Runner {
	return &Runner{extractor: e, resolver: r, logger: zap.NewNop()}
}

// SetLogger sets the logger for stage messages.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Identify reads the document at path and returns its text and the
// identifiers found in it.
func (r *Runner) Identify(path string) (string, hgnc.IDSet, error) {
	text, err := r.extractor.Extract(path)
	if err != nil {
		return "", nil, fmt.Errorf("extract text: %w", err)
	}
	r.logger.Info("extracted text", zap.String("path", path), zap.Int("chars", len(text)))

	ids := hgnc.ExtractIDs(text)
	r.logger.Info("extracted identifiers", zap.Int("count", len(ids)))
	return text, ids, nil
}

// Run mines the document at path and writes the resolved records to the
// writers returned by open. A missing document or a write failure aborts
// the run; per-identifier failures only drop that identifier.
func (r *Runner) Run(ctx context.Context, path string, open OpenWriters) (*Summary, error) {
	text, ids, err := r.Identify(path)
	if err != nil {
		return nil, err
	}

	records := r.resolver.ResolveAll(ctx, ids, text)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	writers, err := open()
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	if err := WriteRecords(records, writers...); err != nil {
		return nil, err
	}

	s := &Summary{
		Source:      path,
		Chars:       len(text),
		Identifiers: len(ids),
		Records:     records,
	}
	for _, rec := range records {
		s.Aliases += len(rec.Aliases)
		s.Diseases += len(rec.FilteredDiseases)
	}
	r.logger.Info("wrote records",
		zap.Int("genes", len(records)),
		zap.Int("aliases", s.Aliases),
		zap.Int("diseases", s.Diseases))
	return s, nil
}

// WriteRecords writes a header and every record to each writer, then
// closes all writers.
func WriteRecords(records []*gene.Record, writers ...RecordWriter) error {
	var errs []error
	for _, w := range writers {
		if err := writeAll(w, records); err != nil {
			errs = append(errs, err)
		}
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output: %w", err))
		}
	}
	return errors.Join(errs...)
}

func writeAll(w RecordWriter, records []*gene.Record) error {
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
