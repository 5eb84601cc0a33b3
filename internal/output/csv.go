// Package output writes gene records as the three relations
// (genes, aliases, diseases) consumed by the database loader.
package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/inodb/hgnc-miner/internal/gene"
)

// CSV file names inside the output directory.
const (
	GenesFile    = "hgnc_gene.csv"
	AliasesFile  = "gene_aliases.csv"
	DiseasesFile = "gene_diseases.csv"
)

// Column headers of the three relations.
var (
	GenesHeader    = []string{"hgnc_id", "hgnc_gene_name", "hg38", "hg19"}
	AliasesHeader  = []string{"hgnc_id", "alias"}
	DiseasesHeader = []string{"hgnc_id", "disease"}
)

// Counts holds the number of data rows written per relation.
type Counts struct {
	Genes    int
	Aliases  int
	Diseases int
}

// CSVWriter writes records to three CSV streams.
type CSVWriter struct {
	genes    *csv.Writer
	aliases  *csv.Writer
	diseases *csv.Writer
	closers  []io.Closer
	counts   Counts
}

// NewCSVWriter creates a writer over the given streams.
func NewCSVWriter(genes, aliases, diseases io.Writer) *CSVWriter {
	return &CSVWriter{
		genes:    csv.NewWriter(genes),
		aliases:  csv.NewWriter(aliases),
		diseases: csv.NewWriter(diseases),
	}
}

// CreateCSV creates dir if needed and truncates the three CSV files in it.
// Close must be called to flush and release the files.
func CreateCSV(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var files []*os.File
	for _, name := range []string{GenesFile, AliasesFile, DiseasesFile} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			for _, open := range files {
				open.Close()
			}
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
		files = append(files, f)
	}

	w := NewCSVWriter(files[0], files[1], files[2])
	for _, f := range files {
		w.closers = append(w.closers, f)
	}
	return w, nil
}

// WriteHeader writes the header row of each relation.
func (w *CSVWriter) WriteHeader() error {
	if err := w.genes.Write(GenesHeader); err != nil {
		return fmt.Errorf("write %s header: %w", GenesFile, err)
	}
	if err := w.aliases.Write(AliasesHeader); err != nil {
		return fmt.Errorf("write %s header: %w", AliasesFile, err)
	}
	if err := w.diseases.Write(DiseasesHeader); err != nil {
		return fmt.Errorf("write %s header: %w", DiseasesFile, err)
	}
	return nil
}

// Write writes one genes row, one aliases row per alias and one diseases
// row per filtered disease.
func (w *CSVWriter) Write(rec *gene.Record) error {
	if err := w.genes.Write([]string{rec.HGNCID, rec.Symbol, rec.Build38Locus, rec.Build19Locus}); err != nil {
		return fmt.Errorf("write gene %s: %w", rec.HGNCID, err)
	}
	w.counts.Genes++

	for _, alias := range rec.Aliases {
		if err := w.aliases.Write([]string{rec.HGNCID, alias}); err != nil {
			return fmt.Errorf("write alias for %s: %w", rec.HGNCID, err)
		}
		w.counts.Aliases++
	}

	for _, disease := range rec.FilteredDiseases {
		if err := w.diseases.Write([]string{rec.HGNCID, disease}); err != nil {
			return fmt.Errorf("write disease for %s: %w", rec.HGNCID, err)
		}
		w.counts.Diseases++
	}
	return nil
}

// Flush flushes any buffered rows.
func (w *CSVWriter) Flush() error {
	var errs []error
	for _, cw := range []*csv.Writer{w.genes, w.aliases, w.diseases} {
		cw.Flush()
		if err := cw.Error(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes the writer and closes any files opened by CreateCSV.
func (w *CSVWriter) Close() error {
	errs := []error{w.Flush()}
	for _, c := range w.closers {
		errs = append(errs, c.Close())
	}
	w.closers = nil
	return errors.Join(errs...)
}

// Counts returns the number of data rows written so far.
func (w *CSVWriter) Counts() Counts {
	return w.counts
}
