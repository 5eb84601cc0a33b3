package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/inodb/hgnc-miner/internal/gene"
)

// WorkbookFile is the workbook name inside the output directory.
const WorkbookFile = "genes.xlsx"

// Sheet names, one per relation.
const (
	GenesSheet    = "hgnc_gene"
	AliasesSheet  = "gene_aliases"
	DiseasesSheet = "gene_diseases"
)

// XLSXWriter writes the three relations as sheets of one workbook. The
// workbook is serialized on Close.
type XLSXWriter struct {
	f    *excelize.File
	dest io.Writer
	file *os.File
	next map[string]int
}

// NewXLSXWriter creates a workbook writer that serializes to w on Close.
func NewXLSXWriter(w io.Writer) (*XLSXWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", GenesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet %s: %w", GenesSheet, err)
	}
	for _, name := range []string{AliasesSheet, DiseasesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	return &XLSXWriter{
		f:    f,
		dest: w,
		next: map[string]int{GenesSheet: 1, AliasesSheet: 1, DiseasesSheet: 1},
	}, nil
}

// CreateXLSX creates dir if needed and a workbook file in it.
func CreateXLSX(dir string) (*XLSXWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	out, err := os.Create(filepath.Join(dir, WorkbookFile))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", WorkbookFile, err)
	}
	w, err := NewXLSXWriter(out)
	if err != nil {
		out.Close()
		return nil, err
	}
	w.file = out
	return w, nil
}

// WriteHeader writes the header row of each sheet.
func (w *XLSXWriter) WriteHeader() error {
	if err := w.appendRow(GenesSheet, GenesHeader); err != nil {
		return err
	}
	if err := w.appendRow(AliasesSheet, AliasesHeader); err != nil {
		return err
	}
	return w.appendRow(DiseasesSheet, DiseasesHeader)
}

// Write appends the rows of rec to the three sheets.
func (w *XLSXWriter) Write(rec *gene.Record) error {
	if err := w.appendRow(GenesSheet, []string{rec.HGNCID, rec.Symbol, rec.Build38Locus, rec.Build19Locus}); err != nil {
		return err
	}
	for _, alias := range rec.Aliases {
		if err := w.appendRow(AliasesSheet, []string{rec.HGNCID, alias}); err != nil {
			return err
		}
	}
	for _, disease := range rec.FilteredDiseases {
		if err := w.appendRow(DiseasesSheet, []string{rec.HGNCID, disease}); err != nil {
			return err
		}
	}
	return nil
}

// Close serializes the workbook and releases it.
func (w *XLSXWriter) Close() error {
	defer w.f.Close()

	if _, err := w.f.WriteTo(w.dest); err != nil {
		if w.file != nil {
			w.file.Close()
		}
		return fmt.Errorf("write workbook: %w", err)
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *XLSXWriter) appendRow(sheet string, values []string) error {
	row := w.next[sheet]
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	w.next[sheet] = row + 1
	return nil
}
