// Package textextract reads the plain text of PDF documents.
package textextract

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Supported extraction engines.
const (
	EngineNative = "native"
	EngineMuPDF  = "mupdf"
)

// Extractor produces the plain text of a document.
type Extractor interface {
	Extract(path string) (string, error)
}

// New returns the extractor for engine. An empty engine selects
// EngineNative.
func New(engine string, logger *zap.Logger) (Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch engine {
	case "", EngineNative:
		return &Native{logger: logger}, nil
	case EngineMuPDF:
		return &MuPDF{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown pdf engine %q (want %s or %s)", engine, EngineNative, EngineMuPDF)
	}
}

// checkFile returns an error wrapping fs.ErrNotExist when path is missing.
func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("open pdf: %s is a directory", path)
	}
	return nil
}

// pageText accumulates page texts. Failed pages contribute an empty
// string so page boundaries stay in place.
type pageText struct {
	b     strings.Builder
	pages int
}

func (p *pageText) add(s string) {
	if p.pages > 0 {
		p.b.WriteByte('\n')
	}
	p.b.WriteString(s)
	p.pages++
}

func (p *pageText) String() string {
	return p.b.String()
}
