package textextract

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// MuPDF extracts text through MuPDF. It copes with more fonts and
// encodings than Native.
type MuPDF struct {
	logger *zap.Logger
}

// NewMuPDF creates a MuPDF extractor.
func NewMuPDF() *MuPDF {
	return &MuPDF{logger: zap.NewNop()}
}

// SetLogger sets the logger for page-level warnings.
func (m *MuPDF) SetLogger(l *zap.Logger) {
	m.logger = l
}

// Extract returns the text of every page of the PDF at path, pages joined
// by a newline.
func (m *MuPDF) Extract(path string) (string, error) {
	if err := checkFile(path); err != nil {
		return "", err
	}

	m.logger.Info("reading pdf", zap.String("path", path), zap.String("engine", EngineMuPDF))

	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer doc.Close()

	var text pageText
	numPages := doc.NumPage()
	for i := 0; i < numPages; i++ {
		s, err := doc.Text(i)
		if err != nil {
			m.logger.Warn("failed to extract page text",
				zap.String("path", path), zap.Int("page", i+1), zap.Error(err))
			text.add("")
			continue
		}
		text.add(s)
	}

	out := text.String()
	m.logger.Info("read pdf",
		zap.String("path", path),
		zap.Int("pages", numPages),
		zap.Int("chars", len(out)))
	return out, nil
}
