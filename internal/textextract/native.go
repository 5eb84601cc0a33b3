package textextract

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Native extracts text with the pure Go ledongthuc/pdf reader.
type Native struct {
	logger *zap.Logger
}

// NewNative creates a native extractor.
func NewNative() *Native {
	return &Native{logger: zap.NewNop()}
}

// SetLogger sets the logger for page-level warnings.
func (n *Native) SetLogger(l *zap.Logger) {
	n.logger = l
}

// Extract returns the text of every page of the PDF at path, pages joined
// by a newline. A page that fails to decode is logged and contributes no
// text.
func (n *Native) Extract(path string) (string, error) {
	if err := checkFile(path); err != nil {
		return "", err
	}

	n.logger.Info("reading pdf", zap.String("path", path), zap.String("engine", EngineNative))

	f, r, numPages, err := openPDF(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var text pageText
	for i := 1; i <= numPages; i++ {
		s, err := readPage(r, i)
		if err != nil {
			n.logger.Warn("failed to extract page text",
				zap.String("path", path), zap.Int("page", i), zap.Error(err))
			text.add("")
			continue
		}
		text.add(s)
	}

	out := text.String()
	n.logger.Info("read pdf",
		zap.String("path", path),
		zap.Int("pages", numPages),
		zap.Int("chars", len(out)))
	return out, nil
}

// openPDF opens path and counts its pages. The reader panics on malformed
// objects; those panics are returned as errors.
func openPDF(path string) (f *os.File, r *pdf.Reader, numPages int, err error) {
	defer func() {
		if p := recover(); p != nil {
			if f != nil {
				f.Close()
			}
			f, r, numPages, err = nil, nil, 0, fmt.Errorf("%v", p)
		}
	}()

	f, r, err = pdf.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	return f, r, r.NumPage(), nil
}

// readPage returns the plain text of page i. A null page yields no text.
func readPage(r *pdf.Reader, i int) (s string, err error) {
	defer func() {
		if p := recover(); p != nil {
			s, err = "", fmt.Errorf("page %d: %v", i, p)
		}
	}()

	page := r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
