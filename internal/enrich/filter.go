package enrich

import (
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/hgnc-miner/internal/gene"
)

// DefaultThreshold is the similarity a line must exceed to confirm a disease.
const DefaultThreshold = 60

// Filter keeps the candidate diseases that are mentioned in the source text.
type Filter struct {
	scorer    Scorer
	threshold int
	logger    *zap.Logger
}

// NewFilter creates a filter confirming diseases whose best line
// similarity under s is strictly greater than threshold.
func NewFilter(s Scorer, threshold int) *Filter {
	if s == nil {
		s = IndelRatio{}
	}
	return &Filter{scorer: s, threshold: threshold, logger: zap.NewNop()}
}

// SetLogger sets the logger for filter progress messages.
func (f *Filter) SetLogger(l *zap.Logger) {
	f.logger = l
}

// Apply appends to rec.FilteredDiseases every candidate disease that
// scores above the threshold against some line of text, compared
// case-insensitively. Candidates are scanned in lexical order, and
// diseases already confirmed are not appended again, so Apply is
// idempotent.
func (f *Filter) Apply(rec *gene.Record, text string) {
	if len(rec.CandidateDiseases) == 0 {
		f.logger.Info("no diseases to filter", zap.String("symbol", rec.Symbol))
		return
	}

	lines := splitLines(strings.ToLower(text))
	for _, d := range rec.CandidateDiseases.Sorted() {
		if rec.HasFilteredDisease(d) {
			continue
		}
		if f.mentioned(strings.ToLower(d), lines) {
			rec.AddFilteredDisease(d)
		}
	}

	f.logger.Info("filtered diseases",
		zap.String("symbol", rec.Symbol),
		zap.Int("candidates", len(rec.CandidateDiseases)),
		zap.Int("count", len(rec.FilteredDiseases)))
}

// mentioned reports whether any line is similar enough to disease.
func (f *Filter) mentioned(disease string, lines []string) bool {
	for _, line := range lines {
		if f.scorer.Ratio(line, disease) > f.threshold {
			return true
		}
	}
	return false
}

// splitLines splits text on the line boundaries recognised by Unicode
// line-oriented tools (\n, \r, \r\n, \v, \f, file/group/record
// separators, NEL, LS, PS). Empty lines are dropped.
func splitLines(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			return true
		}
		return false
	})
}
