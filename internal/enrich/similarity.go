package enrich

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity metric names accepted by NewScorer.
const (
	MetricIndel       = "indel"
	MetricLevenshtein = "levenshtein"
)

// Scorer rates how alike two strings are on a 0-100 scale.
type Scorer interface {
	Ratio(a, b string) int
}

// NewScorer returns the scorer for metric.
func NewScorer(metric string) (Scorer, error) {
	switch metric {
	case "", MetricIndel:
		return IndelRatio{}, nil
	case MetricLevenshtein:
		return LevenshteinRatio{}, nil
	default:
		return nil, fmt.Errorf("unknown similarity metric %q (want %s or %s)", metric, MetricIndel, MetricLevenshtein)
	}
}

// IndelRatio scores 100 * (len(a)+len(b)-d) / (len(a)+len(b)), where d is
// the insert/delete-only edit distance. This is the ratio used by the
// fuzzywuzzy family of matchers, which the default threshold of 60 is
// calibrated against. Lengths are counted in runes.
type IndelRatio struct{}

// Ratio implements Scorer.
func (IndelRatio) Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	// With insertions and deletions only, d = total - 2*LCS.
	return roundRatio(2*lcsLength(ra, rb), total)
}

// LevenshteinRatio scores 100 * (len(a)+len(b)-d) / (len(a)+len(b)), where
// d is the unit-cost Levenshtein distance. It is more lenient than
// IndelRatio for substitutions.
type LevenshteinRatio struct{}

// Ratio implements Scorer.
func (LevenshteinRatio) Ratio(a, b string) int {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	total := la + lb
	return roundRatio(total-levenshtein.ComputeDistance(a, b), total)
}

// roundRatio returns 100*num/den rounded half to even.
func roundRatio(num, den int) int {
	return int(math.RoundToEven(100 * float64(num) / float64(den)))
}

// lcsLength returns the length of the longest common subsequence.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
