// Package hgnc finds HGNC gene identifiers in free text.
package hgnc

import (
	"regexp"
	"sort"
)

// idPattern matches identifiers such as "HGNC:618".
var idPattern = regexp.MustCompile(`HGNC:\d+`)

// IDSet is a set of HGNC identifiers.
type IDSet map[string]struct{}

// ExtractIDs returns every distinct HGNC identifier in text.
// Text without identifiers yields an empty, non-nil set.
func ExtractIDs(text string) IDSet {
	ids := make(IDSet)
	for _, m := range idPattern.FindAllString(text, -1) {
		ids[m] = struct{}{}
	}
	return ids
}

// IsID reports whether s is exactly one HGNC identifier.
func IsID(s string) bool {
	loc := idPattern.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// Sorted returns the identifiers in lexical order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
