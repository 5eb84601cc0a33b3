// Package gene defines the gene records produced by hgnc-miner.
package gene

import "sort"

// NotAvailable is rendered in place of missing coordinate data.
const NotAvailable = "N/A"

// Record holds everything resolved for one HGNC identifier.
type Record struct {
	HGNCID            string     // e.g. "HGNC:618"; unique within a run
	Symbol            string     // canonical gene symbol (e.g. "APOL1")
	Aliases           []string   // alternate symbols, possibly empty
	Build38Locus      string     // "chr22:36253070-36267530" or "N/A"
	Build19Locus      string     // same format, GRCh37 coordinates
	CandidateDiseases DiseaseSet // condition names reported by ClinVar
	FilteredDiseases  []string   // candidates confirmed in the source text, in confirmation order
}

// Metadata is a normalized gene-information hit.
type Metadata struct {
	Symbol  string
	Aliases []string
	Build38 *Locus // nil when the service returned no coordinates
	Build19 *Locus
}

// NewRecord builds a record for id from resolved metadata.
// Disease fields are left empty.
func NewRecord(id string, m *Metadata) *Record {
	aliases := m.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	return &Record{
		HGNCID:            id,
		Symbol:            m.Symbol,
		Aliases:           aliases,
		Build38Locus:      FormatLocus(m.Build38),
		Build19Locus:      FormatLocus(m.Build19),
		CandidateDiseases: DiseaseSet{},
		FilteredDiseases:  []string{},
	}
}

// HasFilteredDisease reports whether name has already been confirmed.
func (r *Record) HasFilteredDisease(name string) bool {
	for _, d := range r.FilteredDiseases {
		if d == name {
			return true
		}
	}
	return false
}

// AddFilteredDisease confirms name once. Names that are not candidates
// are ignored. Returns true if name was appended.
func (r *Record) AddFilteredDisease(name string) bool {
	if !r.CandidateDiseases.Has(name) || r.HasFilteredDisease(name) {
		return false
	}
	r.FilteredDiseases = append(r.FilteredDiseases, name)
	return true
}

// DiseaseSet is an unordered, deduplicated set of condition names.
type DiseaseSet map[string]struct{}

// NewDiseaseSet returns a set containing names.
func NewDiseaseSet(names ...string) DiseaseSet {
	s := make(DiseaseSet, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name into the set.
func (s DiseaseSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s DiseaseSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s DiseaseSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
