// Package enrich resolves HGNC identifiers into gene records: gene
// metadata, ClinVar diseases, and the diseases mentioned in the source text.
package enrich

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/inodb/hgnc-miner/internal/datasource/mygene"
	"github.com/inodb/hgnc-miner/internal/gene"
	"github.com/inodb/hgnc-miner/internal/hgnc"
)

// MetadataSource looks up gene metadata for an identifier.
type MetadataSource interface {
	Lookup(ctx context.Context, id string) (*gene.Metadata, error)
}

// DiseaseSource returns the condition names associated with a gene symbol.
type DiseaseSource interface {
	Diseases(ctx context.Context, symbol string) (gene.DiseaseSet, error)
}

// Resolver turns identifiers into fully populated gene records.
// Lookups are sequential; a failed identifier is logged and skipped.
type Resolver struct {
	metadata MetadataSource
	diseases DiseaseSource
	filter   *Filter
	logger   *zap.Logger
}

// NewResolver creates a resolver over the given sources. A nil filter
// uses the indel ratio with DefaultThreshold.
func NewResolver(m MetadataSource, d DiseaseSource, f *Filter) *Resolver {
	if f == nil {
		f = NewFilter(IndelRatio{}, DefaultThreshold)
	}
	return &Resolver{
		metadata: m,
		diseases: d,
		filter:   f,
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for the resolver and its filter.
func (r *Resolver) SetLogger(l *zap.Logger) {
	r.logger = l
	r.filter.SetLogger(l)
}

// ResolveAll resolves every identifier in ids against text, in lexical
// order, and returns the records that resolved.
func (r *Resolver) ResolveAll(ctx context.Context, ids hgnc.IDSet, text string) []*gene.Record {
	records := make([]*gene.Record, 0, len(ids))
	for _, id := range ids.Sorted() {
		if rec := r.Resolve(ctx, id, text); rec != nil {
			records = append(records, rec)
		}
	}
	r.logger.Info("resolved identifiers",
		zap.Int("identifiers", len(ids)),
		zap.Int("count", len(records)))
	return records
}

// Resolve looks up id, fetches its diseases and filters them against
// text. It returns nil when id has no hit, the hit has no symbol, or the
// lookup fails.
func (r *Resolver) Resolve(ctx context.Context, id, text string) *gene.Record {
	r.logger.Info("retrieving metadata", zap.String("hgnc_id", id))

	m, err := r.metadata.Lookup(ctx, id)
	switch {
	case errors.Is(err, mygene.ErrNotFound):
		r.logger.Warn("no gene info found", zap.String("hgnc_id", id))
		return nil
	case err != nil:
		r.logger.Error("error retrieving metadata", zap.String("hgnc_id", id), zap.Error(err))
		return nil
	case m == nil:
		r.logger.Warn("no gene info found", zap.String("hgnc_id", id))
		return nil
	case m.Symbol == "":
		r.logger.Error("unable to get symbol for gene", zap.String("hgnc_id", id))
		return nil
	}

	rec := gene.NewRecord(id, m)
	rec.CandidateDiseases = r.LookupDiseases(ctx, rec.Symbol)
	r.filter.Apply(rec, text)

	r.logger.Info("resolved gene",
		zap.String("hgnc_id", id),
		zap.String("symbol", rec.Symbol),
		zap.Int("aliases", len(rec.Aliases)),
		zap.Int("diseases", len(rec.FilteredDiseases)))
	return rec
}

// LookupDiseases returns the diseases for symbol. Failures are logged and
// yield an empty set.
func (r *Resolver) LookupDiseases(ctx context.Context, symbol string) gene.DiseaseSet {
	r.logger.Info("fetching diseases", zap.String("symbol", symbol))

	diseases, err := r.diseases.Diseases(ctx, symbol)
	if err != nil {
		r.logger.Error("error fetching diseases", zap.String("symbol", symbol), zap.Error(err))
		return gene.DiseaseSet{}
	}
	if diseases == nil {
		diseases = gene.DiseaseSet{}
	}

	r.logger.Info("retrieved diseases", zap.String("symbol", symbol), zap.Int("count", len(diseases)))
	return diseases
}
