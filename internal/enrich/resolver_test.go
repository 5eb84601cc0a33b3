package enrich

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/hgnc-miner/internal/datasource/mygene"
	"github.com/inodb/hgnc-miner/internal/gene"
	"github.com/inodb/hgnc-miner/internal/hgnc"
)

type fakeMetadata struct {
	hits  map[string]*gene.Metadata
	errs  map[string]error
	calls []string
}

func (f *fakeMetadata) Lookup(_ context.Context, id string) (*gene.Metadata, error) {
	f.calls = append(f.calls, id)
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	m, ok := f.hits[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, mygene.ErrNotFound)
	}
	return m, nil
}

type fakeDiseases struct {
	bySymbol map[string]gene.DiseaseSet
	err      error
	calls    []string
}

func (f *fakeDiseases) Diseases(_ context.Context, symbol string) (gene.DiseaseSet, error) {
	f.calls = append(f.calls, symbol)
	if f.err != nil {
		return nil, f.err
	}
	return f.bySymbol[symbol], nil
}

func apol1() *gene.Metadata {
	return &gene.Metadata{
		Symbol:  "APOL1",
		Aliases: []string{"APOL2", "APOL3"},
		Build38: &gene.Locus{Chr: "22", Start: "36661906", End: "36676353"},
		Build19: &gene.Locus{Chr: "22", Start: "36649329", End: "36663776"},
	}
}

func TestResolve_APOL1(t *testing.T) {
	meta := &fakeMetadata{hits: map[string]*gene.Metadata{"HGNC:618": apol1()}}
	dis := &fakeDiseases{bySymbol: map[string]gene.DiseaseSet{
		"APOL1": gene.NewDiseaseSet("Alport syndrome", "Nephrotic syndrome"),
	}}
	r := NewResolver(meta, dis, nil)

	rec := r.Resolve(context.Background(), "HGNC:618", "Alport syndrome is mentioned here.")
	require.NotNil(t, rec)

	assert.Equal(t, "APOL1", rec.Symbol)
	assert.Equal(t, "HGNC:618", rec.HGNCID)
	assert.Equal(t, []string{"APOL2", "APOL3"}, rec.Aliases)
	assert.Equal(t, "chr22:36661906-36676353", rec.Build38Locus)
	assert.Equal(t, "chr22:36649329-36663776", rec.Build19Locus)
	assert.Equal(t, []string{"Alport syndrome", "Nephrotic syndrome"}, rec.CandidateDiseases.Sorted())
	assert.Equal(t, []string{"Alport syndrome"}, rec.FilteredDiseases)
	assert.Equal(t, []string{"APOL1"}, dis.calls)
}

func TestResolve_NoHit(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	meta := &fakeMetadata{}
	dis := &fakeDiseases{}
	r := NewResolver(meta, dis, nil)
	r.SetLogger(zap.New(core))

	assert.Nil(t, r.Resolve(context.Background(), "HGNC:999999", "text"))
	assert.Empty(t, dis.calls, "disease lookup must not run")
	assert.Equal(t, 1, logs.FilterMessage("no gene info found").Len())
}

func TestResolve_MissingSymbol(t *testing.T) {
	meta := &fakeMetadata{hits: map[string]*gene.Metadata{"HGNC:1": {Aliases: []string{"X"}}}}
	dis := &fakeDiseases{}
	r := NewResolver(meta, dis, nil)

	assert.Nil(t, r.Resolve(context.Background(), "HGNC:1", "text"))
	assert.Empty(t, dis.calls)
}

func TestResolve_LookupError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	meta := &fakeMetadata{errs: map[string]error{"HGNC:1": errors.New("connection reset")}}
	r := NewResolver(meta, &fakeDiseases{}, nil)
	r.SetLogger(zap.New(core))

	assert.Nil(t, r.Resolve(context.Background(), "HGNC:1", "text"))

	entries := logs.FilterMessage("error retrieving metadata").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "HGNC:1", entries[0].ContextMap()["hgnc_id"])
}

func TestResolve_DiseaseLookupFailureKeepsRecord(t *testing.T) {
	meta := &fakeMetadata{hits: map[string]*gene.Metadata{"HGNC:618": apol1()}}
	dis := &fakeDiseases{err: errors.New("esearch: HTTP 500")}
	r := NewResolver(meta, dis, nil)

	rec := r.Resolve(context.Background(), "HGNC:618", "Alport syndrome is mentioned here.")
	require.NotNil(t, rec)
	assert.NotNil(t, rec.CandidateDiseases)
	assert.Empty(t, rec.CandidateDiseases)
	assert.Equal(t, []string{}, rec.FilteredDiseases)
}

func TestResolve_NoClinVarRecords(t *testing.T) {
	meta := &fakeMetadata{hits: map[string]*gene.Metadata{"HGNC:618": apol1()}}
	dis := &fakeDiseases{bySymbol: map[string]gene.DiseaseSet{"APOL1": {}}}
	r := NewResolver(meta, dis, nil)

	rec := r.Resolve(context.Background(), "HGNC:618", "Alport syndrome")
	require.NotNil(t, rec)
	assert.Empty(t, rec.CandidateDiseases)
	assert.Equal(t, []string{}, rec.FilteredDiseases)
}

func TestResolveAll(t *testing.T) {
	meta := &fakeMetadata{
		hits: map[string]*gene.Metadata{
			"HGNC:618":  apol1(),
			"HGNC:2204": {Symbol: "COL4A5", Aliases: []string{"ASLN"}},
			"HGNC:7":    {Aliases: []string{"no symbol"}},
		},
		errs: map[string]error{"HGNC:8": errors.New("timeout")},
	}
	dis := &fakeDiseases{bySymbol: map[string]gene.DiseaseSet{
		"APOL1":  gene.NewDiseaseSet("Alport syndrome"),
		"COL4A5": gene.NewDiseaseSet("X-linked Alport syndrome", "Hematuria"),
	}}
	r := NewResolver(meta, dis, NewFilter(IndelRatio{}, DefaultThreshold))

	text := "Study of HGNC:618 and HGNC:2204.\nAlport syndrome is mentioned here.\nX-linked Alport syndrome"
	ids := hgnc.ExtractIDs(text)
	ids["HGNC:7"] = struct{}{}
	ids["HGNC:8"] = struct{}{}
	ids["HGNC:9"] = struct{}{}

	records := r.ResolveAll(context.Background(), ids, text)
	require.Len(t, records, 2)

	assert.Equal(t, "HGNC:2204", records[0].HGNCID)
	assert.Equal(t, []string{"X-linked Alport syndrome"}, records[0].FilteredDiseases)
	assert.Equal(t, "HGNC:618", records[1].HGNCID)
	assert.Equal(t, []string{"Alport syndrome"}, records[1].FilteredDiseases)

	assert.Equal(t, []string{"HGNC:2204", "HGNC:618", "HGNC:7", "HGNC:8", "HGNC:9"}, meta.calls)
	for _, rec := range records {
		for _, d := range rec.FilteredDiseases {
			assert.True(t, rec.CandidateDiseases.Has(d))
		}
	}
}

func TestResolveAll_Empty(t *testing.T) {
	r := NewResolver(&fakeMetadata{}, &fakeDiseases{}, nil)
	records := r.ResolveAll(context.Background(), hgnc.IDSet{}, "")
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
