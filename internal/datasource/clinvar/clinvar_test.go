package clinvar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/hgnc-miner/internal/httputil"
)

const esummaryCOL4A5 = `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE eSummaryResult PUBLIC "-//NLM//DTD esummary clinvar 20131105//EN" "https://eutils.ncbi.nlm.nih.gov/eutils/dtd/20131105/esummary_clinvar.dtd">
<eSummaryResult>
<DocumentSummarySet status="OK">
<DbBuild>Build250101-0000.1</DbBuild>
<DocumentSummary uid="1001">
	<obj_type>single nucleotide variant</obj_type>
	<germline_classification>
		<description>Pathogenic</description>
		<trait_set>
			<trait>
				<trait_xrefs><trait_xref><db_source>MedGen</db_source><db_id>C1567741</db_id></trait_xref></trait_xrefs>
				<trait_name>Alport syndrome</trait_name>
			</trait>
			<trait>
				<trait_name>not provided</trait_name>
			</trait>
		</trait_set>
	</germline_classification>
	<clinical_impact_classification>
		<trait_set>
			<trait><trait_name>Ignored second trait set</trait_name></trait>
		</trait_set>
	</clinical_impact_classification>
</DocumentSummary>
<DocumentSummary uid="1002">
	<germline_classification>
		<trait_set>
			<trait><trait_name>X-linked Alport syndrome</trait_name></trait>
			<trait><trait_name>Alport syndrome</trait_name></trait>
			<trait><trait_name>not specified</trait_name></trait>
			<trait><trait_name>Not Provided</trait_name></trait>
			<trait><trait_name></trait_name></trait>
		</trait_set>
	</germline_classification>
</DocumentSummary>
<DocumentSummary uid="1003">
	<germline_classification><description>Benign</description></germline_classification>
</DocumentSummary>
</DocumentSummarySet>
</eSummaryResult>`

func newServer(t *testing.T, esearch, esummary http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", esearch)
	mux.HandleFunc("/esummary.fcgi", esummary)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return NewClient(httputil.NewClient(httputil.Options{}), Options{
		ESearchURL:  ts.URL + "/esearch.fcgi",
		ESummaryURL: ts.URL + "/esummary.fcgi",
	})
}

func TestDiseases(t *testing.T) {
	c := newServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "clinvar", q.Get("db"))
			assert.Equal(t, "COL4A5[gene]", q.Get("term"))
			assert.Equal(t, "100", q.Get("retmax"))
			assert.Equal(t, "json", q.Get("retmode"))
			w.Write([]byte(`{"header":{"type":"esearch"},"esearchresult":{"count":"3","retmax":"3","idlist":["1001","1002","1003"]}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "1001,1002,1003", q.Get("id"))
			assert.Equal(t, "xml", q.Get("retmode"))
			w.Write([]byte(esummaryCOL4A5))
		},
	)

	got, err := c.Diseases(context.Background(), "COL4A5")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alport syndrome", "Not Provided", "X-linked Alport syndrome"}, got.Sorted())
}

func TestDiseases_NoIDs(t *testing.T) {
	var summaryCalls int32
	c := newServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"esearchresult":{"count":"0","idlist":[]}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&summaryCalls, 1)
		},
	)

	got, err := c.Diseases(context.Background(), "NOPE1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, atomic.LoadInt32(&summaryCalls))
}

func TestDiseases_SearchError(t *testing.T) {
	c := newServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"esearchresult":{"ERROR":"Invalid query"}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {},
	)

	_, err := c.Diseases(context.Background(), "KRAS")
	assert.ErrorContains(t, err, "Invalid query")
}

func TestDiseases_SummaryHTTPError(t *testing.T) {
	c := newServer(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"esearchresult":{"idlist":["1"]}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	)

	_, err := c.Diseases(context.Background(), "KRAS")
	assert.Error(t, err)
}

func TestDiseases_APIKey(t *testing.T) {
	var seen string
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query().Get("api_key")
		w.Write([]byte(`{"esearchresult":{"idlist":[]}}`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c := NewClient(httputil.NewClient(httputil.Options{}), Options{
		ESearchURL:        ts.URL + "/esearch.fcgi",
		APIKey:            "secret",
		RequestsPerSecond: 10,
	})
	_, err := c.Diseases(context.Background(), "TP53")
	require.NoError(t, err)
	assert.Equal(t, "secret", seen)
}

func TestParseTraitNames_Malformed(t *testing.T) {
	_, err := parseTraitNames([]byte("<eSummaryResult><DocumentSummary>"))
	assert.Error(t, err)
}

func TestParseTraitNames_ErrorElement(t *testing.T) {
	_, err := parseTraitNames([]byte("<eSummaryResult><ERROR>Empty id list</ERROR></eSummaryResult>"))
	assert.ErrorContains(t, err, "Empty id list")
}
