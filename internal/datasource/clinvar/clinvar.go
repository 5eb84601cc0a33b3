// Package clinvar looks up the conditions associated with a gene in ClinVar
// through the NCBI E-utilities esearch and esummary services.
package clinvar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/inodb/hgnc-miner/internal/gene"
	"github.com/inodb/hgnc-miner/internal/httputil"
)

// E-utilities endpoints.
const (
	DefaultESearchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	DefaultESummaryURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

// DefaultRetMax caps the number of ClinVar records fetched per gene.
const DefaultRetMax = 100

// DefaultRequestsPerSecond is NCBI's limit for clients without an API key.
const DefaultRequestsPerSecond = 3

// Options configures a Client.
type Options struct {
	ESearchURL        string
	ESummaryURL       string
	RetMax            int
	APIKey            string  // optional NCBI API key
	RequestsPerSecond float64 // zero or negative disables pacing
}

// Client queries ClinVar for gene-associated traits.
type Client struct {
	http    *httputil.Client
	opts    Options
	limiter *rate.Limiter
}

// NewClient creates a ClinVar client. Empty URLs and a zero RetMax fall
// back to the package defaults.
func NewClient(hc *httputil.Client, opts Options) *Client {
	if opts.ESearchURL == "" {
		opts.ESearchURL = DefaultESearchURL
	}
	if opts.ESummaryURL == "" {
		opts.ESummaryURL = DefaultESummaryURL
	}
	if opts.RetMax <= 0 {
		opts.RetMax = DefaultRetMax
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		http:    hc,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Diseases returns the trait names of all ClinVar records for symbol.
// A symbol without records yields an empty set and no error.
func (c *Client) Diseases(ctx context.Context, symbol string) (gene.DiseaseSet, error) {
	ids, err := c.SearchIDs(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return gene.DiseaseSet{}, nil
	}
	return c.TraitNames(ctx, ids)
}

// SearchIDs returns the ClinVar record IDs for symbol.
func (c *Client) SearchIDs(ctx context.Context, symbol string) ([]string, error) {
	params := url.Values{
		"db":      {"clinvar"},
		"term":    {symbol + "[gene]"},
		"retmax":  {strconv.Itoa(c.opts.RetMax)},
		"retmode": {"json"},
	}
	body, err := c.get(ctx, c.opts.ESearchURL, params)
	if err != nil {
		return nil, err
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode esearch response for %s: %w", symbol, err)
	}
	if resp.Result.Error != "" {
		return nil, fmt.Errorf("esearch %s: %s", symbol, resp.Result.Error)
	}
	return resp.Result.IDList, nil
}

// TraitNames fetches the summaries of ids and collects their trait names.
func (c *Client) TraitNames(ctx context.Context, ids []string) (gene.DiseaseSet, error) {
	params := url.Values{
		"db":      {"clinvar"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	body, err := c.get(ctx, c.opts.ESummaryURL, params)
	if err != nil {
		return nil, err
	}

	names, err := parseTraitNames(body)
	if err != nil {
		return nil, fmt.Errorf("parse esummary response: %w", err)
	}
	return names, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.opts.APIKey != "" {
		params.Set("api_key", c.opts.APIKey)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.http.Get(ctx, endpoint, params)
}

type esearchResponse struct {
	Result struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
		Error  string   `json:"ERROR"`
	} `json:"esearchresult"`
}
