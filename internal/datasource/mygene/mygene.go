// Package mygene queries the MyGene.info service for gene symbols, aliases
// and genomic coordinates.
package mygene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/inodb/hgnc-miner/internal/gene"
	"github.com/inodb/hgnc-miner/internal/httputil"
)

// DefaultURL is the MyGene.info query endpoint.
const DefaultURL = "https://mygene.info/v3/query"

// DefaultSpecies restricts queries to human genes.
const DefaultSpecies = "human"

// queryFields are the hit fields requested from the service.
const queryFields = "symbol,alias,genomic_pos,genomic_pos_hg19"

// ErrNotFound is returned when the service has no hit for a query.
var ErrNotFound = errors.New("no gene information found")

// Client looks up gene metadata by identifier.
type Client struct {
	http    *httputil.Client
	baseURL string
	species string
}

// NewClient creates a MyGene.info client. Empty baseURL and species fall
// back to DefaultURL and DefaultSpecies.
func NewClient(hc *httputil.Client, baseURL, species string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if species == "" {
		species = DefaultSpecies
	}
	return &Client{http: hc, baseURL: baseURL, species: species}
}

// Lookup queries the service for id (e.g. "HGNC:618") and returns the
// first hit, normalized. It returns ErrNotFound when there are no hits.
// A hit without a symbol is returned as-is with an empty Symbol.
func (c *Client) Lookup(ctx context.Context, id string) (*gene.Metadata, error) {
	params := url.Values{
		"q":       {id},
		"species": {c.species},
		"fields":  {queryFields},
	}

	body, err := c.http.Get(ctx, c.baseURL, params)
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode MyGene response for %s: %w", id, err)
	}
	if len(resp.Hits) == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return resp.Hits[0].toMetadata(), nil
}

// queryResponse is the JSON body of a MyGene.info query.
type queryResponse struct {
	Total int      `json:"total"`
	Hits  []rawHit `json:"hits"`
}

type rawHit struct {
	Symbol         string              `json:"symbol"`
	Alias          OneOrMany[string]   `json:"alias"`
	GenomicPos     OneOrMany[rawLocus] `json:"genomic_pos"`
	GenomicPosHg19 OneOrMany[rawLocus] `json:"genomic_pos_hg19"`
}

type rawLocus struct {
	Chr   *scalar `json:"chr"`
	Start *scalar `json:"start"`
	End   *scalar `json:"end"`

	// keys counts every member of the object, coordinate or not.
	keys int
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *rawLocus) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	type plain rawLocus
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = rawLocus(p)
	l.keys = len(members)
	return nil
}

// toMetadata normalizes the mixed-shape fields of a hit: aliases become a
// list (a bare string is a one-element list), and only the first of
// several coordinate mappings is kept.
func (h rawHit) toMetadata() *gene.Metadata {
	aliases := make([]string, 0, len(h.Alias.Items))
	for _, a := range h.Alias.Items {
		if a != "" {
			aliases = append(aliases, a)
		}
	}

	return &gene.Metadata{
		Symbol:  h.Symbol,
		Aliases: aliases,
		Build38: firstLocus(h.GenomicPos),
		Build19: firstLocus(h.GenomicPosHg19),
	}
}

func firstLocus(o OneOrMany[rawLocus]) *gene.Locus {
	rl, ok := o.First()
	if !ok || rl.keys == 0 {
		return nil
	}
	return &gene.Locus{
		Chr:   rl.Chr.text(),
		Start: rl.Start.text(),
		End:   rl.End.text(),
	}
}

func (s *scalar) text() string {
	if s == nil {
		return ""
	}
	return string(*s)
}
