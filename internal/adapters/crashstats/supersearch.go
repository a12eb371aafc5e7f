package crashstats

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	perr "topcrash/internal/platform/errors"
	"topcrash/internal/services/topcrash/domain"
)

const (
	superSearchPath = "/api/SuperSearch/"

	// the boolean sub-facet requested on every signature row
	aggStartupCrash = "startup_crash"

	searchDateFormat = "2006-01-02"
)

// SignatureFacet runs a SuperSearch query and returns the signature facet,
// already sorted descending by count by the service. Implements
// domain.SearcherPort
func (c *Client) SignatureFacet(ctx context.Context, p domain.SearchParams) ([]domain.SignatureFacetEntry, error) {
	resp, err := c.do(ctx, superSearchPath+"?"+encodeParams(p).Encode())
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "crashstats decode failed")
	}

	out := make([]domain.SignatureFacetEntry, 0, len(body.Facets.Signature))
	for _, row := range body.Facets.Signature {
		out = append(out, row.entry())
	}
	return out, nil
}

// encodeParams maps domain.SearchParams onto the SuperSearch query string.
// Repeated keys express OR (channels, process types) and the two date
// bounds; signature patterns carry their own operator prefixes
func encodeParams(p domain.SearchParams) url.Values {
	v := url.Values{}
	v.Set("product", p.Product)
	for _, ch := range p.ReleaseChannels {
		v.Add("release_channel", ch)
	}
	for _, pt := range p.ProcessTypes {
		v.Add("process_type", pt)
	}
	if p.Platform != "" {
		v.Add("platform", p.Platform)
	}
	if p.CPUArch != "" {
		v.Add("cpu_arch", p.CPUArch)
	}
	v.Add("date", ">="+p.Date.Start.Format(searchDateFormat))
	v.Add("date", "<"+p.Date.End.Format(searchDateFormat))
	for _, s := range p.SignatureBlock {
		v.Add("signature", s)
	}
	v.Set("_aggs.signature", aggStartupCrash)
	v.Set("_results_number", strconv.Itoa(p.ResultsNumber))
	v.Set("_facets_size", strconv.Itoa(p.FacetSize))
	return v
}

// wire types

type searchResponse struct {
	Facets struct {
		Signature []signatureRow `json:"signature"`
	} `json:"facets"`
}

type signatureRow struct {
	Term   string `json:"term"`
	Count  int    `json:"count"`
	Facets struct {
		StartupCrash []termCount `json:"startup_crash"`
	} `json:"facets"`
}

type termCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// entry folds the boolean sub-facet into startup counters. A missing
// startup_crash facet is benign and yields zero counts
func (r signatureRow) entry() domain.SignatureFacetEntry {
	e := domain.SignatureFacetEntry{Name: r.Term, Count: r.Count}
	for _, tc := range r.Facets.StartupCrash {
		switch tc.Term {
		case "T":
			e.StartupTrue += tc.Count
		case "F":
			e.StartupFalse += tc.Count
		}
	}
	return e
}
