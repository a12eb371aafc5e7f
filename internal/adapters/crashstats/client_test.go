package crashstats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	perr "topcrash/internal/platform/errors"
	"topcrash/internal/services/topcrash/domain"
)

func testParams() domain.SearchParams {
	return domain.SearchParams{
		Product:         "Firefox",
		ReleaseChannels: []string{"beta", "release"},
		ProcessTypes:    []string{"gpu"},
		Platform:        "Linux",
		Date: domain.DateRange{
			Start: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		},
		SignatureBlock: []string{"!^EMPTY: ", "!=OOM | small"},
		ResultsNumber:  0,
		FacetSize:      30,
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewClient(Options{BaseURL: srv.URL, Token: "sekrit", MaxRetries: 2, RetryBase: time.Millisecond})
	c.sleep = func(time.Duration) {} // no real backoff in tests
	return c
}

const facetBody = `{
	"facets": {
		"signature": [
			{"term": "S1", "count": 10, "facets": {"startup_crash": [{"term": "T", "count": 3}, {"term": "F", "count": 7}]}},
			{"term": "S2", "count": 4, "facets": {"startup_crash": [{"term": "F", "count": 4}]}},
			{"term": "S3", "count": 2, "facets": {}}
		]
	}
}`

func TestSignatureFacet_DecodesRows(t *testing.T) {
	var gotQuery url.Values
	var gotToken string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotToken = r.Header.Get("Auth-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(facetBody))
	})

	entries, err := client.SignatureFacet(context.Background(), testParams())
	if err != nil {
		t.Fatalf("SignatureFacet: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []domain.SignatureFacetEntry{
		{Name: "S1", Count: 10, StartupTrue: 3, StartupFalse: 7},
		{Name: "S2", Count: 4, StartupTrue: 0, StartupFalse: 4},
		{Name: "S3", Count: 2}, // missing startup facet is benign
	}
	for i, w := range want {
		if entries[i] != w {
			t.Fatalf("entry %d: got %+v want %+v", i, entries[i], w)
		}
	}
	if entries[2].IsStartup() {
		t.Fatal("missing startup facet must classify as not-startup")
	}

	if gotToken != "sekrit" {
		t.Fatalf("auth token not sent, got %q", gotToken)
	}
	if gotQuery.Get("_facets_size") != "30" {
		t.Fatalf("_facets_size = %q", gotQuery.Get("_facets_size"))
	}
}

func TestSignatureFacet_QueryEncoding(t *testing.T) {
	var got url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"facets": {"signature": []}}`))
	})

	if _, err := client.SignatureFacet(context.Background(), testParams()); err != nil {
		t.Fatalf("SignatureFacet: %v", err)
	}

	if got.Get("product") != "Firefox" {
		t.Fatalf("product = %q", got.Get("product"))
	}
	if chans := got["release_channel"]; len(chans) != 2 || chans[0] != "beta" || chans[1] != "release" {
		t.Fatalf("release_channel = %v", chans)
	}
	if pts := got["process_type"]; len(pts) != 1 || pts[0] != "gpu" {
		t.Fatalf("process_type = %v", pts)
	}
	if got.Get("platform") != "Linux" {
		t.Fatalf("platform = %q", got.Get("platform"))
	}
	if dates := got["date"]; len(dates) != 2 || dates[0] != ">=2026-08-24" || dates[1] != "<2026-08-31" {
		t.Fatalf("date = %v", dates)
	}
	if sigs := got["signature"]; len(sigs) != 2 || sigs[0] != "!^EMPTY: " {
		t.Fatalf("signature = %v", sigs)
	}
	if got.Get("_aggs.signature") != "startup_crash" {
		t.Fatalf("_aggs.signature = %q", got.Get("_aggs.signature"))
	}
	if got.Get("_results_number") != "0" || got.Get("_facets_size") != "30" {
		t.Fatalf("sizes = %q / %q", got.Get("_results_number"), got.Get("_facets_size"))
	}
	if got.Get("cpu_arch") != "" {
		t.Fatalf("empty cpu_arch must be omitted, got %q", got.Get("cpu_arch"))
	}
}

func TestSignatureFacet_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"facets": {"signature": []}}`))
	})

	entries, err := client.SignatureFacet(context.Background(), testParams())
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty facet, got %v", entries)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestSignatureFacet_RateLimitedExhaustsRetries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.SignatureFacet(context.Background(), testParams())
	if err == nil {
		t.Fatal("expected rate limit failure")
	}
	if !perr.IsCode(err, perr.ErrorCodeTooManyRequests) {
		t.Fatalf("expected too-many-requests code, got %v", err)
	}
	if !perr.Retryable(err) {
		t.Fatal("rate limit errors should classify as retryable")
	}
}

func TestSignatureFacet_UnexpectedStatusFailsFast(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "bad query"}`))
	})

	_, err := client.SignatureFacet(context.Background(), testParams())
	if err == nil {
		t.Fatal("expected failure")
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors must not be retried, got %d attempts", calls.Load())
	}
	if perr.Retryable(err) {
		t.Fatalf("unexpected status should not be retryable: %v", err)
	}
}

func TestSignatureFacet_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"facets": {"signature": []}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.SignatureFacet(ctx, testParams()); err == nil {
		t.Fatal("expected context error")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Options{})
	if c.opts.BaseURL != baseURLDefault {
		t.Fatalf("base url = %q", c.opts.BaseURL)
	}
	if c.opts.MaxRetries != defaultMaxRetry || c.opts.RetryBase != defaultRetryBase {
		t.Fatalf("retry defaults not applied: %+v", c.opts)
	}
	if c.opts.Timeout != defaultTimeout {
		t.Fatalf("timeout default not applied: %v", c.opts.Timeout)
	}
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	if retryAfter(h) != 0 {
		t.Fatal("absent header should be 0")
	}
	h.Set("Retry-After", "3")
	if retryAfter(h) != 3*time.Second {
		t.Fatalf("retryAfter = %v", retryAfter(h))
	}
	h.Set("Retry-After", "soon")
	if retryAfter(h) != 0 {
		t.Fatal("non-numeric header should be 0")
	}
}
