package service

import (
	"testing"

	"topcrash/internal/services/topcrash/domain"
)

func entry(name string, count, startupTrue int) domain.SignatureFacetEntry {
	return domain.SignatureFacetEntry{Name: name, Count: count, StartupTrue: startupTrue}
}

func TestMergeCriterion_PrimaryEarlyExit(t *testing.T) {
	// scenario A: tc_limit=2, min=5, second row under threshold
	c := domain.Criterion{Product: "Firefox", Channels: []string{"release"}, TCLimit: 2}
	out := domain.ResultMap{}

	mergeCriterion(out, c, []domain.SignatureFacetEntry{
		entry("S1", 10, 3),
		entry("S2", 4, 0),
	}, 5)

	if len(out) != 1 {
		t.Fatalf("expected 1 signature, got %d: %v", len(out), out)
	}
	if rec, ok := out["S1"]; !ok || !rec.IsStartup {
		t.Fatalf("expected S1 startup=true, got %v", out)
	}
}

func TestMergeCriterion_EarlyExitIsMonotonic(t *testing.T) {
	// a later row above threshold must NOT resurrect the primary pass
	c := domain.Criterion{Product: "Firefox", Channels: []string{"release"}, TCLimit: 3}
	out := domain.ResultMap{}

	mergeCriterion(out, c, []domain.SignatureFacetEntry{
		entry("S1", 10, 0),
		entry("S2", 4, 0),
		entry("S3", 9, 0), // unsorted input; the pass already ended at S2
	}, 5)

	if _, ok := out["S3"]; ok {
		t.Fatalf("S3 included after early exit: %v", out)
	}
	if len(out) != 1 {
		t.Fatalf("expected only S1, got %v", out)
	}
}

func TestMergeCriterion_RescuePass(t *testing.T) {
	// scenario B: rescue slice keeps startup rows regardless of count
	c := domain.Criterion{Product: "Firefox", Channels: []string{"release"}, TCLimit: 2, TCStartupLimit: 4}
	out := domain.ResultMap{}

	mergeCriterion(out, c, []domain.SignatureFacetEntry{
		entry("S1", 10, 3),
		entry("S2", 4, 0),
		entry("S3", 2, 1),
		entry("S4", 1, 0),
	}, 5)

	if len(out) != 2 {
		t.Fatalf("expected S1 and S3, got %v", out)
	}
	if !out["S1"].IsStartup {
		t.Fatalf("S1 should be startup: %v", out)
	}
	if rec, ok := out["S3"]; !ok || !rec.IsStartup {
		t.Fatalf("S3 should be rescued as startup: %v", out)
	}
	if _, ok := out["S4"]; ok {
		t.Fatalf("S4 is not a startup crash and must not be rescued: %v", out)
	}
}

func TestMergeCriterion_RescueRunsAfterPrimaryEarlyExit(t *testing.T) {
	// the primary pass stopping at row 0 must not skip the rescue slice
	c := domain.Criterion{Product: "Firefox", Channels: []string{"release"}, TCLimit: 2, TCStartupLimit: 4}
	out := domain.ResultMap{}

	mergeCriterion(out, c, []domain.SignatureFacetEntry{
		entry("S1", 3, 1),
		entry("S2", 2, 0),
		entry("S3", 1, 1),
	}, 5)

	if rec, ok := out["S3"]; !ok || !rec.IsStartup {
		t.Fatalf("rescue pass should still run after primary early exit: %v", out)
	}
	if _, ok := out["S1"]; ok {
		t.Fatalf("S1 is under threshold and inside the primary slice: %v", out)
	}
}

func TestMergeCriterion_RescueBypassesMinimumCrashes(t *testing.T) {
	// a single-occurrence startup crash in the rescue slice still lands
	c := domain.Criterion{Product: "Firefox", Channels: []string{"release"}, TCLimit: 1, TCStartupLimit: 3}
	out := domain.ResultMap{}

	mergeCriterion(out, c, []domain.SignatureFacetEntry{
		entry("S1", 100, 0),
		entry("S2", 1, 1),
	}, 5)

	if rec, ok := out["S2"]; !ok || !rec.IsStartup {
		t.Fatalf("expected rescue of S2 with is_startup=true, got %v", out)
	}
}

func TestMergeCriterion_OrMergeAcrossCriteria(t *testing.T) {
	// scenario C: one criterion says not-startup, another says startup
	a := domain.Criterion{Product: "Firefox", Channels: []string{"release"}, TCLimit: 5}
	b := domain.Criterion{Product: "Firefox", Channels: []string{"beta"}, TCLimit: 5}
	out := domain.ResultMap{}

	mergeCriterion(out, a, []domain.SignatureFacetEntry{entry("S1", 10, 0)}, 5)
	mergeCriterion(out, b, []domain.SignatureFacetEntry{entry("S1", 8, 2)}, 5)

	if !out["S1"].IsStartup {
		t.Fatalf("OR-merge should be sticky true: %v", out)
	}

	// and the flag never demotes afterwards
	mergeCriterion(out, a, []domain.SignatureFacetEntry{entry("S1", 10, 0)}, 5)
	if !out["S1"].IsStartup {
		t.Fatalf("startup flag was demoted: %v", out)
	}
}

func TestMergeCriterion_Idempotent(t *testing.T) {
	c := domain.Criterion{Product: "Firefox", Channels: []string{"release"}, TCLimit: 2, TCStartupLimit: 3}
	entries := []domain.SignatureFacetEntry{
		entry("S1", 10, 1),
		entry("S2", 7, 0),
		entry("S3", 1, 1),
	}

	once := domain.ResultMap{}
	mergeCriterion(once, c, entries, 5)

	twice := domain.ResultMap{}
	mergeCriterion(twice, c, entries, 5)
	mergeCriterion(twice, c, entries, 5)

	if len(once) != len(twice) {
		t.Fatalf("idempotence broken: %v vs %v", once, twice)
	}
	for name, rec := range once {
		if twice[name] != rec {
			t.Fatalf("idempotence broken for %s: %v vs %v", name, rec, twice[name])
		}
	}
}

func TestMergeCriterion_CommutativeAcrossCriteria(t *testing.T) {
	a := domain.Criterion{Product: "Firefox", Channels: []string{"release"}, TCLimit: 3}
	b := domain.Criterion{Product: "Firefox", Channels: []string{"beta"}, TCLimit: 3}
	ea := []domain.SignatureFacetEntry{entry("S1", 10, 0), entry("S2", 9, 1)}
	eb := []domain.SignatureFacetEntry{entry("S1", 8, 3), entry("S3", 7, 0)}

	ab := domain.ResultMap{}
	mergeCriterion(ab, a, ea, 5)
	mergeCriterion(ab, b, eb, 5)

	ba := domain.ResultMap{}
	mergeCriterion(ba, b, eb, 5)
	mergeCriterion(ba, a, ea, 5)

	if len(ab) != len(ba) {
		t.Fatalf("merge not commutative: %v vs %v", ab, ba)
	}
	for name, rec := range ab {
		if ba[name] != rec {
			t.Fatalf("merge not commutative for %s: %v vs %v", name, rec, ba[name])
		}
	}
}

func TestMergeCriterion_EmptyFacet(t *testing.T) {
	// scenario D: a criterion with no matching data is a no-op
	c := domain.Criterion{Product: "Firefox", Channels: []string{"release"}, TCLimit: 5, TCStartupLimit: 10}
	out := domain.ResultMap{"S0": {IsStartup: true}}

	mergeCriterion(out, c, nil, 5)

	if len(out) != 1 || !out["S0"].IsStartup {
		t.Fatalf("empty facet must leave the map untouched: %v", out)
	}
}

func TestMergeCriterion_FewerRowsThanLimits(t *testing.T) {
	c := domain.Criterion{Product: "Firefox", Channels: []string{"release"}, TCLimit: 10, TCStartupLimit: 20}
	out := domain.ResultMap{}

	mergeCriterion(out, c, []domain.SignatureFacetEntry{entry("S1", 6, 0)}, 5)

	if len(out) != 1 {
		t.Fatalf("short facet should merge what it has: %v", out)
	}
}
