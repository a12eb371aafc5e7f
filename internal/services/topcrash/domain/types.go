// Package domain defines the core types and contracts for top-crash identification
package domain

import "time"

// Criterion is one top-crash policy slice: a product and its release
// channels, optionally narrowed by process type, platform, or cpu arch,
// with the result limits that decide what counts as "top"
type Criterion struct {
	Product  string   `json:"product" validate:"required"`
	Channels []string `json:"channels" validate:"required,min=1,dive,required"`

	// optional filters
	ProcessTypes []string `json:"process_types,omitempty" validate:"omitempty,dive,required"`
	Platform     string   `json:"platform,omitempty"`
	CPUArch      string   `json:"cpu_arch,omitempty"`

	// TCLimit caps the primary pass
	TCLimit int `json:"tc_limit" validate:"required,gt=0"`

	// TCStartupLimit, when non-zero, extends the scan so additional startup
	// crashes can be rescued; must be strictly greater than TCLimit
	TCStartupLimit int `json:"tc_startup_limit,omitempty" validate:"omitempty,gt=0,gtfield=TCLimit"`
}

// FacetSize returns how many facet rows a single query must request so it
// can serve both the primary and the rescue pass
func (c Criterion) FacetSize() int {
	if c.TCStartupLimit > c.TCLimit {
		return c.TCStartupLimit
	}
	return c.TCLimit
}

// DateRange is a half-open crash-report date window [Start, End)
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange derives the window from a reference date and a lookback in days
func NewDateRange(end time.Time, lookbackDays int) DateRange {
	return DateRange{Start: end.AddDate(0, 0, -lookbackDays), End: end}
}

// SearchParams is the transport-agnostic query one criterion turns into
type SearchParams struct {
	Product         string
	ReleaseChannels []string
	ProcessTypes    []string
	Platform        string
	CPUArch         string
	Date            DateRange

	// SignatureBlock holds exclusion patterns for known noise signatures
	SignatureBlock []string

	// ResultsNumber is the number of raw crash rows requested; always 0 here
	// since only the signature facet matters
	ResultsNumber int

	// FacetSize is the requested size of the signature facet
	FacetSize int
}

// SignatureFacetEntry is one row of a search result's signature facet,
// sorted descending by Count by the search service
type SignatureFacetEntry struct {
	Name         string
	Count        int
	StartupTrue  int
	StartupFalse int
}

// IsStartup reports whether any crash in the row started during startup
func (e SignatureFacetEntry) IsStartup() bool { return e.StartupTrue > 0 }

// SignatureRecord is the aggregation output unit for one signature
type SignatureRecord struct {
	IsStartup bool `json:"is_startup"`
}

// ResultMap maps signature name to its merged record; key order is meaningless
type ResultMap map[string]SignatureRecord

// RunInput controls one identification run; zero values fall back to the
// service configuration defaults
type RunInput struct {
	// Date is the end of the window; zero means "now"
	Date time.Time

	// LookbackDays is the window size in days
	LookbackDays int

	// MinimumCrashes is the primary-pass volume threshold
	MinimumCrashes int
}
