// Package http provides http transport for topcrash
package http

import (
	stdhttp "net/http"
	"time"

	perr "topcrash/internal/platform/errors"
	phttp "topcrash/internal/platform/net/http"
	"topcrash/internal/services/topcrash/domain"
)

// SignaturesInput is the request body for an identification run; every field
// is optional and falls back to the service defaults
type SignaturesInput struct {
	// Date is the end of the crash-date window
	Date string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// DurationDays is the lookback window size
	DurationDays int `json:"duration_days,omitempty" validate:"omitempty,min=1,max=60"`

	// MinCrashes is the primary-pass volume threshold
	MinCrashes int `json:"min_crashes,omitempty" validate:"omitempty,min=1"`
}

// Mount mounts the topcrash routes under /topcrash
func Mount(r phttp.Router, svc domain.RunnerPort, cat domain.Catalog) {
	r.Route("/topcrash", func(sr phttp.Router) {
		Register(sr, svc, cat)
	})
}

// Register mounts topcrash endpoints on the given router
func Register(r phttp.Router, svc domain.RunnerPort, cat domain.Catalog) {
	h := &handlers{svc: svc, cat: cat}

	// run identification across the catalog and return the merged map
	phttp.PostJSON[SignaturesInput](r, "/signatures", h.signatures)

	// expose the criteria the runs are driven by
	phttp.GetJSON(r, "/criteria", h.criteria)
}

type handlers struct {
	svc domain.RunnerPort
	cat domain.Catalog
}

func (h *handlers) criteria(_ *stdhttp.Request) (any, error) {
	return h.cat.Criteria(), nil
}

func (h *handlers) signatures(r *stdhttp.Request, in SignaturesInput) (any, error) {
	var date time.Time
	if in.Date != "" {
		t, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return nil, perr.InvalidArgf("bad date %q", in.Date)
		}
		date = t
	}
	return h.svc.Signatures(r.Context(), domain.RunInput{
		Date:           date,
		LookbackDays:   in.DurationDays,
		MinimumCrashes: in.MinCrashes,
	})
}
