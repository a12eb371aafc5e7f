// Package service provides the top-crash identification run
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	perr "topcrash/internal/platform/errors"
	"topcrash/internal/platform/logger"
	"topcrash/internal/services/topcrash/domain"
)

const (
	defaultMinimumCrashes = 5
	defaultLookbackDays   = 7
)

// Config holds configuration options for the topcrash service
type Config struct {
	// MinimumCrashes is the default primary-pass volume threshold; <=0 -> 5
	MinimumCrashes int

	// LookbackDays is the default crash-date window in days; <=0 -> 7
	LookbackDays int

	// BlockPatterns replaces the default noise exclusions when non-empty
	BlockPatterns []string
}

// Service implements the identification run over a fixed criteria catalog
type Service struct {
	Searcher domain.SearcherPort
	Catalog  domain.Catalog
	Cfg      Config
}

// New constructs the topcrash service
func New(searcher domain.SearcherPort, catalog domain.Catalog, cfg Config) *Service {
	if searcher == nil {
		panic("topcrash.Service requires a non nil Searcher")
	}
	if catalog.Len() == 0 {
		panic("topcrash.Service requires a non empty Catalog")
	}
	if cfg.MinimumCrashes <= 0 {
		cfg.MinimumCrashes = defaultMinimumCrashes
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaultLookbackDays
	}
	if len(cfg.BlockPatterns) == 0 {
		cfg.BlockPatterns = domain.DefaultBlockPatterns()
	}
	return &Service{Searcher: searcher, Catalog: catalog, Cfg: cfg}
}

// Signatures dispatches one search per criterion concurrently, waits for all
// of them at the barrier, then merges the facets sequentially in catalog
// order. Each goroutine only writes its own slot, so the merge needs no lock
// and the result does not depend on completion order
func (s *Service) Signatures(ctx context.Context, in domain.RunInput) (domain.ResultMap, error) {
	end := in.Date
	if end.IsZero() {
		end = time.Now().UTC()
	}
	days := in.LookbackDays
	if days <= 0 {
		days = s.Cfg.LookbackDays
	}
	minCrashes := in.MinimumCrashes
	if minCrashes <= 0 {
		minCrashes = s.Cfg.MinimumCrashes
	}
	dateRange := domain.NewDateRange(end, days)

	ctx = logger.WithRun(ctx, uuid.NewString())
	log := logger.C(ctx)
	start := time.Now()
	log.Info().
		Time("date_start", dateRange.Start).
		Time("date_end", dateRange.End).
		Int("min_crashes", minCrashes).
		Int("criteria", s.Catalog.Len()).
		Msg("topcrash: run started")

	criteria := s.Catalog.Criteria()
	facets := make([][]domain.SignatureFacetEntry, len(criteria))
	errs := make([]error, len(criteria))

	var wg sync.WaitGroup
	for i, crit := range criteria {
		i, crit := i, crit
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err := s.Searcher.SignatureFacet(ctx, buildParams(crit, dateRange, s.Cfg.BlockPatterns))
			if err != nil {
				errs[i] = perr.Wrapf(err, perr.CodeOf(err),
					"criterion %d (%s/%v) search failed", i, crit.Product, crit.Channels)
				return
			}
			facets[i] = entries
		}()
	}
	wg.Wait()

	// one failed criterion fails the run: a silently missing slice would
	// misclassify its signatures as not-top-crash
	for _, err := range errs {
		if err != nil {
			log.Error().Err(err).Msg("topcrash: run failed")
			return nil, err
		}
	}

	out := domain.ResultMap{}
	for i, crit := range criteria {
		mergeCriterion(out, crit, facets[i], minCrashes)
	}

	log.Info().
		Int("signatures", len(out)).
		Int("startup", startupCount(out)).
		Dur("elapsed", time.Since(start)).
		Msg("topcrash: run complete")
	return out, nil
}

func startupCount(m domain.ResultMap) int {
	n := 0
	for _, rec := range m {
		if rec.IsStartup {
			n++
		}
	}
	return n
}
