package service

import "topcrash/internal/services/topcrash/domain"

// buildParams maps one criterion plus the run's date window onto the
// parameter shape accepted by the crash-report search service. The facet
// size covers the wider of the two limits so a single query serves both the
// primary and the rescue pass. Pure function of its inputs
func buildParams(c domain.Criterion, dr domain.DateRange, block []string) domain.SearchParams {
	return domain.SearchParams{
		Product:         c.Product,
		ReleaseChannels: c.Channels,
		ProcessTypes:    c.ProcessTypes,
		Platform:        c.Platform,
		CPUArch:         c.CPUArch,
		Date:            dr,
		SignatureBlock:  block,
		ResultsNumber:   0,
		FacetSize:       c.FacetSize(),
	}
}
