package domain

import "context"

// SearcherPort is the external crash-report search collaborator. Entries come
// back sorted descending by count; an empty slice is a valid answer
type SearcherPort interface {
	SignatureFacet(ctx context.Context, p SearchParams) ([]SignatureFacetEntry, error)
}

// RunnerPort is the external port for the identification run
type RunnerPort interface {
	Signatures(ctx context.Context, in RunInput) (ResultMap, error)
}
