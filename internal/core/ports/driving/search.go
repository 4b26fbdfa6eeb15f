package driving

import (
	"context"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// SearchService provides ranked search over compact definitions.
type SearchService interface {
	// Search validates and clamps the query, then forwards it to the index.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error)

	// Filters lists the attributes the index can filter on.
	Filters(ctx context.Context) ([]string, error)

	// Ready reports whether the index has been populated.
	Ready(ctx context.Context) (bool, error)
}
