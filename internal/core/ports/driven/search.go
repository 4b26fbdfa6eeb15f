package driven

import (
	"context"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// SearchIndex provides ranked full-text search over compact definitions.
// Ranking and highlighting are owned by the implementation.
type SearchIndex interface {
	// Replace swaps the whole index contents for defs, keyed by ID.
	Replace(ctx context.Context, defs []domain.CompactDefinition) error

	// Search runs a query. The query is already validated and clamped.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error)

	// FilterableAttributes lists the fields the index can filter on.
	FilterableAttributes(ctx context.Context) ([]string, error)

	// Ready reports whether the last Replace completed.
	Ready(ctx context.Context) (bool, error)

	// Close releases resources.
	Close() error
}
