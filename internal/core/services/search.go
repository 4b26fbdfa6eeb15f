package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
	"github.com/custodia-labs/tlscope/internal/core/ports/driving"
	"github.com/custodia-labs/tlscope/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService validates search requests and forwards them to the index.
// Ranking and highlighting belong to the index.
type SearchService struct {
	index driven.SearchIndex
}

// NewSearchService creates a new search service. index may be nil, in which
// case every call reports domain.ErrSearchUnavailable.
func NewSearchService(index driven.SearchIndex) *SearchService {
	return &SearchService{index: index}
}

// Search performs a ranked search over compact definitions.
func (s *SearchService) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error) {
	logger.Section("Search Execution")
	if s.index == nil {
		return nil, domain.ErrSearchUnavailable
	}

	query.Query = strings.TrimSpace(query.Query)
	logger.Debug("Query: %q layer=%d kind=%q attrs=%v", query.Query, query.LayerID, query.Kind, query.Attributes)

	if query.Query == "" {
		logger.Debug("Empty query, returning no results")
		return &domain.SearchResponse{Hits: []domain.SearchHit{}}, nil
	}
	if query.Kind != "" && !query.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown definition type %q", domain.ErrInvalidInput, query.Kind)
	}
	if query.LayerID < 0 {
		return nil, fmt.Errorf("%w: negative layer id", domain.ErrInvalidInput)
	}
	for _, attr := range query.Attributes {
		if !slices.Contains(domain.SearchableAttributes, attr) {
			return nil, fmt.Errorf("%w: cannot search on %q", domain.ErrInvalidInput, attr)
		}
	}

	query.Limit = domain.ClampLimit(query.Limit, domain.DefaultSearchLimit, domain.MaxSearchLimit)
	if !query.Highlight {
		query.HighlightPrefix, query.HighlightPostfix = "", ""
	}

	resp, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("%d hits of %d in %s", len(resp.Hits), resp.TotalHits, resp.ProcessingTime)
	return resp, nil
}

// Filters lists the attributes the index can filter on.
func (s *SearchService) Filters(ctx context.Context) ([]string, error) {
	if s.index == nil {
		return nil, domain.ErrSearchUnavailable
	}
	attrs, err := s.index.FilterableAttributes(ctx)
	if err != nil {
		return nil, fmt.Errorf("search filters: %w", err)
	}
	return attrs, nil
}

// Ready reports whether the index has been populated.
func (s *SearchService) Ready(ctx context.Context) (bool, error) {
	if s.index == nil {
		return false, nil
	}
	ready, err := s.index.Ready(ctx)
	if err != nil {
		return false, fmt.Errorf("search readiness: %w", err)
	}
	return ready, nil
}
