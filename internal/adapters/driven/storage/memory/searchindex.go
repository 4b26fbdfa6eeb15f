package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
)

// Ensure SearchIndex implements the interface.
var _ driven.SearchIndex = (*SearchIndex)(nil)

// Scores of the in-memory ranking, by where the query matched.
const (
	scoreExactName  = 1.0
	scoreNamePrefix = 0.75
	scoreNameInfix  = 0.5
	scoreOther      = 0.25
)

// SearchIndex is an in-memory driven.SearchIndex. Every query term must
// appear, case-insensitively, in one of the searched attributes. Hits
// are ranked by how the whole query relates to the name.
type SearchIndex struct {
	mu    sync.RWMutex
	defs  []domain.CompactDefinition
	ready bool
}

// NewSearchIndex creates an empty, not-ready search index.
func NewSearchIndex() *SearchIndex {
	return &SearchIndex{}
}

// Replace swaps the index contents.
func (s *SearchIndex) Replace(_ context.Context, defs []domain.CompactDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs = slices.Clone(defs)
	s.ready = true
	return nil
}

// Search runs a query against the current contents.
func (s *SearchIndex) Search(_ context.Context, query domain.SearchQuery) (*domain.SearchResponse, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(query.Query))
	attrs := query.Attributes
	if len(attrs) == 0 {
		attrs = domain.SearchableAttributes
	}

	hits := []domain.SearchHit{}
	for _, d := range s.defs {
		if query.LayerID != domain.AllLayers && d.LayerID != query.LayerID {
			continue
		}
		if query.Kind != "" && d.Kind != query.Kind {
			continue
		}
		if !matchesAll(&d, attrs, terms) {
			continue
		}
		hit := domain.SearchHit{Definition: d, Score: score(d.Name, query.Query)}
		if query.Highlight {
			hit.Formatted = formatted(&d, terms, query.HighlightPrefix, query.HighlightPostfix)
		}
		hits = append(hits, hit)
	}

	slices.SortStableFunc(hits, func(a, b domain.SearchHit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Definition.Name, b.Definition.Name)
	})

	total := len(hits)
	if query.Limit > 0 && len(hits) > query.Limit {
		hits = hits[:query.Limit]
	}

	return &domain.SearchResponse{
		Hits:           hits,
		ProcessingTime: time.Since(start),
		TotalHits:      total,
		Query:          query.Query,
	}, nil
}

// FilterableAttributes lists the fields Search accepts filters on.
func (s *SearchIndex) FilterableAttributes(_ context.Context) ([]string, error) {
	return slices.Clone(domain.FilterableAttributes), nil
}

// Ready reports whether Replace has been called.
func (s *SearchIndex) Ready(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready, nil
}

// Close is a no-op.
func (s *SearchIndex) Close() error {
	return nil
}

func attribute(d *domain.CompactDefinition, attr string) string {
	switch attr {
	case domain.AttrName:
		return d.Name
	case domain.AttrNamespace:
		return d.Namespace
	case domain.AttrReturnType:
		return d.ReturnType
	case domain.AttrDefinitionID:
		return d.DefinitionID
	default:
		return ""
	}
}

func matchesAll(d *domain.CompactDefinition, attrs, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	for _, t := range terms {
		found := false
		for _, a := range attrs {
			if strings.Contains(strings.ToLower(attribute(d, a)), t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func score(name, query string) float64 {
	name, query = strings.ToLower(name), strings.ToLower(strings.TrimSpace(query))
	switch {
	case name == query:
		return scoreExactName
	case strings.HasPrefix(name, query):
		return scoreNamePrefix
	case strings.Contains(name, query):
		return scoreNameInfix
	default:
		return scoreOther
	}
}

func formatted(d *domain.CompactDefinition, terms []string, pre, post string) map[string]string {
	out := make(map[string]string, len(domain.SearchableAttributes))
	for _, a := range domain.SearchableAttributes {
		out[a] = highlight(attribute(d, a), terms, pre, post)
	}
	return out
}

// highlight wraps every non-overlapping occurrence of the terms, preferring
// the longest term at each position. Terms are lower-case.
func highlight(value string, terms []string, pre, post string) string {
	lower := strings.ToLower(value)
	if len(lower) != len(value) {
		return value
	}
	var b strings.Builder
	for i := 0; i < len(value); {
		matched := 0
		for _, t := range terms {
			if t != "" && strings.HasPrefix(lower[i:], t) && len(t) > matched {
				matched = len(t)
			}
		}
		if matched == 0 {
			b.WriteByte(value[i])
			i++
			continue
		}
		b.WriteString(pre)
		b.WriteString(value[i : i+matched])
		b.WriteString(post)
		i += matched
	}
	return b.String()
}
