package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/tlscope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/services"
)

const layerOne = `///////// Main application API
---types---
user#1 id:int = User;
userEmpty#2 id:int = User;
help.config#3 date:int = help.Config;
---functions---
users.getFullUser#10 id:int = User;
users.getUsers#11 id:Vector<int> = Vector<User>;
help.getConfig#12 = help.Config;
`

const layerTwo = `///////// Main application API
---types---
user#1 id:long name:string = User;
help.config#3 date:int = help.Config;
---functions---
users.getFullUser#10 id:long = User;
users.getUsers#11 id:Vector<long> = Vector<User>;
`

// newTestCatalogue builds a catalogue over two small layers.
func newTestCatalogue(t *testing.T) *services.Catalogue {
	t.Helper()
	layers := []domain.RawLayer{
		{LayerID: 1, ReleaseYear: 2024, ReleaseMonth: time.January, Text: layerOne},
		{LayerID: 2, ReleaseYear: 2024, ReleaseMonth: time.March, Text: layerTwo},
	}
	return services.NewCatalogueFromRegistry(services.BuildRegistry(layers), memory.NewLayerStore(layers...))
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	lastQuery domain.SearchQuery
	response  *domain.SearchResponse
	filters   []string
	err       error
}

func (m *mockSearchService) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.SearchResponse{Hits: []domain.SearchHit{}, Query: q.Query}, nil
	}
	return m.response, nil
}

func (m *mockSearchService) Filters(_ context.Context) ([]string, error) {
	return m.filters, m.err
}

func (m *mockSearchService) Ready(_ context.Context) (bool, error) {
	return m.err == nil, m.err
}
