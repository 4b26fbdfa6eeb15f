package cli

import (
	"bytes"
	"context"
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

func testCatalogue() *services.Catalogue {
	layers := []domain.RawLayer{
		{LayerID: 1, ReleaseYear: 2024, ReleaseMonth: time.January, Text: layerOne},
		{LayerID: 2, ReleaseYear: 2024, ReleaseMonth: time.March, Text: layerTwo},
	}
	return services.NewCatalogueFromRegistry(services.BuildRegistry(layers), memory.NewLayerStore(layers...))
}

// setupTestServices installs a catalogue over two layers and mock services.
// The returned function restores the previous state.
func setupTestServices() func() {
	old := deps
	SetServices(&Services{
		Catalogue: testCatalogue(),
		Search:    &mockSearchService{},
		Ingest:    &mockIngestService{report: &domain.IngestReport{Source: "mock", Added: []int{3}}},
	})
	return func() { deps = old }
}

// runCommand executes the root command with args and returns its output.
func runCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	lastQuery domain.SearchQuery
	err       error
}

func (m *mockSearchService) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	m.lastQuery = q
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SearchResponse{
		Hits: []domain.SearchHit{{
			Definition: domain.CompactDefinition{
				LayerID:      2,
				DefinitionID: "11",
				Name:         "users.getUsers",
				Namespace:    "users",
				ReturnType:   "Vector<User>",
				Kind:         domain.KindFunction,
			},
			Score:     0.75,
			Formatted: map[string]string{domain.AttrName: "users.[get]Users"},
		}},
		TotalHits:      1,
		ProcessingTime: time.Millisecond,
		Query:          q.Query,
	}, nil
}

func (m *mockSearchService) Filters(_ context.Context) ([]string, error) {
	return domain.FilterableAttributes, nil
}

func (m *mockSearchService) Ready(_ context.Context) (bool, error) {
	return true, nil
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *domain.IngestReport
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context) (*domain.IngestReport, error) {
	return m.report, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.Settings
	set      map[string]string
	err      error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.set == nil {
		m.set = map[string]string{}
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"store.driver", "source.kind"}
}

func (m *mockSettingsService) Path() string {
	return "/tmp/tlscope/config.toml"
}
