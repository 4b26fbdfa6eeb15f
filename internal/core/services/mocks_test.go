package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
	"github.com/custodia-labs/tlscope/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockLayerStore implements driven.LayerStore for testing.
type mockLayerStore struct {
	mu      sync.Mutex
	layers  []domain.RawLayer
	listErr error
	idsErr  error
	addErr  error
}

func (m *mockLayerStore) List(_ context.Context) ([]domain.RawLayer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.RawLayer(nil), m.layers...), nil
}

func (m *mockLayerStore) IDs(_ context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idsErr != nil {
		return nil, m.idsErr
	}
	ids := make([]int, 0, len(m.layers))
	for _, l := range m.layers {
		ids = append(ids, l.LayerID)
	}
	return ids, nil
}

func (m *mockLayerStore) Add(_ context.Context, layer domain.RawLayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	for _, l := range m.layers {
		if l.LayerID == layer.LayerID {
			return domain.ErrLayerExists
		}
	}
	m.layers = append(m.layers, layer)
	return nil
}

// mockSearchIndex implements driven.SearchIndex for testing.
type mockSearchIndex struct {
	replaced   []domain.CompactDefinition
	replaceErr error
	lastQuery  domain.SearchQuery
	response   *domain.SearchResponse
	searchErr  error
	filters    []string
	ready      bool
	readyErr   error
}

func (m *mockSearchIndex) Replace(_ context.Context, defs []domain.CompactDefinition) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaced = defs
	m.ready = true
	return nil
}

func (m *mockSearchIndex) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchResponse, error) {
	m.lastQuery = q
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.response == nil {
		return &domain.SearchResponse{Query: q.Query}, nil
	}
	return m.response, nil
}

func (m *mockSearchIndex) FilterableAttributes(_ context.Context) ([]string, error) {
	return m.filters, nil
}

func (m *mockSearchIndex) Ready(_ context.Context) (bool, error) {
	return m.ready, m.readyErr
}

func (m *mockSearchIndex) Close() error {
	return nil
}

// mockLayerSource implements driven.LayerSource for testing.
type mockLayerSource struct {
	files    []domain.LayerFile
	texts    map[int]string
	listErr  error
	fetchErr error
	fetched  []int

	// block, when set, is waited on inside ListLayers.
	block chan struct{}
}

func (m *mockLayerSource) Name() string {
	return "mock"
}

func (m *mockLayerSource) ListLayers(_ context.Context) ([]domain.LayerFile, error) {
	if m.block != nil {
		<-m.block
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.LayerFile(nil), m.files...), nil
}

func (m *mockLayerSource) FetchLayer(_ context.Context, f domain.LayerFile) (domain.RawLayer, error) {
	if m.fetchErr != nil {
		return domain.RawLayer{}, m.fetchErr
	}
	m.fetched = append(m.fetched, f.LayerID)
	return domain.RawLayer{
		LayerID:      f.LayerID,
		ReleaseYear:  2024,
		ReleaseMonth: 1,
		Text:         m.texts[f.LayerID],
	}, nil
}

// mockLayerWatcher implements driven.LayerWatcher for testing. It reports
// every file in changes, then waits for cancellation.
type mockLayerWatcher struct {
	changes []domain.LayerFile
	err     error
}

func (m *mockLayerWatcher) Watch(ctx context.Context, notify func(domain.LayerFile)) error {
	if m.err != nil {
		return m.err
	}
	for _, f := range m.changes {
		notify(f)
	}
	<-ctx.Done()
	return nil
}

// mockReloader records Reload calls.
type mockReloader struct {
	calls int
	err   error
}

func (m *mockReloader) Reload(_ context.Context) error {
	m.calls++
	return m.err
}

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	calls  atomic.Int32
	report *domain.IngestReport
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context) (*domain.IngestReport, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return &domain.IngestReport{}, nil
	}
	return m.report, nil
}

// mockSchedulerStore implements driven.SchedulerStore for testing.
type mockSchedulerStore struct {
	mu       sync.RWMutex
	tasks    map[string]*domain.ScheduledTask
	results  map[string][]domain.TaskResult
	saveErr  error
	listErr  error
	getErr   error
	pruneErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, exists := m.tasks[taskID]
	if !exists {
		return nil, nil
	}
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if task == nil {
		return domain.ErrInvalidInput
	}
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) DeleteTask(_ context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, taskID)
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	if len(results) > limit {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error {
	return m.pruneErr
}

// mockConfigStore implements driven.ConfigStore for testing.
type mockConfigStore struct {
	values  map[string]any
	saveErr error
	saved   bool
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = true
	return nil
}

func (m *mockConfigStore) Load() error {
	return nil
}

func (m *mockConfigStore) Path() string {
	return "/tmp/tlscope/config.toml"
}

// Ensure mocks implement interfaces
var (
	_ driven.LayerStore     = (*mockLayerStore)(nil)
	_ driven.SearchIndex    = (*mockSearchIndex)(nil)
	_ driven.LayerSource    = (*mockLayerSource)(nil)
	_ driven.SchedulerStore = (*mockSchedulerStore)(nil)
	_ driven.ConfigStore    = (*mockConfigStore)(nil)
	_ driving.IngestService = (*mockIngestService)(nil)
	_ Reloader              = (*mockReloader)(nil)
)
