package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
	"github.com/custodia-labs/tlscope/internal/core/ports/driving"
	"github.com/custodia-labs/tlscope/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Reloader rebuilds in-memory state after new layers are stored.
type Reloader interface {
	Reload(ctx context.Context) error
}

// watchDebounce is the quiet period after the last change notification
// before a watched source is ingested. Layer files are often written in
// several chunks.
const watchDebounce = 2 * time.Second

// IngestService copies layers offered by a LayerSource into the LayerStore.
// Stored layers are never updated.
type IngestService struct {
	source   driven.LayerSource
	store    driven.LayerStore
	reloader Reloader
	debounce time.Duration

	mu      sync.Mutex
	running bool
}

// NewIngestService creates a new ingest service.
func NewIngestService(source driven.LayerSource, store driven.LayerStore) *IngestService {
	return &IngestService{source: source, store: store, debounce: watchDebounce}
}

// SetReloader sets the component rebuilt after a run that added layers.
func (s *IngestService) SetReloader(r Reloader) {
	s.reloader = r
}

// Ingest stores every layer the source offers that the store lacks.
// A failure on one layer aborts the run; layers stored before it stay.
func (s *IngestService) Ingest(ctx context.Context) (*domain.IngestReport, error) {
	if s.source == nil {
		return nil, domain.ErrSourceUnavailable
	}
	if !s.begin() {
		return nil, domain.ErrIngestInProgress
	}
	defer s.end()

	start := time.Now()
	report := &domain.IngestReport{Source: s.source.Name(), Added: []int{}}
	logger.Section("Layer Ingest")

	// 1. Known layers
	ids, err := s.store.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored layers: %w", err)
	}
	known := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	// 2. Offered layers
	files, err := s.source.ListLayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].LayerID < files[j].LayerID })
	logger.Debug("%s offers %d layers, %d stored", s.source.Name(), len(files), len(ids))

	// 3. Fetch and store the missing ones
	for _, f := range files {
		if _, ok := known[f.LayerID]; ok {
			report.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		raw, err := s.source.FetchLayer(ctx, f)
		if err != nil {
			return report, fmt.Errorf("fetch layer %d: %w", f.LayerID, err)
		}
		if err := s.store.Add(ctx, raw); err != nil {
			if errors.Is(err, domain.ErrLayerExists) {
				report.Skipped++
				continue
			}
			return report, fmt.Errorf("store layer %d: %w", f.LayerID, err)
		}

		logger.Info("stored layer %d (%d-%02d)", raw.LayerID, raw.ReleaseYear, int(raw.ReleaseMonth))
		known[f.LayerID] = struct{}{}
		report.Added = append(report.Added, f.LayerID)
	}

	// 4. Rebuild the catalogue if anything changed
	if len(report.Added) > 0 && s.reloader != nil {
		if err := s.reloader.Reload(ctx); err != nil {
			return report, fmt.Errorf("reload catalogue: %w", err)
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// Watch runs an ingest whenever the watcher reports changed layer files,
// once notifications have been quiet for the debounce period. It blocks
// until ctx is cancelled or the watcher fails.
func (s *IngestService) Watch(ctx context.Context, watcher driven.LayerWatcher) error {
	trigger := make(chan struct{}, 1)
	notify := func(f domain.LayerFile) {
		logger.Debug("layer file %s changed", f.Path)
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Watch(ctx, notify)
	}()

	var due <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return <-errCh
		case err := <-errCh:
			return err
		case <-trigger:
			due = time.After(s.debounce)
		case <-due:
			due = nil
			report, err := s.Ingest(ctx)
			switch {
			case err != nil:
				log.Printf("ingest watcher: %v", err)
			case len(report.Added) > 0:
				log.Printf("ingest watcher: stored layers %v", report.Added)
			}
		}
	}
}

func (s *IngestService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *IngestService) end() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
