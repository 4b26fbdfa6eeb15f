package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/tlscope/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tlscope/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/tlscope/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tlscope/internal/adapters/driving/cli"
	"github.com/custodia-labs/tlscope/internal/connectors/filesystem"
	"github.com/custodia-labs/tlscope/internal/connectors/github"
	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
	"github.com/custodia-labs/tlscope/internal/core/services"
	"github.com/custodia-labs/tlscope/internal/logger"
)

// stores groups the driven storage ports of one driver.
type stores struct {
	layers    driven.LayerStore
	index     driven.SearchIndex
	scheduler driven.SchedulerStore
	closers   []func() error
}

func (s *stores) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// openStores opens the storage selected by the store driver.
func openStores(ctx context.Context, cfg domain.StoreSettings) (*stores, error) {
	switch cfg.Driver {
	case domain.StoreDriverSQLite:
		db, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Debug("sqlite store at %s", db.Path())
		return &stores{
			layers:    db.LayerStore(),
			index:     db.SearchIndex(),
			scheduler: db.SchedulerStore(),
			closers:   []func() error{db.Close},
		}, nil

	case domain.StoreDriverPostgres:
		layers, err := postgres.NewLayerStore(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		// Search and scheduler state are rebuilt on every start.
		index := memory.NewSearchIndex()
		return &stores{
			layers:    layers,
			index:     index,
			scheduler: memory.NewSchedulerStore(),
			closers:   []func() error{layers.Close, index.Close},
		}, nil

	case domain.StoreDriverMemory:
		index := memory.NewSearchIndex()
		return &stores{
			layers:    memory.NewLayerStore(),
			index:     index,
			scheduler: memory.NewSchedulerStore(),
			closers:   []func() error{index.Close},
		}, nil

	default:
		return nil, fmt.Errorf("%w: store driver %q", domain.ErrUnsupportedType, cfg.Driver)
	}
}

// openSource builds the layer source selected by the source kind.
// A nil source disables ingestion.
func openSource(ctx context.Context, cfg domain.SourceSettings) (driven.LayerSource, error) {
	switch cfg.Kind {
	case domain.SourceKindGitHub:
		ghCfg, err := github.ConfigFromSettings(cfg)
		if err != nil {
			return nil, err
		}
		return github.NewSource(github.NewClient(ctx, cfg.Token), ghCfg), nil

	case domain.SourceKindDir:
		src, err := filesystem.NewSource(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return src, nil

	case domain.SourceKindNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("%w: source kind %q", domain.ErrUnsupportedType, cfg.Kind)
	}
}

// buildServices wires stores, source and core services for the CLI.
// On failure everything opened so far is closed.
func buildServices(ctx context.Context, settings *domain.Settings) (*cli.Services, error) {
	st, err := openStores(ctx, settings.Store)
	if err != nil {
		return nil, err
	}

	source, err := openSource(ctx, settings.Source)
	if err != nil {
		_ = st.close()
		return nil, fmt.Errorf("configuring layer source: %w", err)
	}

	catalogue, err := services.NewCatalogue(ctx, st.layers, st.index, settings.Search.ReplaceOnStart)
	if err != nil {
		_ = st.close()
		return nil, fmt.Errorf("building catalogue: %w", err)
	}

	ingest := services.NewIngestService(source, st.layers)
	ingest.SetReloader(catalogue)

	svc := &cli.Services{
		Catalogue:    catalogue,
		Search:       services.NewSearchService(st.index),
		Ingest:       ingest,
		DefaultLimit: settings.Query.DefaultLimit,
		MaxLimit:     settings.Query.MaxLimit,
		MCPAddr:      settings.MCPAddr,
		Close:        st.close,
	}

	if schedCfg := settings.SchedulerConfig(); schedCfg.Enabled {
		svc.Scheduler = services.NewScheduler(schedCfg, st.scheduler, ingest)
	}
	if watcher, ok := source.(driven.LayerWatcher); ok {
		svc.Watch = func(ctx context.Context) error {
			return ingest.Watch(ctx, watcher)
		}
	}

	return svc, nil
}
