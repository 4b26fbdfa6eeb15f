package services

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
	"github.com/custodia-labs/tlscope/internal/core/ports/driving"
	"github.com/custodia-labs/tlscope/internal/logger"
)

// Ensure Catalogue implements the interface.
var _ driving.CatalogueService = (*Catalogue)(nil)

// Catalogue serves queries from an immutable Registry built from the layer
// store. Reload swaps in a freshly built registry; queries in flight keep
// the one they started with.
type Catalogue struct {
	store        driven.LayerStore
	index        driven.SearchIndex
	replaceIndex bool

	registry atomic.Pointer[Registry]
}

// NewCatalogue loads every stored layer, parses it and, when replaceIndex is
// set, replaces the search index contents with the compact definitions.
// Startup is atomic: on any failure no catalogue is returned.
// The index is optional.
func NewCatalogue(
	ctx context.Context,
	store driven.LayerStore,
	index driven.SearchIndex,
	replaceIndex bool,
) (*Catalogue, error) {
	if store == nil {
		return nil, fmt.Errorf("catalogue: %w: layer store is required", domain.ErrInvalidInput)
	}

	c := &Catalogue{store: store, index: index, replaceIndex: replaceIndex}
	reg, err := c.build(ctx)
	if err != nil {
		return nil, err
	}
	c.registry.Store(reg)
	return c, nil
}

// NewCatalogueFromRegistry wraps an already built registry. Used by tests
// and tools that parse layers without a store.
func NewCatalogueFromRegistry(reg *Registry, store driven.LayerStore) *Catalogue {
	c := &Catalogue{store: store}
	c.registry.Store(reg)
	return c
}

func (c *Catalogue) build(ctx context.Context) (*Registry, error) {
	layers, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load layers: %w", err)
	}
	logger.Info("loaded %d layers from store", len(layers))

	reg := BuildRegistry(layers)

	if c.index != nil && c.replaceIndex {
		defs := reg.CompactDefinitions()
		logger.Debug("replacing search index with %d definitions", len(defs))
		if err := c.index.Replace(ctx, defs); err != nil {
			return nil, fmt.Errorf("populate search index: %w", err)
		}
	}
	return reg, nil
}

// Reload rebuilds the registry from the store. On failure the current
// registry stays in place.
func (c *Catalogue) Reload(ctx context.Context) error {
	reg, err := c.build(ctx)
	if err != nil {
		return err
	}
	c.registry.Store(reg)
	return nil
}

// Registry returns the registry currently serving queries.
func (c *Catalogue) Registry() *Registry {
	return c.registry.Load()
}

// Types looks up the constructors of a type group.
func (c *Catalogue) Types(q domain.ByNameQuery) domain.TypeResult {
	return c.Registry().Types(q)
}

// TypeNames lists type group names per layer.
func (c *Catalogue) TypeNames(layerID int) []domain.TypeNames {
	return c.Registry().TypeNames(layerID)
}

// Namespaces lists namespaces per layer.
func (c *Catalogue) Namespaces(layerID int) []domain.NamespaceListing {
	return c.Registry().Namespaces(layerID)
}

// NamespaceFunctions resolves one function namespace bucket.
func (c *Catalogue) NamespaceFunctions(q domain.NamespaceQuery) ([]domain.FunctionDefinition, bool) {
	return c.Registry().NamespaceFunctions(q)
}

// NamespaceObjects resolves one object namespace.
func (c *Catalogue) NamespaceObjects(q domain.NamespaceQuery) ([]domain.Constructor, bool) {
	return c.Registry().NamespaceObjects(q)
}

// Functions looks up a named function.
func (c *Catalogue) Functions(q domain.ByNameQuery) domain.FunctionResult {
	return c.Registry().Functions(q)
}

// Objects looks up a named constructor.
func (c *Catalogue) Objects(q domain.ByNameQuery) domain.ObjectResult {
	return c.Registry().Objects(q)
}

// History reconstructs the changelog of a named entity.
func (c *Catalogue) History(name string, kind domain.DefinitionKind) domain.HistoryResponse {
	return c.Registry().History(name, kind)
}

// Layer returns one layer's snapshot.
func (c *Catalogue) Layer(layerID int) (domain.ParsedSchema, bool) {
	return c.Registry().Layer(layerID)
}

// CompactLayer returns the compact projection of one layer.
func (c *Catalogue) CompactLayer(layerID int) ([]domain.CompactDefinition, bool) {
	return c.Registry().CompactLayer(layerID)
}

// ReleaseDates lists release dates, newest first.
func (c *Catalogue) ReleaseDates() []domain.LayerReleaseDate {
	dates := c.Registry().ReleaseDates()
	sort.SliceStable(dates, func(i, j int) bool {
		return dates[i].LayerID > dates[j].LayerID
	})
	return dates
}

// LayerIDs asks the store for its layer ids.
func (c *Catalogue) LayerIDs(ctx context.Context) ([]int, error) {
	if c.store == nil {
		return c.Registry().LayerIDs(), nil
	}
	ids, err := c.store.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list layer ids: %w", err)
	}
	return ids, nil
}

// LatestLayerID returns the highest parsed layer id.
func (c *Catalogue) LatestLayerID() (int, bool) {
	return c.Registry().LatestLayerID()
}
