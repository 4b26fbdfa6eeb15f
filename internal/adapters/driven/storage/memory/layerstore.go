package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
)

// Ensure LayerStore implements the interface.
var _ driven.LayerStore = (*LayerStore)(nil)

// LayerStore is an in-memory implementation of driven.LayerStore.
type LayerStore struct {
	mu     sync.RWMutex
	layers map[int]domain.RawLayer
}

// NewLayerStore creates a layer store pre-loaded with layers.
// Duplicate ids keep the first occurrence.
func NewLayerStore(layers ...domain.RawLayer) *LayerStore {
	s := &LayerStore{layers: make(map[int]domain.RawLayer, len(layers))}
	for _, l := range layers {
		if _, ok := s.layers[l.LayerID]; !ok {
			s.layers[l.LayerID] = l
		}
	}
	return s
}

// List returns every stored layer ordered by layer id.
func (s *LayerStore) List(_ context.Context) ([]domain.RawLayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.RawLayer, 0, len(s.layers))
	for _, l := range s.layers {
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LayerID < result[j].LayerID })
	return result, nil
}

// IDs returns the stored layer ids in ascending order.
func (s *LayerStore) IDs(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, len(s.layers))
	for id := range s.layers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Add stores a new layer.
func (s *LayerStore) Add(_ context.Context, layer domain.RawLayer) error {
	if layer.LayerID <= 0 || layer.ReleaseMonth < time.January || layer.ReleaseMonth > time.December {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layers[layer.LayerID]; ok {
		return domain.ErrLayerExists
	}
	s.layers[layer.LayerID] = layer
	return nil
}
