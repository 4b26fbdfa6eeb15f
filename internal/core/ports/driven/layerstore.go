package driven

import (
	"context"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// LayerStore persists raw layer text. Layers are append-only.
type LayerStore interface {
	// List returns every stored layer, ordered by layer id ascending.
	List(ctx context.Context) ([]domain.RawLayer, error)

	// IDs returns the stored layer ids, ascending.
	IDs(ctx context.Context) ([]int, error)

	// Add stores a new layer.
	// Returns domain.ErrLayerExists if the id is already stored.
	Add(ctx context.Context, layer domain.RawLayer) error
}
