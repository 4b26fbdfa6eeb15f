package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
)

// layerStore implements driven.LayerStore.
type layerStore struct {
	store *Store
}

var _ driven.LayerStore = (*layerStore)(nil)

// List returns every stored layer ordered by layer id.
func (s *layerStore) List(ctx context.Context) ([]domain.RawLayer, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT layer_id, release_year, release_month, content
		FROM layers ORDER BY layer_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying layers: %w", err)
	}
	defer rows.Close()

	var layers []domain.RawLayer //nolint:prealloc // size unknown from query
	for rows.Next() {
		var layer domain.RawLayer
		var month int
		if err := rows.Scan(&layer.LayerID, &layer.ReleaseYear, &month, &layer.Text); err != nil {
			return nil, fmt.Errorf("scanning layer: %w", err)
		}
		layer.ReleaseMonth = time.Month(month)
		layers = append(layers, layer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating layers: %w", err)
	}
	return layers, nil
}

// IDs returns the stored layer ids in ascending order.
func (s *layerStore) IDs(ctx context.Context) ([]int, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT layer_id FROM layers ORDER BY layer_id")
	if err != nil {
		return nil, fmt.Errorf("querying layer ids: %w", err)
	}
	defer rows.Close()

	var ids []int //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning layer id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating layer ids: %w", err)
	}
	return ids, nil
}

// Add stores a new layer. Existing layers are never overwritten.
func (s *layerStore) Add(ctx context.Context, layer domain.RawLayer) error {
	if layer.LayerID <= 0 || layer.ReleaseMonth < time.January || layer.ReleaseMonth > time.December {
		return domain.ErrInvalidInput
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO layers (layer_id, release_year, release_month, content)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(layer_id) DO NOTHING
	`, layer.LayerID, layer.ReleaseYear, int(layer.ReleaseMonth), layer.Text)
	if err != nil {
		return fmt.Errorf("saving layer %d: %w", layer.LayerID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving layer %d: %w", layer.LayerID, err)
	}
	if n == 0 {
		return domain.ErrLayerExists
	}
	return nil
}
