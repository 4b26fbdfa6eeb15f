package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
)

const createTable = `
CREATE TABLE IF NOT EXISTS tl_layer (
	layer_id     INTEGER PRIMARY KEY,
	layer        TEXT    NOT NULL,
	release_date DATE    NOT NULL
)`

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// Ensure LayerStore implements the interface.
var _ driven.LayerStore = (*LayerStore)(nil)

// LayerStore stores raw layers in PostgreSQL via lib/pq.
type LayerStore struct {
	db *sql.DB
}

// NewLayerStore connects to dsn, verifies the connection and creates the
// tl_layer table if it does not exist.
func NewLayerStore(ctx context.Context, dsn string) (*LayerStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", domain.ErrInvalidInput)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tl_layer table: %w", err)
	}

	return &LayerStore{db: db}, nil
}

// Close closes the database connection.
func (s *LayerStore) Close() error {
	return s.db.Close()
}

// List returns every stored layer ordered by layer id.
func (s *LayerStore) List(ctx context.Context) ([]domain.RawLayer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT layer_id, layer, release_date FROM tl_layer ORDER BY layer_id`)
	if err != nil {
		return nil, fmt.Errorf("querying layers: %w", err)
	}
	defer rows.Close()

	var layers []domain.RawLayer //nolint:prealloc // size unknown from query
	for rows.Next() {
		var layer domain.RawLayer
		var released time.Time
		if err := rows.Scan(&layer.LayerID, &layer.Text, &released); err != nil {
			return nil, fmt.Errorf("scanning layer: %w", err)
		}
		layer.ReleaseYear = released.Year()
		layer.ReleaseMonth = released.Month()
		layers = append(layers, layer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating layers: %w", err)
	}
	return layers, nil
}

// IDs returns the stored layer ids in ascending order.
func (s *LayerStore) IDs(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT layer_id FROM tl_layer ORDER BY layer_id`)
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

// Add stores a new layer.
// Returns domain.ErrLayerExists if the id is already stored.
func (s *LayerStore) Add(ctx context.Context, layer domain.RawLayer) error {
	if layer.LayerID <= 0 || layer.ReleaseMonth < time.January || layer.ReleaseMonth > time.December {
		return domain.ErrInvalidInput
	}

	released := time.Date(layer.ReleaseYear, layer.ReleaseMonth, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tl_layer (layer_id, layer, release_date) VALUES ($1, $2, $3)`,
		layer.LayerID, layer.Text, released)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrLayerExists
		}
		return fmt.Errorf("saving layer %d: %w", layer.LayerID, err)
	}
	return nil
}
