package driving

import (
	"context"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// IngestService pulls new layers from the configured source into the store.
type IngestService interface {
	// Ingest stores every layer offered by the source that is not yet stored.
	// Returns domain.ErrIngestInProgress if another run is active.
	Ingest(ctx context.Context) (*domain.IngestReport, error)
}
