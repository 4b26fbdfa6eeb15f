package driven

import (
	"context"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// LayerSource lists and fetches layer files from a schema repository.
type LayerSource interface {
	// Name identifies the source in logs and reports.
	Name() string

	// ListLayers returns the layer files currently offered, ascending by id.
	ListLayers(ctx context.Context) ([]domain.LayerFile, error)

	// FetchLayer retrieves the text and release month of one layer file.
	FetchLayer(ctx context.Context, file domain.LayerFile) (domain.RawLayer, error)
}

// LayerWatcher is implemented by sources that can push change notifications.
type LayerWatcher interface {
	// Watch blocks until ctx is cancelled, calling notify when layer files
	// appear or change.
	Watch(ctx context.Context, notify func(domain.LayerFile)) error
}
