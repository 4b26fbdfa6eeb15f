package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
//
// Absence inside the catalogue (unknown layer, name or namespace) is not
// an error: query methods report it through empty results or a false flag.
// ErrNotFound is used only at adapter boundaries that must speak errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLayerExists indicates a layer with the same id is already stored.
	// Raw layers are append-only.
	ErrLayerExists = errors.New("layer already exists")

	// ErrCatalogueNotReady indicates queries were issued before startup finished.
	ErrCatalogueNotReady = errors.New("catalogue not ready")

	// ErrSearchUnavailable indicates the search index is not configured.
	// Ranked search is disabled; point-in-time queries still work.
	ErrSearchUnavailable = errors.New("search index unavailable")

	// ErrSourceUnavailable indicates no layer source is configured for ingestion.
	ErrSourceUnavailable = errors.New("layer source unavailable")

	// ErrUnsupportedType indicates an unknown store driver or source kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIngestInProgress indicates an ingestion run is already active.
	ErrIngestInProgress = errors.New("ingest in progress")
)
