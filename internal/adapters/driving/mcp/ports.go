package mcp

import (
	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalogue answers point-in-time and history queries.
	Catalogue driving.CatalogueService

	// Search provides ranked search. Optional; the search tools report
	// the index as unavailable without it.
	Search driving.SearchService

	// DefaultLimit and MaxLimit bound by-name lookups.
	// Zero values fall back to the domain defaults.
	DefaultLimit int
	MaxLimit     int
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Catalogue == nil {
		return ErrMissingCatalogueService
	}
	return nil
}

func (p *Ports) clampLimit(limit int) int {
	def, maxLimit := p.DefaultLimit, p.MaxLimit
	if maxLimit <= 0 {
		maxLimit = domain.MaxQueryLimit
	}
	if def <= 0 || def > maxLimit {
		def = min(domain.DefaultQueryLimit, maxLimit)
	}
	return domain.ClampLimit(limit, def, maxLimit)
}
