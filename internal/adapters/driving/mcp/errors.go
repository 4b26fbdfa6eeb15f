// Package mcp provides an MCP (Model Context Protocol) server adapter for
// tlscope. It lets AI assistants look up TL definitions at any layer, read
// their histories and search the catalogue.
package mcp

import "errors"

// ErrMissingCatalogueService is returned when the catalogue service is not provided.
var ErrMissingCatalogueService = errors.New("mcp: catalogue service is required")
