package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for tlscope resources.
	uriScheme = "tlscope://"

	// latestLayer addresses the highest parsed layer.
	latestLayer = "latest"

	mimeJSON = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "layers",
		Name:        "layers",
		Description: "Release date of every parsed layer, newest first",
		MIMEType:    mimeJSON,
	}, s.handleLayersResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "layer-ids",
		Name:        "layer-ids",
		Description: "Ids of every stored layer, ascending",
		MIMEType:    mimeJSON,
	}, s.handleLayerIDsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "layers/{layerId}",
		Name:        "layer",
		Description: "Parsed schema of one layer; use latest for the newest",
		MIMEType:    mimeJSON,
	}, s.handleLayerResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "layers/{layerId}/compact",
		Name:        "layer-compact",
		Description: "Compact definitions of one layer",
		MIMEType:    mimeJSON,
	}, s.handleCompactResource)
}

// handleLayersResource returns the release dates, newest first.
func (s *Server) handleLayersResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Catalogue.ReleaseDates())
}

// handleLayerIDsResource returns the layer ids held by the store.
func (s *Server) handleLayerIDsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ids, err := s.ports.Catalogue.LayerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing layer ids: %w", err)
	}
	if ids == nil {
		ids = []int{}
	}
	return jsonResource(req.Params.URI, ids)
}

// handleLayerResource returns the parsed schema of one layer.
func (s *Server) handleLayerResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := s.resolveLayer(extractLayerID(req.Params.URI, ""))
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	schema, ok := s.ports.Catalogue.Layer(id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, schema)
}

// handleCompactResource returns the compact definitions of one layer.
func (s *Server) handleCompactResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := s.resolveLayer(extractLayerID(req.Params.URI, "/compact"))
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	defs, ok := s.ports.Catalogue.CompactLayer(id)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, defs)
}

// resolveLayer turns a layer segment into an id, mapping latest to the
// highest parsed layer.
func (s *Server) resolveLayer(segment string) (int, bool) {
	if segment == latestLayer {
		return s.ports.Catalogue.LatestLayerID()
	}
	id, err := strconv.Atoi(segment)
	if err != nil || domain.ValidateLayerID(id, false) != nil {
		return 0, false
	}
	return id, true
}

// extractLayerID extracts the layer segment from a URI like
// tlscope://layers/{layerId}{suffix}.
func extractLayerID(uri, suffix string) string {
	const prefix = uriScheme + "layers/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	uri = strings.TrimPrefix(uri, prefix)

	if suffix != "" {
		if !strings.HasSuffix(uri, suffix) {
			return ""
		}
		uri = strings.TrimSuffix(uri, suffix)
	}
	if uri == "" || strings.Contains(uri, "/") {
		return ""
	}
	return uri
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		}},
	}, nil
}
