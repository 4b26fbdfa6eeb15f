package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// LookupInput is the input schema for the by-name lookup tools.
type LookupInput struct {
	Name    string `json:"name" jsonschema:"definition name, e.g. messages.sendMessage or user"`
	LayerID int    `json:"layer_id,omitempty" jsonschema:"layer to search; omit for every layer"`
	Mode    string `json:"mode,omitempty" jsonschema:"compact (default) or full"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of occurrences to return"`
}

// HistoryInput is the input schema for the history tool.
type HistoryInput struct {
	Name string `json:"name" jsonschema:"function or constructor name"`
	Kind string `json:"kind" jsonschema:"function or object"`
}

// LayerInput addresses a single layer, or every layer when omitted.
type LayerInput struct {
	LayerID int `json:"layer_id,omitempty" jsonschema:"layer id; omit for every layer"`
}

// NamespaceInput addresses one namespace inside one layer.
type NamespaceInput struct {
	LayerID   int    `json:"layer_id" jsonschema:"layer id"`
	Namespace string `json:"namespace" jsonschema:"namespace name, e.g. messages"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query            string   `json:"query" jsonschema:"free text to match against definitions"`
	LayerID          int      `json:"layer_id,omitempty" jsonschema:"restrict to one layer"`
	Kind             string   `json:"kind,omitempty" jsonschema:"function or object"`
	Attributes       []string `json:"attributes,omitempty" jsonschema:"fields to search: name, namespace, return_type, definition_id"`
	Limit            int      `json:"limit,omitempty" jsonschema:"maximum number of results (default 10)"`
	Highlight        bool     `json:"highlight,omitempty" jsonschema:"return highlighted fields"`
	HighlightPrefix  string   `json:"highlight_prefix,omitempty" jsonschema:"tag inserted before each match"`
	HighlightPostfix string   `json:"highlight_postfix,omitempty" jsonschema:"tag inserted after each match"`
}

// FiltersInput is the empty input of the search_filters tool.
type FiltersInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_types",
		Description: "Look up the constructors of a TL type by name, per layer",
	}, s.handleGetTypes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_function",
		Description: "Look up every occurrence of a TL function by name",
	}, s.handleGetFunction)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_object",
		Description: "Look up every occurrence of a TL constructor by name; full mode includes the functions that use it",
	}, s.handleGetObject)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "history",
		Description: "Show how a function or constructor changed across layers",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "type_names",
		Description: "List the type names defined in a layer",
	}, s.handleTypeNames)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "namespaces",
		Description: "List the function and object namespaces of a layer",
	}, s.handleNamespaces)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "namespace_functions",
		Description: "List the functions of one namespace in one layer",
	}, s.handleNamespaceFunctions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "namespace_objects",
		Description: "List the constructors of one namespace in one layer",
	}, s.handleNamespaceObjects)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Ranked search over every function and constructor",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_filters",
		Description: "List the attributes search results can be filtered on",
	}, s.handleSearchFilters)
}

func (s *Server) lookupQuery(input LookupInput) (domain.ByNameQuery, error) {
	name, err := domain.ValidateName(input.Name)
	if err != nil {
		return domain.ByNameQuery{}, err
	}
	if err := domain.ValidateLayerID(input.LayerID, true); err != nil {
		return domain.ByNameQuery{}, err
	}
	mode := domain.FetchMode(strings.ToLower(strings.TrimSpace(input.Mode)))
	if mode == "" {
		mode = domain.FetchCompact
	}
	if !mode.IsValid() {
		return domain.ByNameQuery{}, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, input.Mode)
	}
	return domain.ByNameQuery{
		Name:    name,
		LayerID: input.LayerID,
		Mode:    mode,
		Limit:   s.ports.clampLimit(input.Limit),
	}, nil
}

// handleGetTypes handles the get_types tool invocation.
func (s *Server) handleGetTypes(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, any, error) {
	q, err := s.lookupQuery(input)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	res := s.ports.Catalogue.Types(q)
	if res.Count() == 0 {
		return notFound("type", q.Name), nil, nil
	}
	return toolJSON(res)
}

// handleGetFunction handles the get_function tool invocation.
func (s *Server) handleGetFunction(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, any, error) {
	q, err := s.lookupQuery(input)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	res := s.ports.Catalogue.Functions(q)
	if res.Count() == 0 {
		return notFound("function", q.Name), nil, nil
	}
	return toolJSON(res)
}

// handleGetObject handles the get_object tool invocation.
func (s *Server) handleGetObject(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input LookupInput,
) (*mcp.CallToolResult, any, error) {
	q, err := s.lookupQuery(input)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	res := s.ports.Catalogue.Objects(q)
	if res.Count() == 0 {
		return notFound("object", q.Name), nil, nil
	}
	return toolJSON(res)
}

// handleHistory handles the history tool invocation.
func (s *Server) handleHistory(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input HistoryInput,
) (*mcp.CallToolResult, any, error) {
	name, err := domain.ValidateName(input.Name)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	kind, err := domain.ParseDefinitionKind(input.Kind)
	if err != nil {
		return toolError("%v: kind must be function or object", err), nil, nil
	}
	res := s.ports.Catalogue.History(name, kind)
	if !res.Found {
		return notFound(strings.ToLower(kind.String()), name), nil, nil
	}
	return toolJSON(res)
}

// handleTypeNames handles the type_names tool invocation.
func (s *Server) handleTypeNames(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input LayerInput,
) (*mcp.CallToolResult, any, error) {
	if err := domain.ValidateLayerID(input.LayerID, true); err != nil {
		return toolError("%v", err), nil, nil
	}
	res := s.ports.Catalogue.TypeNames(input.LayerID)
	if len(res) == 0 {
		return notFound("layer", fmt.Sprint(input.LayerID)), nil, nil
	}
	return toolJSON(res)
}

// handleNamespaces handles the namespaces tool invocation.
func (s *Server) handleNamespaces(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input LayerInput,
) (*mcp.CallToolResult, any, error) {
	if err := domain.ValidateLayerID(input.LayerID, true); err != nil {
		return toolError("%v", err), nil, nil
	}
	res := s.ports.Catalogue.Namespaces(input.LayerID)
	if len(res) == 0 {
		return notFound("layer", fmt.Sprint(input.LayerID)), nil, nil
	}
	return toolJSON(res)
}

func namespaceQuery(input NamespaceInput) (domain.NamespaceQuery, error) {
	if err := domain.ValidateLayerID(input.LayerID, false); err != nil {
		return domain.NamespaceQuery{}, err
	}
	ns := strings.TrimSpace(input.Namespace)
	if ns == "" {
		return domain.NamespaceQuery{}, fmt.Errorf("%w: namespace is required", domain.ErrInvalidInput)
	}
	return domain.NamespaceQuery{LayerID: input.LayerID, Namespace: ns}, nil
}

// handleNamespaceFunctions handles the namespace_functions tool invocation.
func (s *Server) handleNamespaceFunctions(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input NamespaceInput,
) (*mcp.CallToolResult, any, error) {
	q, err := namespaceQuery(input)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	fns, ok := s.ports.Catalogue.NamespaceFunctions(q)
	if !ok {
		return notFound("namespace", q.Namespace), nil, nil
	}
	return toolJSON(fns)
}

// handleNamespaceObjects handles the namespace_objects tool invocation.
func (s *Server) handleNamespaceObjects(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input NamespaceInput,
) (*mcp.CallToolResult, any, error) {
	q, err := namespaceQuery(input)
	if err != nil {
		return toolError("%v", err), nil, nil
	}
	ctors, ok := s.ports.Catalogue.NamespaceObjects(q)
	if !ok {
		return notFound("namespace", q.Namespace), nil, nil
	}
	return toolJSON(ctors)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, any, error) {
	if s.ports.Search == nil {
		return toolError("%v", domain.ErrSearchUnavailable), nil, nil
	}
	if err := domain.ValidateLayerID(input.LayerID, true); err != nil {
		return toolError("%v", err), nil, nil
	}

	query := domain.SearchQuery{
		Query:            input.Query,
		LayerID:          input.LayerID,
		Attributes:       input.Attributes,
		Limit:            input.Limit,
		Highlight:        input.Highlight,
		HighlightPrefix:  input.HighlightPrefix,
		HighlightPostfix: input.HighlightPostfix,
	}
	if input.Kind != "" {
		kind, err := domain.ParseDefinitionKind(input.Kind)
		if err != nil {
			return toolError("%v: kind must be function or object", err), nil, nil
		}
		query.Kind = kind
	}

	resp, err := s.ports.Search.Search(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return toolError("%v", err), nil, nil
		}
		return nil, nil, err
	}
	return toolJSON(resp)
}

// handleSearchFilters handles the search_filters tool invocation.
func (s *Server) handleSearchFilters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ FiltersInput,
) (*mcp.CallToolResult, any, error) {
	if s.ports.Search == nil {
		return toolError("%v", domain.ErrSearchUnavailable), nil, nil
	}
	filters, err := s.ports.Search.Filters(ctx)
	if err != nil {
		return nil, nil, err
	}
	return toolJSON(filters)
}

func notFound(what, name string) *mcp.CallToolResult {
	return toolError("%v: %s %q", domain.ErrNotFound, what, name)
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
