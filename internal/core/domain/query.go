package domain

import "time"

// AllLayers scopes a query to every layer.
const AllLayers = 0

// Query limits.
const (
	DefaultQueryLimit = 30
	MaxQueryLimit     = 300
)

// FetchMode selects the projection of a by-name lookup.
type FetchMode string

// Fetch modes.
const (
	FetchCompact FetchMode = "compact"
	FetchFull    FetchMode = "full"
)

// IsValid returns true if the fetch mode is recognised.
func (m FetchMode) IsValid() bool {
	return m == FetchCompact || m == FetchFull
}

// ByNameQuery looks up a named definition or type.
type ByNameQuery struct {
	Name string

	// LayerID scopes the lookup; AllLayers searches every layer.
	LayerID int

	Mode FetchMode

	// Limit caps the result; non-positive means DefaultQueryLimit.
	Limit int
}

// NamespaceQuery addresses one namespace inside one layer.
type NamespaceQuery struct {
	LayerID   int
	Namespace string
}

// TypeLookup is the full projection of a type group in one layer.
type TypeLookup struct {
	LayerID      int           `json:"layer_id"`
	Constructors []Constructor `json:"objects"`
}

// TypeLookupCompact is the compact projection of a type group in one layer.
type TypeLookupCompact struct {
	LayerID int              `json:"layer_id"`
	Objects []ConstructorRef `json:"objects"`
}

// TypeResult carries one of the two type projections.
type TypeResult struct {
	Mode    FetchMode           `json:"mode"`
	Full    []TypeLookup        `json:"full,omitempty"`
	Compact []TypeLookupCompact `json:"compact,omitempty"`
}

// Count returns the number of layers in the result.
func (r TypeResult) Count() int {
	if r.Mode == FetchFull {
		return len(r.Full)
	}
	return len(r.Compact)
}

// FunctionResult carries compact or full function occurrences.
type FunctionResult struct {
	Mode    FetchMode            `json:"mode"`
	Compact []CompactDefinition  `json:"compact,omitempty"`
	Full    []FunctionOccurrence `json:"full,omitempty"`
}

// Count returns the number of occurrences in the result.
func (r FunctionResult) Count() int {
	if r.Mode == FetchFull {
		return len(r.Full)
	}
	return len(r.Compact)
}

// ObjectResult carries compact or full object occurrences.
type ObjectResult struct {
	Mode    FetchMode           `json:"mode"`
	Compact []CompactDefinition `json:"compact,omitempty"`
	Full    []ObjectOccurrence  `json:"full,omitempty"`
}

// Count returns the number of occurrences in the result.
func (r ObjectResult) Count() int {
	if r.Mode == FetchFull {
		return len(r.Full)
	}
	return len(r.Compact)
}

// TypeNames lists the type group names of one layer.
type TypeNames struct {
	LayerID int      `json:"layer_id"`
	Types   []string `json:"types"`
}

// NamespaceListing lists the namespaces of one layer.
// Function namespaces keep insertion order; object namespaces are a set.
type NamespaceListing struct {
	LayerID            int      `json:"layer_id"`
	FunctionNamespaces []string `json:"function_ns"`
	ObjectNamespaces   []string `json:"object_ns"`
}

// LayerReleaseDate dates one layer.
type LayerReleaseDate struct {
	LayerID     int       `json:"layer_id"`
	ReleaseDate time.Time `json:"release_date"`
}

// ClampLimit applies the default and maximum to a caller supplied limit.
func ClampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
