package domain

import "time"

// Searchable attributes of a CompactDefinition.
const (
	AttrName         = "name"
	AttrNamespace    = "namespace"
	AttrReturnType   = "return_type"
	AttrDefinitionID = "definition_id"
)

// FilterableAttributes lists the fields the search index accepts filters on.
var FilterableAttributes = []string{
	"layer_id", "definition_id", "name", "definition_type", "return_type", "namespace",
}

// SearchableAttributes lists the fields a query may be restricted to.
var SearchableAttributes = []string{AttrName, AttrNamespace, AttrReturnType, AttrDefinitionID}

// Search limits.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 300
)

// SearchQuery configures a ranked search over compact definitions.
type SearchQuery struct {
	// Query is the free text to match.
	Query string

	// LayerID filters to one layer; AllLayers searches everything.
	LayerID int

	// Kind filters by definition kind when set.
	Kind DefinitionKind

	// Attributes restricts matching to these fields. Empty means all.
	Attributes []string

	// Limit is the maximum number of results.
	Limit int

	// Highlight requests formatted fields with the tags below.
	Highlight        bool
	HighlightPrefix  string
	HighlightPostfix string
}

// SearchHit is a single ranked result.
type SearchHit struct {
	Definition CompactDefinition `json:"definition"`

	// Score is the ranking score, higher is better.
	Score float64 `json:"ranking_score"`

	// Formatted holds highlighted attribute values when requested.
	Formatted map[string]string `json:"formatted_result,omitempty"`
}

// SearchResponse is the reshaped answer of the search index.
type SearchResponse struct {
	Hits           []SearchHit   `json:"results"`
	ProcessingTime time.Duration `json:"process_time"`
	TotalHits      int           `json:"total_hits"`
	Query          string        `json:"query"`
}
