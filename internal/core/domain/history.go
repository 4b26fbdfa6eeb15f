package domain

// EventKind discriminates HistoryEvent variants.
type EventKind string

// History event kinds.
const (
	EventAddedIn           EventKind = "added_in"
	EventDeletedIn         EventKind = "deleted_in"
	EventParamAdded        EventKind = "param_added"
	EventParamDeleted      EventKind = "param_deleted"
	EventParamChanged      EventKind = "param_changed"
	EventReturnTypeChanged EventKind = "return_type_changed"
)

// HistoryEvent is one inferred change between two adjacent occurrences of
// an entity. Only the fields relevant to Kind are set:
//
//   - AddedIn, DeletedIn: LayerID
//   - ParamAdded: LayerID, Name, ParamType
//   - ParamDeleted: LayerID, Name
//   - ParamChanged: LayerID, Name, Diffs
//   - ReturnTypeChanged: LayerID, Before, After
type HistoryEvent struct {
	Kind      EventKind   `json:"kind"`
	LayerID   int         `json:"layer_id"`
	Name      string      `json:"name,omitempty"`
	ParamType string      `json:"param_type,omitempty"`
	Diffs     []FieldDiff `json:"diff,omitempty"`
	Before    string      `json:"before,omitempty"`
	After     string      `json:"after,omitempty"`
}

// FunctionOccurrence is a function as it appears in one layer.
type FunctionOccurrence struct {
	LayerID  int                `json:"layer_id"`
	Function FunctionDefinition `json:"function"`
}

// ObjectOccurrence is a constructor as it appears in one layer, together
// with the functions of that layer that reference it.
type ObjectOccurrence struct {
	LayerID  int           `json:"layer_id"`
	Category string        `json:"category"`
	Object   Constructor   `json:"obj"`
	Usages   []ObjectUsage `json:"usages"`
}

// UsageKind discriminates ObjectUsage variants.
type UsageKind string

// Usage kinds.
const (
	UsageParam        UsageKind = "param"
	UsageReturnType   UsageKind = "return_type"
	UsageViaNamespace UsageKind = "via_namespace"
)

// ObjectUsage is a cross-reference edge from an object to a function of the
// same layer. IsInner is set when the match was on a generic inner type.
type ObjectUsage struct {
	Kind     UsageKind          `json:"kind"`
	Function FunctionDefinition `json:"tl_function"`
	IsInner  bool               `json:"is_inner"`
}

// HistoryResponse is the reconstructed changelog of a named entity.
// Found is false when the name never occurred; Events is empty then.
type HistoryResponse struct {
	Kind   DefinitionKind `json:"kind"`
	Name   string         `json:"name"`
	Found  bool           `json:"found"`
	Events []HistoryEvent `json:"history"`

	// Exactly one of these is set when Found is true, matching Kind.
	LastFunction *FunctionOccurrence `json:"last_function,omitempty"`
	LastObject   *ObjectOccurrence   `json:"last_object,omitempty"`
}

// LastLayerID returns the layer of the newest occurrence, or 0 when empty.
func (r *HistoryResponse) LastLayerID() int {
	switch {
	case r.LastFunction != nil:
		return r.LastFunction.LayerID
	case r.LastObject != nil:
		return r.LastObject.LayerID
	default:
		return 0
	}
}
