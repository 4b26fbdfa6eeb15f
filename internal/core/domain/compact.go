package domain

import "strings"

// DefinitionKind distinguishes functions from objects.
type DefinitionKind string

// Definition kinds.
const (
	KindFunction DefinitionKind = "Function"
	KindObject   DefinitionKind = "Object"
)

// IsValid returns true if the kind is recognised.
func (k DefinitionKind) IsValid() bool {
	return k == KindFunction || k == KindObject
}

// String returns the string representation.
func (k DefinitionKind) String() string {
	return string(k)
}

// ParseDefinitionKind accepts "function"/"object" in any case.
func ParseDefinitionKind(s string) (DefinitionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "function", "func", "fn":
		return KindFunction, nil
	case "object", "obj":
		return KindObject, nil
	default:
		return "", ErrInvalidInput
	}
}

// CompactDefinition is the flattened, per-occurrence projection of a
// constructor or function used for search and compact responses.
//
// For functions Namespace is the bucket key the function was grouped under;
// for objects it is the type group (category) name.
type CompactDefinition struct {
	ID           string         `json:"id"`
	LayerID      int            `json:"layer_id"`
	DefinitionID string         `json:"definition_id"`
	Name         string         `json:"name"`
	Namespace    string         `json:"namespace"`
	ReturnType   string         `json:"return_type,omitempty"`
	Kind         DefinitionKind `json:"definition_type"`
}

// ConstructorRef is the compact projection of a constructor inside a type group.
type ConstructorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
