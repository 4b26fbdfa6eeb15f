package domain

import (
	"strings"
	"time"
)

// OthersNamespace is the reserved bucket that collects functions whose
// natural namespace would hold a single function.
const OthersNamespace = "Others"

// RawLayer is one version of the schema text as supplied by ingestion.
// It is immutable once stored.
type RawLayer struct {
	// LayerID uniquely identifies the layer. Ids are totally ordered.
	LayerID int

	// ReleaseYear and ReleaseMonth date the layer to its release month.
	ReleaseYear  int
	ReleaseMonth time.Month

	// Text is the unprocessed schema text.
	Text string
}

// ReleaseDate returns the first day of the release month in UTC.
func (l RawLayer) ReleaseDate() time.Time {
	return time.Date(l.ReleaseYear, l.ReleaseMonth, 1, 0, 0, 0, 0, time.UTC)
}

// ParsedSchema is the structured catalogue of a single layer.
type ParsedSchema struct {
	LayerID     int       `json:"layer_id"`
	ReleaseDate time.Time `json:"release_date"`

	// Objects holds type groups in first-seen category order.
	Objects []TypeGroup `json:"objects"`

	// Functions holds namespace buckets in first-seen key order.
	// The reserved Others bucket, when present, is last.
	Functions []FunctionNamespace `json:"functions"`
}

// TypeGroup is the set of constructors sharing one result-type category.
type TypeGroup struct {
	Name         string        `json:"name"`
	Constructors []Constructor `json:"constructors"`
}

// FunctionNamespace is one entry of the namespace to functions mapping.
type FunctionNamespace struct {
	Name      string               `json:"name"`
	Functions []FunctionDefinition `json:"functions"`
}

// Constructor is one concrete object definition.
type Constructor struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Namespace  string      `json:"namespace,omitempty"`
	Parameters []Parameter `json:"parameters"`
}

// FunctionDefinition is one concrete RPC definition.
type FunctionDefinition struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Parameters      []Parameter `json:"parameters"`
	ReturnType      string      `json:"return_type"`
	InnerReturnType string      `json:"inner_return_type,omitempty"`
}

// Parameter is one field of a constructor or function.
type Parameter struct {
	Name              string `json:"name"`
	Type              string `json:"type"`
	InnerType         string `json:"inner_type,omitempty"`
	FlagName          string `json:"flag_name,omitempty"`
	FlagOffset        string `json:"flag_offset,omitempty"`
	IsGeneric         bool   `json:"is_generic"`
	IsOptional        bool   `json:"is_optional"`
	IsFlagPlaceholder bool   `json:"is_flag_placeholder"`
}

// SplitName derives the namespace of a dotted definition name.
// Only names with exactly two segments carry a namespace.
func SplitName(name string) (namespace, simple string, ok bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 2 {
		return "", name, false
	}
	return parts[0], parts[1], true
}

// FunctionsIn returns the functions of a namespace bucket.
func (s *ParsedSchema) FunctionsIn(namespace string) ([]FunctionDefinition, bool) {
	for i := range s.Functions {
		if s.Functions[i].Name == namespace {
			return s.Functions[i].Functions, true
		}
	}
	return nil, false
}

// TypeGroup returns the type group for a category name.
func (s *ParsedSchema) TypeGroup(category string) (*TypeGroup, bool) {
	for i := range s.Objects {
		if s.Objects[i].Name == category {
			return &s.Objects[i], true
		}
	}
	return nil, false
}

// FunctionNamespaceNames returns bucket keys in insertion order.
func (s *ParsedSchema) FunctionNamespaceNames() []string {
	names := make([]string, len(s.Functions))
	for i := range s.Functions {
		names[i] = s.Functions[i].Name
	}
	return names
}

// FindParameter returns the first parameter with the given name.
// Duplicate names are kept by the parser; lookups resolve to the first.
func FindParameter(params []Parameter, name string) (Parameter, bool) {
	for i := range params {
		if params[i].Name == name {
			return params[i], true
		}
	}
	return Parameter{}, false
}

// FieldDiff is a single field-level difference between two parameters.
type FieldDiff struct {
	Field string `json:"field_name"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Diff compares an older parameter against a newer one field by field.
// From carries the older value and To the newer one. It returns nil when
// nothing differs.
func (p Parameter) Diff(newer Parameter) []FieldDiff {
	var diffs []FieldDiff
	add := func(field, from, to string) {
		if from != to {
			diffs = append(diffs, FieldDiff{Field: field, From: from, To: to})
		}
	}

	add("name", p.Name, newer.Name)
	add("_type", p.Type, newer.Type)
	add("inner_type", p.InnerType, newer.InnerType)
	add("flag_name", p.FlagName, newer.FlagName)
	add("flag_offset", p.FlagOffset, newer.FlagOffset)
	add("is_generic", boolString(p.IsGeneric), boolString(newer.IsGeneric))
	add("is_optional", boolString(p.IsOptional), boolString(newer.IsOptional))
	add("is_flag_placeholder", boolString(p.IsFlagPlaceholder), boolString(newer.IsFlagPlaceholder))

	return diffs
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
