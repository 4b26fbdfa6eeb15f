package services

import (
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/logger"
	"github.com/custodia-labs/tlscope/internal/tl"
)

// Registry owns every parsed layer, ascending by layer id, together with the
// compact definition list derived from them. It is immutable after
// construction and safe for concurrent reads.
type Registry struct {
	schemas []domain.ParsedSchema
	compact []domain.CompactDefinition
	byLayer map[int]int
}

// BuildRegistry parses every raw layer and builds a registry from the result.
func BuildRegistry(layers []domain.RawLayer) *Registry {
	logger.Section("Parsing Layers")
	schemas := make([]domain.ParsedSchema, 0, len(layers))
	for _, raw := range layers {
		schema := tl.Parse(raw)
		logger.Debug("layer %d: %d type groups, %d function namespaces",
			schema.LayerID, len(schema.Objects), len(schema.Functions))
		schemas = append(schemas, schema)
	}
	return NewRegistry(schemas)
}

// NewRegistry builds a registry from already parsed layers.
// Duplicate layer ids keep the first schema supplied.
func NewRegistry(schemas []domain.ParsedSchema) *Registry {
	sorted := make([]domain.ParsedSchema, 0, len(schemas))
	byLayer := make(map[int]int, len(schemas))

	ordered := slices.Clone(schemas)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].LayerID < ordered[j].LayerID
	})
	for _, s := range ordered {
		if _, dup := byLayer[s.LayerID]; dup {
			logger.Warn("layer %d supplied twice, keeping the first", s.LayerID)
			continue
		}
		byLayer[s.LayerID] = len(sorted)
		sorted = append(sorted, s)
	}

	return &Registry{
		schemas: sorted,
		compact: compactDefinitions(sorted),
		byLayer: byLayer,
	}
}

// compactDefinitions flattens every function and constructor occurrence.
// Identifiers are fresh on every build.
func compactDefinitions(schemas []domain.ParsedSchema) []domain.CompactDefinition {
	var defs []domain.CompactDefinition
	for i := range schemas {
		s := &schemas[i]
		for _, ns := range s.Functions {
			for _, fn := range ns.Functions {
				defs = append(defs, domain.CompactDefinition{
					ID:           uuid.NewString(),
					LayerID:      s.LayerID,
					DefinitionID: fn.ID,
					Name:         fn.Name,
					Namespace:    ns.Name,
					ReturnType:   fn.ReturnType,
					Kind:         domain.KindFunction,
				})
			}
		}
		for _, group := range s.Objects {
			for _, ctor := range group.Constructors {
				defs = append(defs, domain.CompactDefinition{
					ID:           uuid.NewString(),
					LayerID:      s.LayerID,
					DefinitionID: ctor.ID,
					Name:         ctor.Name,
					Namespace:    group.Name,
					Kind:         domain.KindObject,
				})
			}
		}
	}
	return defs
}

// ==================== Layers ====================

// Len returns the number of parsed layers.
func (r *Registry) Len() int {
	return len(r.schemas)
}

// LayerIDs returns the parsed layer ids, ascending.
func (r *Registry) LayerIDs() []int {
	ids := make([]int, len(r.schemas))
	for i := range r.schemas {
		ids[i] = r.schemas[i].LayerID
	}
	return ids
}

// LatestLayerID returns the highest layer id.
func (r *Registry) LatestLayerID() (int, bool) {
	if len(r.schemas) == 0 {
		return 0, false
	}
	return r.schemas[len(r.schemas)-1].LayerID, true
}

// Layer returns one layer's snapshot. The returned value shares its slices
// with the registry and must not be modified.
func (r *Registry) Layer(layerID int) (domain.ParsedSchema, bool) {
	i, ok := r.byLayer[layerID]
	if !ok {
		return domain.ParsedSchema{}, false
	}
	return r.schemas[i], true
}

// CompactLayer returns the compact definitions of one layer.
func (r *Registry) CompactLayer(layerID int) ([]domain.CompactDefinition, bool) {
	if _, ok := r.byLayer[layerID]; !ok {
		return nil, false
	}
	var defs []domain.CompactDefinition
	for _, d := range r.compact {
		if d.LayerID == layerID {
			defs = append(defs, d)
		}
	}
	return defs, true
}

// CompactDefinitions returns a copy of the full compact definition list.
func (r *Registry) CompactDefinitions() []domain.CompactDefinition {
	return slices.Clone(r.compact)
}

// ReleaseDates lists every layer's release date, ascending by layer id.
func (r *Registry) ReleaseDates() []domain.LayerReleaseDate {
	dates := make([]domain.LayerReleaseDate, len(r.schemas))
	for i := range r.schemas {
		dates[i] = domain.LayerReleaseDate{
			LayerID:     r.schemas[i].LayerID,
			ReleaseDate: r.schemas[i].ReleaseDate,
		}
	}
	return dates
}

// scope returns the schemas a query addresses. An unknown layer id scopes
// to nothing.
func (r *Registry) scope(layerID int) []domain.ParsedSchema {
	if layerID == domain.AllLayers {
		return r.schemas
	}
	i, ok := r.byLayer[layerID]
	if !ok {
		return nil
	}
	return r.schemas[i : i+1]
}

// ==================== Types and Namespaces ====================

// Types looks up a type group by category name. In compact mode the limit
// caps constructors per layer; in full mode it caps the number of layers.
func (r *Registry) Types(q domain.ByNameQuery) domain.TypeResult {
	limit := domain.ClampLimit(q.Limit, domain.DefaultQueryLimit, domain.MaxQueryLimit)
	result := domain.TypeResult{Mode: modeOrDefault(q.Mode)}

	schemas := r.scope(q.LayerID)
	for i := range schemas {
		s := &schemas[i]
		group, ok := s.TypeGroup(q.Name)
		if !ok {
			continue
		}

		if result.Mode == domain.FetchFull {
			if len(result.Full) >= limit {
				break
			}
			result.Full = append(result.Full, domain.TypeLookup{
				LayerID:      s.LayerID,
				Constructors: group.Constructors,
			})
			continue
		}

		n := min(limit, len(group.Constructors))
		refs := make([]domain.ConstructorRef, n)
		for j := 0; j < n; j++ {
			refs[j] = domain.ConstructorRef{ID: group.Constructors[j].ID, Name: group.Constructors[j].Name}
		}
		result.Compact = append(result.Compact, domain.TypeLookupCompact{LayerID: s.LayerID, Objects: refs})
	}

	return result
}

// TypeNames lists type group names per layer.
func (r *Registry) TypeNames(layerID int) []domain.TypeNames {
	schemas := r.scope(layerID)
	out := make([]domain.TypeNames, 0, len(schemas))
	for i := range schemas {
		names := make([]string, len(schemas[i].Objects))
		for j, g := range schemas[i].Objects {
			names[j] = g.Name
		}
		out = append(out, domain.TypeNames{LayerID: schemas[i].LayerID, Types: names})
	}
	return out
}

// Namespaces lists function and object namespaces per layer. Object
// namespaces are deduplicated and sorted.
func (r *Registry) Namespaces(layerID int) []domain.NamespaceListing {
	schemas := r.scope(layerID)
	out := make([]domain.NamespaceListing, 0, len(schemas))
	for i := range schemas {
		s := &schemas[i]
		seen := make(map[string]struct{})
		objectNS := make([]string, 0)
		for _, g := range s.Objects {
			for _, c := range g.Constructors {
				if c.Namespace == "" {
					continue
				}
				if _, ok := seen[c.Namespace]; ok {
					continue
				}
				seen[c.Namespace] = struct{}{}
				objectNS = append(objectNS, c.Namespace)
			}
		}
		sort.Strings(objectNS)

		out = append(out, domain.NamespaceListing{
			LayerID:            s.LayerID,
			FunctionNamespaces: s.FunctionNamespaceNames(),
			ObjectNamespaces:   objectNS,
		})
	}
	return out
}

// NamespaceFunctions resolves one function namespace bucket of one layer.
func (r *Registry) NamespaceFunctions(q domain.NamespaceQuery) ([]domain.FunctionDefinition, bool) {
	s, ok := r.Layer(q.LayerID)
	if !ok {
		return nil, false
	}
	return s.FunctionsIn(q.Namespace)
}

// NamespaceObjects resolves the constructors of one object namespace of one
// layer. An empty namespace is reported as absent.
func (r *Registry) NamespaceObjects(q domain.NamespaceQuery) ([]domain.Constructor, bool) {
	s, ok := r.Layer(q.LayerID)
	if !ok {
		return nil, false
	}
	var ctors []domain.Constructor
	for _, g := range s.Objects {
		for _, c := range g.Constructors {
			if c.Namespace == q.Namespace {
				ctors = append(ctors, c)
			}
		}
	}
	return ctors, len(ctors) > 0
}

// ==================== Occurrences ====================

// FunctionOccurrences returns every occurrence of a named function,
// ascending by layer. A non-positive limit means no cap.
func (r *Registry) FunctionOccurrences(name string, layerID, limit int) []domain.FunctionOccurrence {
	var out []domain.FunctionOccurrence
	schemas := r.scope(layerID)
	for i := range schemas {
		for _, ns := range schemas[i].Functions {
			for _, fn := range ns.Functions {
				if fn.Name != name {
					continue
				}
				if limit > 0 && len(out) >= limit {
					return out
				}
				out = append(out, domain.FunctionOccurrence{LayerID: schemas[i].LayerID, Function: fn})
			}
		}
	}
	return out
}

// ObjectOccurrences returns every occurrence of a named constructor with
// its usage edges, ascending by layer. A non-positive limit means no cap.
func (r *Registry) ObjectOccurrences(name string, layerID, limit int) []domain.ObjectOccurrence {
	var out []domain.ObjectOccurrence
	schemas := r.scope(layerID)
	for i := range schemas {
		s := &schemas[i]
		for _, g := range s.Objects {
			for _, ctor := range g.Constructors {
				if ctor.Name != name {
					continue
				}
				if limit > 0 && len(out) >= limit {
					return out
				}
				out = append(out, domain.ObjectOccurrence{
					LayerID:  s.LayerID,
					Category: g.Name,
					Object:   ctor,
					Usages:   usages(s, g.Name, ctor.Name),
				})
			}
		}
	}
	return out
}

// Functions looks up a named function in compact or full projection.
func (r *Registry) Functions(q domain.ByNameQuery) domain.FunctionResult {
	limit := domain.ClampLimit(q.Limit, domain.DefaultQueryLimit, domain.MaxQueryLimit)
	if q.Mode == domain.FetchFull {
		return domain.FunctionResult{Mode: q.Mode, Full: r.FunctionOccurrences(q.Name, q.LayerID, limit)}
	}
	return domain.FunctionResult{Mode: domain.FetchCompact, Compact: r.compactByName(q.Name, domain.KindFunction, q.LayerID, limit)}
}

// Objects looks up a named constructor in compact or full projection.
func (r *Registry) Objects(q domain.ByNameQuery) domain.ObjectResult {
	limit := domain.ClampLimit(q.Limit, domain.DefaultQueryLimit, domain.MaxQueryLimit)
	if q.Mode == domain.FetchFull {
		return domain.ObjectResult{Mode: q.Mode, Full: r.ObjectOccurrences(q.Name, q.LayerID, limit)}
	}
	return domain.ObjectResult{Mode: domain.FetchCompact, Compact: r.compactByName(q.Name, domain.KindObject, q.LayerID, limit)}
}

func (r *Registry) compactByName(name string, kind domain.DefinitionKind, layerID, limit int) []domain.CompactDefinition {
	var out []domain.CompactDefinition
	for _, d := range r.compact {
		if d.Name != name || d.Kind != kind {
			continue
		}
		if layerID != domain.AllLayers && d.LayerID != layerID {
			continue
		}
		out = append(out, d)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func modeOrDefault(m domain.FetchMode) domain.FetchMode {
	if m == domain.FetchFull {
		return m
	}
	return domain.FetchCompact
}
