package tl

import (
	"strings"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/logger"
)

// Section markers of the layer text.
const (
	apiMarker       = "///////// Main application API"
	typesMarker     = "---types---"
	functionsMarker = "---functions---"
	commentPrefix   = "//"
)

// ignoredDefinitions are primitives defined by convention rather than parsed.
var ignoredDefinitions = map[string]struct{}{
	"boolFalse": {},
	"boolTrue":  {},
	"true":      {},
	"error":     {},
	"vector":    {},
	"null":      {},
}

// Parse converts one raw layer into its structured catalogue.
func Parse(raw domain.RawLayer) domain.ParsedSchema {
	objectBlock, functionBlock := split(raw.Text)

	return domain.ParsedSchema{
		LayerID:     raw.LayerID,
		ReleaseDate: raw.ReleaseDate(),
		Objects:     parseObjects(raw.LayerID, objectBlock),
		Functions:   parseFunctions(raw.LayerID, functionBlock),
	}
}

// split runs the preprocessing steps and returns the object and function
// blocks as line slices.
func split(text string) (objects, functions []string) {
	kept := make([]string, 0, strings.Count(text, "\n")+1)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || isIgnored(line) {
			continue
		}
		kept = append(kept, line)
	}

	// Everything before the API marker belongs to the transport sub-language.
	joined := strings.Join(kept, "\n")
	if idx := strings.Index(joined, apiMarker); idx >= 0 {
		joined = joined[idx+len(apiMarker):]
	}

	body := make([]string, 0, len(kept))
	for _, line := range strings.Split(joined, "\n") {
		if strings.HasPrefix(line, commentPrefix) {
			continue
		}
		body = append(body, strings.ReplaceAll(line, typesMarker, ""))
	}

	for i, line := range body {
		if idx := strings.Index(line, functionsMarker); idx >= 0 {
			objects = append(body[:i:i], line[:idx])
			functions = append([]string{line[idx+len(functionsMarker):]}, body[i+1:]...)
			return objects, functions
		}
	}
	return body, nil
}

// isIgnored reports whether the definition name is a built-in primitive.
func isIgnored(line string) bool {
	name := strings.TrimSpace(line)
	if end := strings.IndexAny(name, "# "); end >= 0 {
		name = name[:end]
	}
	_, ok := ignoredDefinitions[name]
	return ok
}

// definition is the shared shape of an object or function line.
type definition struct {
	name   string
	id     string
	params []domain.Parameter
	result string
}

// parseDefinition splits "<name>#<param-text> = <result>;".
func parseDefinition(layerID int, line string) (definition, bool) {
	lhs, rhs, ok := strings.Cut(line, "=")
	if !ok {
		logger.Warn("layer %d: skipping line without '=': %q", layerID, line)
		return definition{}, false
	}

	name, paramText, _ := strings.Cut(lhs, "#")
	id, params := parseParameters(layerID, paramText)

	return definition{
		name:   strings.TrimSpace(name),
		id:     id,
		params: params,
		result: strings.TrimSpace(strings.ReplaceAll(rhs, ";", "")),
	}, true
}

// parseObjects groups constructors by category in first-seen order.
func parseObjects(layerID int, lines []string) []domain.TypeGroup {
	groups := make([]domain.TypeGroup, 0)
	index := make(map[string]int)

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		def, ok := parseDefinition(layerID, line)
		if !ok {
			continue
		}

		ctor := domain.Constructor{
			ID:         def.id,
			Name:       def.name,
			Parameters: def.params,
		}
		if ns, _, ok := domain.SplitName(def.name); ok {
			ctor.Namespace = ns
		}

		i, seen := index[def.result]
		if !seen {
			i = len(groups)
			index[def.result] = i
			groups = append(groups, domain.TypeGroup{Name: def.result})
		}
		groups[i].Constructors = append(groups[i].Constructors, ctor)
	}

	return groups
}

// parseFunctions buckets functions by namespace, then moves every function
// whose bucket holds only itself into the Others bucket.
func parseFunctions(layerID int, lines []string) []domain.FunctionNamespace {
	buckets := make([]domain.FunctionNamespace, 0)
	index := make(map[string]int)

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		def, ok := parseDefinition(layerID, line)
		if !ok {
			continue
		}

		fn := domain.FunctionDefinition{
			ID:              def.id,
			Name:            def.name,
			Parameters:      def.params,
			ReturnType:      def.result,
			InnerReturnType: innerType(def.result),
		}

		key := def.name
		if ns, _, ok := domain.SplitName(def.name); ok {
			key = ns
		}

		i, seen := index[key]
		if !seen {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, domain.FunctionNamespace{Name: key})
		}
		buckets[i].Functions = append(buckets[i].Functions, fn)
	}

	return collectSingles(buckets)
}

func collectSingles(buckets []domain.FunctionNamespace) []domain.FunctionNamespace {
	kept := make([]domain.FunctionNamespace, 0, len(buckets))
	var singles []domain.FunctionDefinition
	others := -1

	for _, b := range buckets {
		if len(b.Functions) == 1 {
			singles = append(singles, b.Functions[0])
			continue
		}
		if b.Name == domain.OthersNamespace {
			others = len(kept)
		}
		kept = append(kept, b)
	}

	if len(singles) == 0 {
		return kept
	}
	if others >= 0 {
		kept[others].Functions = append(kept[others].Functions, singles...)
		return kept
	}
	return append(kept, domain.FunctionNamespace{Name: domain.OthersNamespace, Functions: singles})
}
