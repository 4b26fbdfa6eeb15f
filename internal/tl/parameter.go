package tl

import (
	"strings"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/logger"
)

const (
	flagPlaceholderType = "#"
	genericType         = "!X"
	flagsPrefix         = "flags"
)

// parseParameters parses "id name:type name:type ...".
// The first token is the combinator id.
func parseParameters(layerID int, text string) (string, []domain.Parameter) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return "", nil
	}

	id := tokens[0]
	params := make([]domain.Parameter, 0, len(tokens)-1)
	for _, tok := range tokens[1:] {
		p, ok := parseParameter(tok)
		if !ok {
			logger.Warn("layer %d: skipping parameter without ':' in %s: %q", layerID, id, tok)
			continue
		}
		params = append(params, p)
	}
	return id, params
}

// parseParameter parses a single "name:type" token.
func parseParameter(tok string) (domain.Parameter, bool) {
	name, typ, ok := strings.Cut(tok, ":")
	if !ok {
		return domain.Parameter{}, false
	}

	switch typ {
	case flagPlaceholderType:
		return domain.Parameter{Name: name, Type: typ, IsFlagPlaceholder: true}, true
	case genericType:
		return domain.Parameter{Name: name, Type: typ, IsGeneric: true}, true
	}

	if p, ok := parseFlagParameter(name, typ); ok {
		return p, true
	}

	return domain.Parameter{Name: name, Type: typ, InnerType: innerType(typ)}, true
}

// parseFlagParameter handles "flags.<offset>?<type>". Any other shape under
// the flags prefix falls back to a plain parameter.
func parseFlagParameter(name, typ string) (domain.Parameter, bool) {
	if !strings.HasPrefix(typ, flagsPrefix) {
		return domain.Parameter{}, false
	}
	flagName, rest, ok := strings.Cut(typ, ".")
	if !ok {
		return domain.Parameter{}, false
	}
	offset, inner, ok := strings.Cut(rest, "?")
	if !ok {
		return domain.Parameter{}, false
	}

	return domain.Parameter{
		Name:       name,
		Type:       inner,
		InnerType:  innerType(inner),
		FlagName:   flagName,
		FlagOffset: offset,
		IsOptional: true,
	}, true
}

// innerType extracts T from "Container<T>". Nested generics resolve to the
// innermost opening bracket.
func innerType(typ string) string {
	start := strings.LastIndex(typ, "<")
	if start < 0 {
		return ""
	}
	inner := typ[start+1:]
	if end := strings.Index(inner, ">"); end >= 0 {
		inner = inner[:end]
	}
	return inner
}
