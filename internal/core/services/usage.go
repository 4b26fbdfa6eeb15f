package services

import "github.com/custodia-labs/tlscope/internal/core/domain"

// usages scans every function of a layer for references to an object.
//
// A type that equals the object's category is a reference via namespace and
// takes precedence over a direct match on the object name. Return types and
// parameter types are checked on both the inner generic type and the full
// type string, so one function can yield several edges.
func usages(s *domain.ParsedSchema, category, name string) []domain.ObjectUsage {
	edges := make([]domain.ObjectUsage, 0)
	for _, ns := range s.Functions {
		for _, fn := range ns.Functions {
			edges = appendEdge(edges, fn, fn.InnerReturnType, true, domain.UsageReturnType, category, name)
			edges = appendEdge(edges, fn, fn.ReturnType, false, domain.UsageReturnType, category, name)

			for _, p := range fn.Parameters {
				edges = appendEdge(edges, fn, p.InnerType, true, domain.UsageParam, category, name)
				edges = appendEdge(edges, fn, p.Type, false, domain.UsageParam, category, name)
			}
		}
	}
	return edges
}

func appendEdge(
	edges []domain.ObjectUsage,
	fn domain.FunctionDefinition,
	typ string,
	inner bool,
	direct domain.UsageKind,
	category, name string,
) []domain.ObjectUsage {
	switch {
	case typ == "":
		return edges
	case typ == category:
		return append(edges, domain.ObjectUsage{Kind: domain.UsageViaNamespace, Function: fn, IsInner: inner})
	case typ == name:
		return append(edges, domain.ObjectUsage{Kind: direct, Function: fn, IsInner: inner})
	default:
		return edges
	}
}
