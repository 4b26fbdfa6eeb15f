// Package domain defines the core entities of the layer catalogue.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawLayer: One version of the schema text as supplied by ingestion
//   - ParsedSchema: The structured catalogue of a single layer
//   - Constructor / FunctionDefinition / Parameter: parsed definitions
//   - CompactDefinition: Flattened per-occurrence projection used for search
//   - HistoryEvent: One inferred change between adjacent occurrences
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
