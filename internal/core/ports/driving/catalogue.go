package driving

import (
	"context"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

// CatalogueService answers point-in-time and history queries over every
// ingested layer. All query methods are safe for concurrent use.
//
// Absence is never an error: unknown names, layers and namespaces produce
// empty results or a false ok value.
type CatalogueService interface {
	// Types looks up the constructors of a type group by category name.
	Types(q domain.ByNameQuery) domain.TypeResult

	// TypeNames lists type group names per layer.
	TypeNames(layerID int) []domain.TypeNames

	// Namespaces lists function and object namespaces per layer.
	Namespaces(layerID int) []domain.NamespaceListing

	// NamespaceFunctions resolves the functions of one namespace bucket.
	NamespaceFunctions(q domain.NamespaceQuery) ([]domain.FunctionDefinition, bool)

	// NamespaceObjects resolves the constructors of one object namespace.
	NamespaceObjects(q domain.NamespaceQuery) ([]domain.Constructor, bool)

	// Functions looks up every occurrence of a named function.
	Functions(q domain.ByNameQuery) domain.FunctionResult

	// Objects looks up every occurrence of a named constructor.
	// Full mode results carry usage edges.
	Objects(q domain.ByNameQuery) domain.ObjectResult

	// History reconstructs the changelog of a named entity.
	History(name string, kind domain.DefinitionKind) domain.HistoryResponse

	// Layer returns the parsed snapshot of one layer.
	Layer(layerID int) (domain.ParsedSchema, bool)

	// CompactLayer returns the compact projection of one layer.
	CompactLayer(layerID int) ([]domain.CompactDefinition, bool)

	// ReleaseDates lists the release date of every layer, newest first.
	ReleaseDates() []domain.LayerReleaseDate

	// LayerIDs lists the layer ids held by the durable store, ascending.
	LayerIDs(ctx context.Context) ([]int, error)

	// LatestLayerID returns the highest parsed layer id.
	LatestLayerID() (int, bool)
}
