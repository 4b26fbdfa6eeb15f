package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

func testDefinitions() []domain.CompactDefinition {
	return []domain.CompactDefinition{
		{ID: "a", LayerID: 1, DefinitionID: "123", Name: "messages.sendMessage", Namespace: "messages", ReturnType: "Updates", Kind: domain.KindFunction},
		{ID: "b", LayerID: 2, DefinitionID: "124", Name: "messages.sendMessage", Namespace: "messages", ReturnType: "Updates", Kind: domain.KindFunction},
		{ID: "c", LayerID: 2, DefinitionID: "200", Name: "messages.getHistory", Namespace: "messages", ReturnType: "messages.Messages", Kind: domain.KindFunction},
		{ID: "d", LayerID: 2, DefinitionID: "301", Name: "message", Namespace: "Message", Kind: domain.KindObject},
		{ID: "e", LayerID: 2, DefinitionID: "302", Name: "user", Namespace: "User", Kind: domain.KindObject},
		{ID: "f", LayerID: 2, DefinitionID: "400", Name: "upload.getFile", Namespace: "upload", ReturnType: "upload.File", Kind: domain.KindFunction},
	}
}

func setupSearchIndex(t *testing.T) (*searchIndex, func()) {
	t.Helper()
	store, cleanup := setupTestStore(t)
	idx := &searchIndex{store: store}
	require.NoError(t, idx.Replace(context.Background(), testDefinitions()))
	return idx, cleanup
}

func hitIDs(resp *domain.SearchResponse) []string {
	ids := make([]string, len(resp.Hits))
	for i, h := range resp.Hits {
		ids[i] = h.Definition.ID
	}
	return ids
}

func TestSearchIndex_Ready(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	idx := store.SearchIndex()

	ready, err := idx.Ready(ctx)
	require.NoError(t, err)
	assert.False(t, ready)

	require.NoError(t, idx.Replace(ctx, nil))

	ready, err = idx.Ready(ctx)
	require.NoError(t, err)
	assert.True(t, ready)
}

func TestSearchIndex_ReplaceSwapsContents(t *testing.T) {
	idx, cleanup := setupSearchIndex(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, idx.Replace(ctx, testDefinitions()[4:5]))

	resp, err := idx.Search(ctx, domain.SearchQuery{Query: "message", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, resp.Hits)
	assert.Equal(t, 0, resp.TotalHits)

	resp, err = idx.Search(ctx, domain.SearchQuery{Query: "user", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, hitIDs(resp))
}

func TestSearchIndex_SubstringMatch(t *testing.T) {
	idx, cleanup := setupSearchIndex(t)
	defer cleanup()

	resp, err := idx.Search(context.Background(), domain.SearchQuery{Query: "SENDmess", Limit: 10})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, hitIDs(resp))
	assert.Equal(t, 2, resp.TotalHits)
	assert.Equal(t, "SENDmess", resp.Query)
	for _, h := range resp.Hits {
		assert.Greater(t, h.Score, 0.0)
		assert.Less(t, h.Score, 1.0)
		assert.Nil(t, h.Formatted)
	}
}

func TestSearchIndex_Filters(t *testing.T) {
	idx, cleanup := setupSearchIndex(t)
	defer cleanup()

	ctx := context.Background()

	resp, err := idx.Search(ctx, domain.SearchQuery{Query: "sendMessage", LayerID: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, hitIDs(resp))

	resp, err = idx.Search(ctx, domain.SearchQuery{Query: "message", Kind: domain.KindObject, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, hitIDs(resp))
	assert.Equal(t, domain.KindObject, resp.Hits[0].Definition.Kind)
}

func TestSearchIndex_AttributeRestriction(t *testing.T) {
	idx, cleanup := setupSearchIndex(t)
	defer cleanup()

	ctx := context.Background()

	// "File" only appears in upload.getFile's name and its return type.
	resp, err := idx.Search(ctx, domain.SearchQuery{
		Query: "upload.File", Attributes: []string{domain.AttrReturnType}, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, hitIDs(resp))

	resp, err = idx.Search(ctx, domain.SearchQuery{
		Query: "upload.File", Attributes: []string{domain.AttrName}, Limit: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Hits)
}

func TestSearchIndex_DefinitionID(t *testing.T) {
	idx, cleanup := setupSearchIndex(t)
	defer cleanup()

	resp, err := idx.Search(context.Background(), domain.SearchQuery{
		Query: "302", Attributes: []string{domain.AttrDefinitionID}, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "user", resp.Hits[0].Definition.Name)
}

func TestSearchIndex_Limit(t *testing.T) {
	idx, cleanup := setupSearchIndex(t)
	defer cleanup()

	resp, err := idx.Search(context.Background(), domain.SearchQuery{Query: "messages", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Hits, 1)
	assert.Equal(t, 3, resp.TotalHits)
}

func TestSearchIndex_Highlight(t *testing.T) {
	idx, cleanup := setupSearchIndex(t)
	defer cleanup()

	resp, err := idx.Search(context.Background(), domain.SearchQuery{
		Query: "getFile", Limit: 10,
		Highlight: true, HighlightPrefix: "<b>", HighlightPostfix: "</b>",
	})
	require.NoError(t, err)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "upload.<b>getFile</b>", resp.Hits[0].Formatted[domain.AttrName])
	assert.Equal(t, "upload", resp.Hits[0].Formatted[domain.AttrNamespace])
}

func TestSearchIndex_ShortTermFallback(t *testing.T) {
	idx, cleanup := setupSearchIndex(t)
	defer cleanup()

	resp, err := idx.Search(context.Background(), domain.SearchQuery{
		Query: "us", Limit: 10,
		Highlight: true, HighlightPrefix: "[", HighlightPostfix: "]",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"e"}, hitIDs(resp))
	assert.Equal(t, 0.75, resp.Hits[0].Score)
	assert.Equal(t, "[us]er", resp.Hits[0].Formatted[domain.AttrName])
	assert.Equal(t, "[Us]er", resp.Hits[0].Formatted[domain.AttrNamespace])
}

func TestSearchIndex_ShortTermEscapesWildcards(t *testing.T) {
	idx, cleanup := setupSearchIndex(t)
	defer cleanup()

	resp, err := idx.Search(context.Background(), domain.SearchQuery{Query: "%", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, resp.Hits)
}

func TestSearchIndex_FilterableAttributes(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	attrs, err := store.SearchIndex().FilterableAttributes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FilterableAttributes, attrs)
}

func TestMatchExpression(t *testing.T) {
	got := matchExpression([]string{"send", `a"b`}, []string{"name", "namespace"})
	assert.Equal(t, `{name namespace} : "send" AND {name namespace} : "a""b"`, got)
}

func TestNormaliseRank(t *testing.T) {
	assert.Equal(t, 0.0, normaliseRank(0))
	assert.Equal(t, 0.0, normaliseRank(2))
	assert.InDelta(t, 0.5, normaliseRank(-1), 1e-9)
	assert.InDelta(t, 0.9, normaliseRank(-9), 1e-9)
}

func TestHighlightTerms(t *testing.T) {
	tests := []struct {
		name  string
		value string
		terms []string
		want  string
	}{
		{"no match", "user", []string{"zz"}, "user"},
		{"case insensitive", "getUser", []string{"user"}, "get<User>"},
		{"multiple occurrences", "aXa", []string{"a"}, "<a>X<a>"},
		{"overlapping merged", "abcd", []string{"abc", "bcd"}, "<abcd>"},
		{"empty value", "", []string{"a"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, highlightTerms(tt.value, tt.terms, "<", ">"))
		})
	}
}
