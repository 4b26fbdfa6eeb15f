package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driven"
)

// minTrigramTerm is the shortest term the trigram tokenizer can match.
// Shorter terms fall back to a LIKE scan.
const minTrigramTerm = 3

// Highlightable columns of definitions_fts and their column index.
var highlightColumns = []struct {
	attr  string
	index int
}{
	{domain.AttrName, 3},
	{domain.AttrNamespace, 4},
	{domain.AttrReturnType, 5},
	{domain.AttrDefinitionID, 6},
}

const searchColumns = "id, layer_id, definition_type, name, namespace, return_type, definition_id"

// searchIndex implements driven.SearchIndex over an FTS5 table.
type searchIndex struct {
	store *Store
}

var _ driven.SearchIndex = (*searchIndex)(nil)

// Replace swaps the index contents in a single transaction.
func (s *searchIndex) Replace(ctx context.Context, defs []domain.CompactDefinition) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting index transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM definitions_fts"); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO definitions_fts ("+searchColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing index insert: %w", err)
	}
	defer stmt.Close()

	for i := range defs {
		d := &defs[i]
		if _, err := stmt.ExecContext(ctx, d.ID, d.LayerID, string(d.Kind),
			d.Name, d.Namespace, d.ReturnType, d.DefinitionID); err != nil {
			return fmt.Errorf("indexing %s: %w", d.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO search_meta (key, value) VALUES ('populated_at', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("recording index state: %w", err)
	}

	return tx.Commit()
}

// Search runs a ranked query. Terms of three or more characters use the
// trigram index with bm25 ranking; shorter terms use a substring scan.
func (s *searchIndex) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error) {
	start := time.Now()

	terms := strings.Fields(query.Query)
	attrs := query.Attributes
	if len(attrs) == 0 {
		attrs = domain.SearchableAttributes
	}

	useFTS := len(terms) > 0
	for _, t := range terms {
		if utf8.RuneCountInString(t) < minTrigramTerm {
			useFTS = false
			break
		}
	}

	var where []string
	var whereArgs []any
	if useFTS {
		where = append(where, "definitions_fts MATCH ?")
		whereArgs = append(whereArgs, matchExpression(terms, attrs))
	} else {
		for _, t := range terms {
			var ors []string
			for _, a := range attrs {
				ors = append(ors, a+` LIKE ? ESCAPE '\'`)
				whereArgs = append(whereArgs, "%"+escapeLike(t)+"%")
			}
			where = append(where, "("+strings.Join(ors, " OR ")+")")
		}
	}
	if query.LayerID != domain.AllLayers {
		where = append(where, "layer_id = ?")
		whereArgs = append(whereArgs, query.LayerID)
	}
	if query.Kind != "" {
		where = append(where, "definition_type = ?")
		whereArgs = append(whereArgs, string(query.Kind))
	}
	if len(where) == 0 {
		where = append(where, "1 = 1")
	}
	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM definitions_fts WHERE "+whereSQL, whereArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting hits: %w", err)
	}

	var selectArgs []any
	var sel strings.Builder
	sel.WriteString("SELECT " + searchColumns)
	if useFTS {
		sel.WriteString(", bm25(definitions_fts)")
	} else {
		sel.WriteString(", CASE WHEN name = ? COLLATE NOCASE THEN 1.0 WHEN name LIKE ? ESCAPE '\\' THEN 0.75 ELSE 0.5 END")
		selectArgs = append(selectArgs, query.Query, escapeLike(query.Query)+"%")
	}
	highlightFTS := query.Highlight && useFTS
	if highlightFTS {
		for _, c := range highlightColumns {
			fmt.Fprintf(&sel, ", highlight(definitions_fts, %d, ?, ?)", c.index)
			selectArgs = append(selectArgs, query.HighlightPrefix, query.HighlightPostfix)
		}
	}
	sel.WriteString(" FROM definitions_fts WHERE " + whereSQL)
	if useFTS {
		sel.WriteString(" ORDER BY bm25(definitions_fts), name")
	} else {
		sel.WriteString(" ORDER BY 8 DESC, name")
	}
	sel.WriteString(" LIMIT ?")

	args := slices.Concat(selectArgs, whereArgs, []any{query.Limit})
	rows, err := s.store.db.QueryContext(ctx, sel.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	hits := []domain.SearchHit{}
	for rows.Next() {
		var hit domain.SearchHit
		var kind string
		var rank float64
		dest := []any{&hit.Definition.ID, &hit.Definition.LayerID, &kind, &hit.Definition.Name,
			&hit.Definition.Namespace, &hit.Definition.ReturnType, &hit.Definition.DefinitionID, &rank}
		formatted := make([]sql.NullString, len(highlightColumns))
		if highlightFTS {
			for i := range formatted {
				dest = append(dest, &formatted[i])
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hit.Definition.Kind = domain.DefinitionKind(kind)

		if useFTS {
			hit.Score = normaliseRank(rank)
		} else {
			hit.Score = rank
		}

		switch {
		case highlightFTS:
			hit.Formatted = make(map[string]string, len(highlightColumns))
			for i, c := range highlightColumns {
				hit.Formatted[c.attr] = formatted[i].String
			}
		case query.Highlight:
			hit.Formatted = highlightFields(&hit.Definition, terms, query.HighlightPrefix, query.HighlightPostfix)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}

	return &domain.SearchResponse{
		Hits:           hits,
		ProcessingTime: time.Since(start),
		TotalHits:      total,
		Query:          query.Query,
	}, nil
}

// FilterableAttributes lists the fields Search accepts filters on.
func (s *searchIndex) FilterableAttributes(_ context.Context) ([]string, error) {
	return slices.Clone(domain.FilterableAttributes), nil
}

// Ready reports whether Replace has completed at least once.
func (s *searchIndex) Ready(ctx context.Context) (bool, error) {
	var populated string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT value FROM search_meta WHERE key = 'populated_at'").Scan(&populated)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading index state: %w", err)
	}
	return true, nil
}

// Close is a no-op; the connection belongs to the Store.
func (s *searchIndex) Close() error {
	return nil
}

// matchExpression builds an FTS5 query that requires every term, each as
// a quoted phrase limited to the given columns.
func matchExpression(terms, attrs []string) string {
	filter := "{" + strings.Join(attrs, " ") + "} : "
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = filter + `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(parts, " AND ")
}

// normaliseRank maps a bm25 value (lower is better) into [0, 1).
func normaliseRank(rank float64) float64 {
	s := -rank
	if s <= 0 {
		return 0
	}
	return s / (1 + s)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func highlightFields(d *domain.CompactDefinition, terms []string, pre, post string) map[string]string {
	values := map[string]string{
		domain.AttrName:         d.Name,
		domain.AttrNamespace:    d.Namespace,
		domain.AttrReturnType:   d.ReturnType,
		domain.AttrDefinitionID: d.DefinitionID,
	}
	for k, v := range values {
		values[k] = highlightTerms(v, terms, pre, post)
	}
	return values
}

// highlightTerms wraps every case-insensitive occurrence of terms in value.
// Overlapping matches are merged.
func highlightTerms(value string, terms []string, pre, post string) string {
	lower := strings.ToLower(value)
	if len(lower) != len(value) {
		return value
	}

	type span struct{ from, to int }
	var spans []span
	for _, t := range terms {
		t = strings.ToLower(t)
		if t == "" {
			continue
		}
		for off := 0; ; {
			i := strings.Index(lower[off:], t)
			if i < 0 {
				break
			}
			spans = append(spans, span{off + i, off + i + len(t)})
			off += i + 1
		}
	}
	if len(spans) == 0 {
		return value
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].from < spans[j].from })
	merged := spans[:1]
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.from <= last.to {
			last.to = max(last.to, sp.to)
			continue
		}
		merged = append(merged, sp)
	}

	var b strings.Builder
	prev := 0
	for _, sp := range merged {
		b.WriteString(value[prev:sp.from])
		b.WriteString(pre)
		b.WriteString(value[sp.from:sp.to])
		b.WriteString(post)
		prev = sp.to
	}
	b.WriteString(value[prev:])
	return b.String()
}
