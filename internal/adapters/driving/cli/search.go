package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

var (
	searchLimit     int
	searchJSON      bool
	searchLayer     int
	searchKind      string
	searchAttrs     []string
	searchHighlight bool
)

// Terminal highlight tags.
const (
	highlightPrefix  = "\x1b[1m"
	highlightPostfix = "\x1b[0m"
)

var searchCmd = needsRuntime(&cobra.Command{
	Use:   "search [query]",
	Short: "Search functions and constructors",
	Long: `Performs ranked search across the compact definitions of every layer.
Matches substrings of the name, namespace, return type and definition id;
restrict to some of them with --attr.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
})

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().IntVarP(&searchLayer, "layer", "l", domain.AllLayers, "restrict to one layer")
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", "", "function or object")
	searchCmd.Flags().StringSliceVar(&searchAttrs, "attr", nil, "attributes to search (name, namespace, return_type, definition_id)")
	searchCmd.Flags().BoolVar(&searchHighlight, "highlight", false, "highlight matches")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if deps == nil || deps.Search == nil {
		return domain.ErrSearchUnavailable
	}
	if err := domain.ValidateLayerID(searchLayer, true); err != nil {
		return err
	}

	query := domain.SearchQuery{
		Query:      args[0],
		LayerID:    searchLayer,
		Attributes: searchAttrs,
		Limit:      searchLimit,
		Highlight:  searchHighlight,
	}
	if searchHighlight && !searchJSON && isTerminal(cmd.OutOrStdout()) && !noColor {
		query.HighlightPrefix, query.HighlightPostfix = highlightPrefix, highlightPostfix
	} else if searchHighlight {
		query.HighlightPrefix, query.HighlightPostfix = "[", "]"
	}
	if searchKind != "" {
		kind, err := domain.ParseDefinitionKind(searchKind)
		if err != nil {
			return fmt.Errorf("%w: kind must be function or object", err)
		}
		query.Kind = kind
	}

	resp, err := deps.Search.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, resp)
	}
	return outputSearchTable(cmd, resp)
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.Hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%d of %d in %s):\n", len(resp.Hits), resp.TotalHits, resp.ProcessingTime)
	cmd.Println()
	for i, hit := range resp.Hits {
		d := hit.Definition
		name := d.Name
		if formatted, ok := hit.Formatted[domain.AttrName]; ok {
			name = formatted
		}

		// Format: [N] name#id (Kind, layer L) score
		cmd.Printf("  [%d] %s#%s (%s, layer %d) %.2f\n", i+1, name, d.DefinitionID, d.Kind, d.LayerID, hit.Score)
		if d.ReturnType != "" {
			cmd.Printf("      returns %s\n", d.ReturnType)
		}
	}
	return nil
}
