package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/tl"
)

// latestLayer selects the highest parsed layer.
const latestLayer = "latest"

var (
	layerJSON    bool
	layerCompact bool
)

var layersCmd = needsRuntime(&cobra.Command{
	Use:   "layers",
	Short: "List layers with their release dates",
	Long:  `Lists every parsed layer and its release month, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runLayers,
})

var layerCmd = needsRuntime(&cobra.Command{
	Use:   "layer [id|latest]",
	Short: "Show the types and namespaces of a layer",
	Long: `Summarises one layer: its release month, type names and namespaces.
Use --json for the full parsed schema, or --compact with --json for the
flattened definitions.`,
	Args: cobra.ExactArgs(1),
	RunE: runLayer,
})

var namespaceCmd = needsRuntime(&cobra.Command{
	Use:   "namespace [layer] [name]",
	Short: "List the functions and constructors of a namespace",
	Args:  cobra.ExactArgs(2),
	RunE:  runNamespace,
})

func init() {
	layersCmd.Flags().BoolVar(&layerJSON, "json", false, "output results as JSON")
	layerCmd.Flags().BoolVar(&layerJSON, "json", false, "output results as JSON")
	layerCmd.Flags().BoolVar(&layerCompact, "compact", false, "show compact definitions")
	namespaceCmd.Flags().BoolVar(&layerJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(layersCmd)
	rootCmd.AddCommand(layerCmd)
	rootCmd.AddCommand(namespaceCmd)
}

func runLayers(cmd *cobra.Command, _ []string) error {
	cat, err := catalogue()
	if err != nil {
		return err
	}

	dates := cat.ReleaseDates()
	if layerJSON {
		return outputJSON(cmd, dates)
	}
	if len(dates) == 0 {
		cmd.Println("No layers stored. Run 'tlscope ingest' first.")
		return nil
	}
	for _, d := range dates {
		cmd.Printf("  %4d  %s\n", d.LayerID, d.ReleaseDate.Format("2006-01"))
	}
	return nil
}

// parseLayerArg resolves a layer argument, accepting "latest".
func parseLayerArg(arg string) (int, error) {
	if strings.EqualFold(arg, latestLayer) {
		cat, err := catalogue()
		if err != nil {
			return 0, err
		}
		id, ok := cat.LatestLayerID()
		if !ok {
			return 0, fmt.Errorf("%w: no layers stored", domain.ErrNotFound)
		}
		return id, nil
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%w: layer must be a number or %q", domain.ErrInvalidInput, latestLayer)
	}
	if err := domain.ValidateLayerID(id, false); err != nil {
		return 0, err
	}
	return id, nil
}

func runLayer(cmd *cobra.Command, args []string) error {
	cat, err := catalogue()
	if err != nil {
		return err
	}
	id, err := parseLayerArg(args[0])
	if err != nil {
		return err
	}

	if layerCompact {
		defs, ok := cat.CompactLayer(id)
		if !ok {
			cmd.Printf("Layer %d not found.\n", id)
			return nil
		}
		if layerJSON {
			return outputJSON(cmd, defs)
		}
		for _, d := range defs {
			printCompact(cmd, d)
		}
		return nil
	}

	schema, ok := cat.Layer(id)
	if !ok {
		cmd.Printf("Layer %d not found.\n", id)
		return nil
	}
	if layerJSON {
		return outputJSON(cmd, schema)
	}

	constructors, functions := 0, 0
	for _, g := range schema.Objects {
		constructors += len(g.Constructors)
	}
	for _, ns := range schema.Functions {
		functions += len(ns.Functions)
	}

	cmd.Printf("Layer %d (%s)\n", schema.LayerID, schema.ReleaseDate.Format("2006-01"))
	cmd.Printf("  Types: %d (%d constructors)\n", len(schema.Objects), constructors)
	cmd.Printf("  Functions: %d\n", functions)
	for _, listing := range cat.Namespaces(id) {
		cmd.Printf("  Function namespaces: %s\n", strings.Join(listing.FunctionNamespaces, ", "))
		cmd.Printf("  Object namespaces: %s\n", strings.Join(listing.ObjectNamespaces, ", "))
	}
	return nil
}

func runNamespace(cmd *cobra.Command, args []string) error {
	cat, err := catalogue()
	if err != nil {
		return err
	}
	id, err := parseLayerArg(args[0])
	if err != nil {
		return err
	}
	q := domain.NamespaceQuery{LayerID: id, Namespace: strings.TrimSpace(args[1])}

	fns, hasFns := cat.NamespaceFunctions(q)
	ctors, hasCtors := cat.NamespaceObjects(q)
	if !hasFns && !hasCtors {
		cmd.Printf("Namespace %q not found in layer %d.\n", q.Namespace, id)
		return nil
	}

	if layerJSON {
		return outputJSON(cmd, struct {
			Functions []domain.FunctionDefinition `json:"functions"`
			Objects   []domain.Constructor        `json:"objects"`
		}{fns, ctors})
	}

	if hasFns {
		cmd.Println("Functions:")
		for _, fn := range fns {
			cmd.Printf("  %s\n", tl.FormatFunction(fn))
		}
	}
	if hasCtors {
		cmd.Println("Constructors:")
		for _, c := range ctors {
			cmd.Printf("  %s#%s\n", c.Name, c.ID)
		}
	}
	return nil
}
