package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/tl"
)

var (
	lookupLayer int
	lookupFull  bool
	lookupLimit int
	lookupJSON  bool
)

var functionCmd = needsRuntime(&cobra.Command{
	Use:   "function [name]",
	Short: "Look up a function by name",
	Long: `Lists every occurrence of a function, oldest layer first.
Use --layer to look at a single layer and --full for parameters.`,
	Args: cobra.ExactArgs(1),
	RunE: runFunction,
})

var objectCmd = needsRuntime(&cobra.Command{
	Use:   "object [name]",
	Short: "Look up a constructor by name",
	Long: `Lists every occurrence of a constructor, oldest layer first.
With --full each occurrence also lists the functions that use it.`,
	Args: cobra.ExactArgs(1),
	RunE: runObject,
})

var typeCmd = needsRuntime(&cobra.Command{
	Use:   "type [name]",
	Short: "List the constructors of a type",
	Args:  cobra.ExactArgs(1),
	RunE:  runType,
})

func init() {
	for _, cmd := range []*cobra.Command{functionCmd, objectCmd, typeCmd} {
		cmd.Flags().IntVarP(&lookupLayer, "layer", "l", domain.AllLayers, "layer id (default every layer)")
		cmd.Flags().BoolVar(&lookupFull, "full", false, "show full definitions")
		cmd.Flags().IntVarP(&lookupLimit, "limit", "n", 0, "maximum number of results")
		cmd.Flags().BoolVar(&lookupJSON, "json", false, "output results as JSON")
		rootCmd.AddCommand(cmd)
	}
}

func lookupQuery(name string) (domain.ByNameQuery, error) {
	name, err := domain.ValidateName(name)
	if err != nil {
		return domain.ByNameQuery{}, err
	}
	if err := domain.ValidateLayerID(lookupLayer, true); err != nil {
		return domain.ByNameQuery{}, err
	}
	mode := domain.FetchCompact
	if lookupFull {
		mode = domain.FetchFull
	}
	return domain.ByNameQuery{Name: name, LayerID: lookupLayer, Mode: mode, Limit: clampLimit(lookupLimit)}, nil
}

func runFunction(cmd *cobra.Command, args []string) error {
	cat, err := catalogue()
	if err != nil {
		return err
	}
	q, err := lookupQuery(args[0])
	if err != nil {
		return err
	}

	res := cat.Functions(q)
	if res.Count() == 0 {
		cmd.Printf("Function %q not found.\n", q.Name)
		return nil
	}
	if lookupJSON {
		return outputJSON(cmd, res)
	}

	for _, d := range res.Compact {
		printCompact(cmd, d)
	}
	for _, occ := range res.Full {
		cmd.Printf("[layer %d] %s\n", occ.LayerID, tl.FormatFunction(occ.Function))
	}
	return nil
}

func runObject(cmd *cobra.Command, args []string) error {
	cat, err := catalogue()
	if err != nil {
		return err
	}
	q, err := lookupQuery(args[0])
	if err != nil {
		return err
	}

	res := cat.Objects(q)
	if res.Count() == 0 {
		cmd.Printf("Object %q not found.\n", q.Name)
		return nil
	}
	if lookupJSON {
		return outputJSON(cmd, res)
	}

	for _, d := range res.Compact {
		printCompact(cmd, d)
	}
	for _, occ := range res.Full {
		cmd.Printf("[layer %d] %s\n", occ.LayerID, tl.FormatConstructor(occ.Object, occ.Category))
		for _, u := range occ.Usages {
			inner := ""
			if u.IsInner {
				inner = " (inner)"
			}
			cmd.Printf("    %-13s %s%s\n", u.Kind, u.Function.Name, inner)
		}
	}
	return nil
}

func runType(cmd *cobra.Command, args []string) error {
	cat, err := catalogue()
	if err != nil {
		return err
	}
	q, err := lookupQuery(args[0])
	if err != nil {
		return err
	}

	res := cat.Types(q)
	if res.Count() == 0 {
		cmd.Printf("Type %q not found.\n", q.Name)
		return nil
	}
	if lookupJSON {
		return outputJSON(cmd, res)
	}

	for _, l := range res.Compact {
		cmd.Printf("[layer %d]\n", l.LayerID)
		for _, ref := range l.Objects {
			cmd.Printf("    %s#%s\n", ref.Name, ref.ID)
		}
	}
	for _, l := range res.Full {
		cmd.Printf("[layer %d]\n", l.LayerID)
		for _, c := range l.Constructors {
			cmd.Printf("    %s\n", tl.FormatConstructor(c, q.Name))
		}
	}
	return nil
}

func printCompact(cmd *cobra.Command, d domain.CompactDefinition) {
	if d.ReturnType != "" {
		cmd.Printf("[layer %d] %s#%s -> %s\n", d.LayerID, d.Name, d.DefinitionID, d.ReturnType)
		return
	}
	cmd.Printf("[layer %d] %s#%s (%s)\n", d.LayerID, d.Name, d.DefinitionID, d.Namespace)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
