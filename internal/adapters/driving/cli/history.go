package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/tl"
)

var historyJSON bool

var historyCmd = needsRuntime(&cobra.Command{
	Use:   "history [function|object] [name]",
	Short: "Show how a definition changed across layers",
	Long: `Reconstructs the changelog of a function or constructor, newest change
first: when it was added or removed, parameters added, removed or retyped,
and return type changes.`,
	Args: cobra.ExactArgs(2),
	RunE: runHistory,
})

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(historyCmd)
}

var (
	addedColor   = color.New(color.FgGreen)
	deletedColor = color.New(color.FgRed)
	changedColor = color.New(color.FgYellow)
)

func runHistory(cmd *cobra.Command, args []string) error {
	cat, err := catalogue()
	if err != nil {
		return err
	}
	kind, err := domain.ParseDefinitionKind(args[0])
	if err != nil {
		return fmt.Errorf("%w: kind must be function or object", err)
	}
	name, err := domain.ValidateName(args[1])
	if err != nil {
		return err
	}

	res := cat.History(name, kind)
	if !res.Found {
		cmd.Printf("%s %q not found.\n", kind, name)
		return nil
	}
	if historyJSON {
		return outputJSON(cmd, res)
	}

	switch {
	case res.LastFunction != nil:
		cmd.Printf("%s (layer %d)\n", tl.FormatFunction(res.LastFunction.Function), res.LastFunction.LayerID)
	case res.LastObject != nil:
		cmd.Printf("%s (layer %d)\n", tl.FormatConstructor(res.LastObject.Object, res.LastObject.Category), res.LastObject.LayerID)
	}
	cmd.Println()

	for _, ev := range res.Events {
		cmd.Println(formatEvent(ev))
	}
	return nil
}

// formatEvent renders one history event as a coloured line.
func formatEvent(ev domain.HistoryEvent) string {
	prefix := fmt.Sprintf("  [layer %4d] ", ev.LayerID)
	switch ev.Kind {
	case domain.EventAddedIn:
		return prefix + addedColor.Sprint("added")
	case domain.EventDeletedIn:
		return prefix + deletedColor.Sprint("deleted")
	case domain.EventParamAdded:
		return prefix + addedColor.Sprintf("+ %s:%s", ev.Name, ev.ParamType)
	case domain.EventParamDeleted:
		return prefix + deletedColor.Sprintf("- %s", ev.Name)
	case domain.EventParamChanged:
		line := prefix + changedColor.Sprintf("~ %s", ev.Name)
		for _, d := range ev.Diffs {
			line += fmt.Sprintf(" %s: %s -> %s", d.Field, d.From, d.To)
		}
		return line
	case domain.EventReturnTypeChanged:
		return prefix + changedColor.Sprintf("returns %s -> %s", ev.Before, ev.After)
	default:
		return prefix + string(ev.Kind)
	}
}
