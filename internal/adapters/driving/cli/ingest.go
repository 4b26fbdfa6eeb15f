package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = needsRuntime(&cobra.Command{
	Use:   "ingest",
	Short: "Fetch new layers from the configured source",
	Long: `Lists the layer files offered by the configured source and stores every
layer not stored yet. Stored layers are never modified.

With --watch the command keeps running after the first pass: ingestion is
repeated on the configured interval and, for directory sources, whenever a
layer file appears.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
})

var ingestWatch bool

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep ingesting until interrupted")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if deps == nil || deps.Ingest == nil {
		return errors.New("ingest service not configured")
	}

	report, err := deps.Ingest.Ingest(cmd.Context())
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if len(report.Added) == 0 {
		cmd.Printf("No new layers from %s (%d already stored).\n", report.Source, report.Skipped)
	} else {
		cmd.Printf("Stored %d new layers from %s: %v\n", len(report.Added), report.Source, report.Added)
	}

	if !ingestWatch {
		return nil
	}
	cmd.Println("Watching for new layers, press Ctrl+C to stop.")
	stop := startBackground(cmd.Context())
	<-cmd.Context().Done()
	stop()
	return nil
}
