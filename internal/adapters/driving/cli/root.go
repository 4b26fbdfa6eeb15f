// Package cli provides the tlscope command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tlscope/internal/core/domain"
	"github.com/custodia-labs/tlscope/internal/core/ports/driving"
	"github.com/custodia-labs/tlscope/internal/logger"
)

// annotationRuntime marks commands that need the catalogue loaded.
const annotationRuntime = "tlscope/runtime"

var version = "dev"

// Services bundles the driving ports the commands use.
type Services struct {
	Catalogue driving.CatalogueService
	Search    driving.SearchService
	Ingest    driving.IngestService
	Scheduler driving.Scheduler

	// Watch, when set, runs ingestion on source change notifications
	// until its context is cancelled.
	Watch func(ctx context.Context) error

	// DefaultLimit and MaxLimit bound by-name lookups.
	DefaultLimit int
	MaxLimit     int

	// MCPAddr is the default HTTP address of mcp serve. Empty means stdio.
	MCPAddr string

	// Close releases stores and connections.
	Close func() error
}

// Bootstrap builds the services on first use.
type Bootstrap func(ctx context.Context) (*Services, error)

var (
	deps            *Services
	bootstrap       Bootstrap
	settingsService driving.SettingsService
)

var (
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "tlscope",
	Short: "Explore the Telegram TL schema across layers",
	Long: `tlscope keeps every published layer of the Telegram TL schema and answers
point-in-time questions about it: what a function or type looked like at a
given layer, how it changed between layers and which functions use it.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetSettingsService sets the service behind the config commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBootstrap sets the function that builds the services for commands
// that query the catalogue.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects ready-made services.
func SetServices(s *Services) {
	deps = s
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if deps != nil && deps.Close != nil {
			if err := deps.Close(); err != nil {
				logger.Warn("closing services: %v", err)
			}
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func preRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	configureColor(cmd.OutOrStdout())

	if cmd.Annotations[annotationRuntime] == "" || deps != nil || bootstrap == nil {
		return nil
	}
	s, err := bootstrap(cmd.Context())
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCatalogueNotReady, err)
	}
	deps = s
	return nil
}

// needsRuntime marks cmd as requiring the catalogue.
func needsRuntime(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationRuntime] = "true"
	return cmd
}

// configureColor disables colour when asked to or when w is not a terminal.
func configureColor(w io.Writer) {
	color.NoColor = noColor || !isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func catalogue() (driving.CatalogueService, error) {
	if deps == nil || deps.Catalogue == nil {
		return nil, errors.New("catalogue service not configured")
	}
	return deps.Catalogue, nil
}

// clampLimit applies the configured lookup limits.
func clampLimit(limit int) int {
	def, maxLimit := domain.DefaultQueryLimit, domain.MaxQueryLimit
	if deps != nil {
		if deps.MaxLimit > 0 {
			maxLimit = deps.MaxLimit
		}
		if deps.DefaultLimit > 0 {
			def = min(deps.DefaultLimit, maxLimit)
		}
	}
	return domain.ClampLimit(limit, def, maxLimit)
}
