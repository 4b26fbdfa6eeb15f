package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tlscope/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change tlscope configuration.

Values are read from the config file and can be overridden with
TLSCOPE_* environment variables, e.g. TLSCOPE_STORE_DRIVER.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the recognised configuration keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", settingsService.Path())
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Driver: %s\n", s.Store.Driver)
	if s.Store.DSN != "" {
		cmd.Printf("  DSN: %s\n", maskSecret(s.Store.DSN))
	}
	if s.Store.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", s.Store.DataDir)
	}
	cmd.Println()

	cmd.Println("[Source]")
	cmd.Printf("  Kind: %s\n", s.Source.Kind)
	switch s.Source.Kind {
	case domain.SourceKindGitHub:
		cmd.Printf("  Repository: %s/%s@%s\n", s.Source.Owner, s.Source.Repo, s.Source.Branch)
		cmd.Printf("  Path: %s\n", s.Source.Path)
		if s.Source.Token != "" {
			cmd.Printf("  Token: %s\n", maskSecret(s.Source.Token))
		} else {
			cmd.Printf("  Token: (not set)\n")
		}
	case domain.SourceKindDir:
		cmd.Printf("  Directory: %s\n", s.Source.Dir)
	}
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Enabled: %t\n", s.Ingest.Enabled)
	cmd.Printf("  Interval: %s\n", s.Ingest.Interval)
	cmd.Println()

	cmd.Println("[Query]")
	cmd.Printf("  Default limit: %d\n", s.Query.DefaultLimit)
	cmd.Printf("  Max limit: %d\n", s.Query.MaxLimit)
	cmd.Printf("  Replace search index on start: %t\n", s.Search.ReplaceOnStart)
	cmd.Println()

	cmd.Println("[MCP]")
	if s.MCPAddr != "" {
		cmd.Printf("  Address: %s\n", s.MCPAddr)
	} else {
		cmd.Println("  Address: (stdio)")
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s.\n", args[0])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

// maskSecret hides all but the first and last four characters.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
