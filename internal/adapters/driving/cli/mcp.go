package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tlscope/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = needsRuntime(&cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port or --addr (or the mcp.addr config key) to start an HTTP server
instead. Periodic ingestion and directory watching run while the server is up.

Examples:
  # Stdio mode (default)
  tlscope mcp serve

  # HTTP mode
  tlscope mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "tlscope": {
        "command": "/path/to/tlscope",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
})

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().String("addr", "", "HTTP listen address, overrides --port")
	mcpServeCmd.Flags().Bool("stdio", false, "force stdio even when mcp.addr is configured")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

// listenAddr picks the HTTP address from flags and config. Empty means stdio.
func listenAddr(cmd *cobra.Command) (string, error) {
	stdio, err := cmd.Flags().GetBool("stdio")
	if err != nil {
		return "", fmt.Errorf("getting stdio flag: %w", err)
	}
	if stdio {
		return "", nil
	}
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return "", fmt.Errorf("getting addr flag: %w", err)
	}
	if addr != "" {
		return addr, nil
	}
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return "", fmt.Errorf("getting port flag: %w", err)
	}
	if port > 0 {
		return fmt.Sprintf(":%d", port), nil
	}
	if deps != nil {
		return deps.MCPAddr, nil
	}
	return "", nil
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	cat, err := catalogue()
	if err != nil {
		return err
	}
	addr, err := listenAddr(cmd)
	if err != nil {
		return err
	}

	ports := &mcp.Ports{
		Catalogue:    cat,
		Search:       deps.Search,
		DefaultLimit: deps.DefaultLimit,
		MaxLimit:     deps.MaxLimit,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	stop := startBackground(cmd.Context())
	defer stop()

	if addr != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
