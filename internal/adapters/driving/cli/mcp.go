package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	yamlcorpus "github.com/campusware/advisor/internal/adapters/driven/corpus/yaml"
	"github.com/campusware/advisor/internal/adapters/driving/mcp"
	"github.com/campusware/advisor/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default, for Claude Desktop)
  advisor mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  advisor mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "advisor": {
        "command": "/path/to/advisor",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Assistant:  assistantService,
		Search:     searchService,
		Catalog:    programCatalog,
		CacheAdmin: cacheAdmin,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	// Long-running process: pick up corpus edits without a restart.
	if corpusLoader != nil && programIndex != nil {
		watcher := yamlcorpus.NewWatcher(corpusLoader.Dir(), yamlcorpus.DefaultDebounce, reloadCorpus)
		go func() {
			if err := watcher.Run(cmd.Context()); err != nil {
				logger.Warn("corpus watcher stopped: %v", err)
			}
		}()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// reloadCorpus re-reads the programme directory and swaps the index.
func reloadCorpus(ctx context.Context) {
	programs, err := corpusLoader.Load(ctx)
	if err != nil {
		logger.Warn("corpus reload: %v", err)
		return
	}
	if err := programIndex.Build(ctx, programs); err != nil {
		logger.Warn("index rebuild: %v", err)
		return
	}
	logger.Info("corpus reloaded, %d programmes indexed", programIndex.Count())
}
