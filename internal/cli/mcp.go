package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/feedrank/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio transport)",
	Long: `Start the MCP (Model Context Protocol) server using stdio transport.

This lets AI assistants list, rank, read and remove your feed items.
The server holds the feedback lock for as long as it runs, so other
feedrank commands will report the corpus as locked meanwhile.

Example client configuration:

{
  "mcpServers": {
    "feedrank": {
      "command": "/path/to/feedrank",
      "args": ["mcp"]
    }
  }
}`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) (err error) {
	r, cfg, err := openReader()
	if err != nil {
		return err
	}
	defer closeReader(r, &err)

	server := mcp.New(r, cfg, version, newLogger(cfg))

	// Handle interrupt
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	return server.Start(ctx)
}
