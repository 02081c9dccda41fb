// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server over the catalog and log stores.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/adamsatar/lift/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Diagnostic logs go to stderr.

CLIENT CONFIGURATION:

  {
    "mcpServers": {
      "lift": {
        "command": "lift",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  list_catalog        List catalog exercises, optionally filtered
  get_catalog_entry   Get one catalog exercise by name
  add_catalog_entry   Add an exercise to the catalog
  log_sets            Log sets of an exercise on a date
  list_sets           List logged sets
  update_set          Edit a logged set
  delete_set          Delete a logged set
  list_workouts       List recent workouts
  get_workout         Get a workout with its sets in exercise order
  get_volume          Volume trend per day, week or month

AVAILABLE RESOURCES:

  lift://catalog      The exercise catalog
  lift://recent       Recent workouts
  lift://today        Today's workout`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
