package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SurfaceLayerAI/surface-plugin/internal/mcp"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		project   string
		transport string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server over stdio, exposing the session index to
assistants through three tools: search_sessions, linked_sessions, and
session_context.

Stdout carries JSON-RPC exclusively; all logging goes to the log file.

Register it in the assistant's MCP configuration:
  {"mcpServers": {"surface": {"command": "surface", "args": ["serve"]}}}`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, project, transport)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project directory (default: auto-detected)")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol (stdio)")

	return cmd
}

func runServe(ctx context.Context, project, transport string) error {
	// No stdout writes from here on: the client owns the stream.
	cleanup := setupQuietLogging()
	defer cleanup()

	projectDir := resolveProjectDir(project)
	ledger := store.NewLedger(filepath.Join(projectDir, ".surface"))

	srv, err := mcp.NewServer(ledger, projectDir)
	if err != nil {
		return err
	}

	return srv.Serve(ctx, transport)
}
