package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SurfaceLayerAI/surface-plugin/internal/hook"
)

func newHookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook",
		Short: "Handle a SessionEnd hook event from stdin",
		Long: `Read a SessionEnd event from stdin, decide whether the finished
session is worth indexing, and index it when it is.

This command always prints {} and exits 0. A broken transcript, a
failed summarizer, or a full disk must never break the host session;
diagnostics go to the log file instead.

Register it in the plugin's hook configuration:
  {"hooks": {"SessionEnd": [{"command": "surface hook"}]}}`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runHook(cmd.Context(), cmd)
			return nil
		},
	}
}

// runHook never returns an error: the hook protocol demands a clean
// exit regardless of what happens during indexing.
func runHook(ctx context.Context, cmd *cobra.Command) {
	// Stdout carries the hook response and nothing else.
	defer func() { _, _ = fmt.Fprintln(cmd.OutOrStdout(), "{}") }()

	cleanup := setupQuietLogging()
	defer cleanup()

	// The summarizer runs the assistant CLI, which fires its own
	// SessionEnd on exit. Without this guard every indexed session
	// would spawn another indexing run.
	if os.Getenv(hook.EnvIndexing) != "" {
		slog.Debug("skipping hook spawned by the indexer")
		return
	}

	ev, err := hook.ParseEvent(cmd.InOrStdin())
	if err != nil {
		slog.Warn("unreadable hook event", slog.String("error", err.Error()))
		return
	}
	if ev.SessionID == "" || ev.TranscriptPath == "" {
		slog.Debug("hook event missing session id or transcript path",
			slog.String("session_id", ev.SessionID))
		return
	}

	if !hook.ShouldIndex(ev) {
		slog.Debug("session not worth indexing",
			slog.String("session_id", ev.SessionID),
			slog.String("reason", ev.Reason))
		return
	}

	projectDir := ev.CWD
	if projectDir == "" {
		projectDir, _ = os.Getwd()
	}

	entry, err := indexOneSession(ctx, projectDir, ev.SessionID, ev.TranscriptPath, false)
	if err != nil {
		slog.Error("hook indexing failed",
			slog.String("session_id", ev.SessionID),
			slog.String("error", err.Error()))
		return
	}

	slog.Info("session indexed",
		slog.String("session_id", entry.SessionID),
		slog.Bool("plan_mode", entry.PlanMode),
		slog.String("continues_session", entry.ContinuesSession))
}
