package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SurfaceLayerAI/surface-plugin/internal/discovery"
	"github.com/SurfaceLayerAI/surface-plugin/internal/errors"
	"github.com/SurfaceLayerAI/surface-plugin/internal/indexer"
	"github.com/SurfaceLayerAI/surface-plugin/internal/output"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
	"github.com/SurfaceLayerAI/surface-plugin/internal/summary"
)

func newIndexCmd() *cobra.Command {
	var (
		project    string
		transcript string
		noSummary  bool
	)

	cmd := &cobra.Command{
		Use:   "index SESSION_ID",
		Short: "Index one session by id",
		Long: `Index a single session transcript into the project ledger.

The transcript is located under ~/.claude/projects/ from the session id
and the project directory. Re-indexing an already indexed session
replaces its ledger entry.

Examples:
  surface index 3f8a2c1e-9b4d-4f6a-8c0e-2d7b5a1c9e3f
  surface index 3f8a2c1e-9b4d-4f6a-8c0e-2d7b5a1c9e3f --no-summary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), cmd, args[0], project, transcript, noSummary)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project directory (default: auto-detected)")
	cmd.Flags().StringVar(&transcript, "transcript", "", "Explicit transcript path (default: derived from the session id)")
	cmd.Flags().BoolVar(&noSummary, "no-summary", false, "Skip the summarizer subprocess, use the structural fallback")

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, sessionID, project, transcriptPath string, noSummary bool) error {
	cleanup := setupCommandLogging()
	defer cleanup()

	out := output.New(cmd.OutOrStdout())
	projectDir := resolveProjectDir(project)

	if transcriptPath == "" {
		var err error
		transcriptPath, err = discovery.TranscriptPath(sessionID, projectDir)
		if err != nil {
			return err
		}
	}
	if !fileExists(transcriptPath) {
		return errors.New(errors.ErrCodeTranscriptNotFound,
			"no transcript found for session "+sessionID, nil).
			WithDetail("path", transcriptPath).
			WithSuggestion("list known sessions with 'surface sessions'")
	}

	entry, err := indexOneSession(ctx, projectDir, sessionID, transcriptPath, noSummary)
	if err != nil {
		return err
	}

	out.Successf("Indexed session %s", entry.SessionID)
	if entry.Summary != "" {
		out.Status("", truncateText(entry.Summary, 100))
	}
	if entry.ContinuesSession != "" {
		out.Statusf("", "continues session %s", entry.ContinuesSession)
	}
	return nil
}

// indexOneSession runs the extract-summarize-link-write pipeline for a
// single session. The hook and watch commands share it.
func indexOneSession(ctx context.Context, projectDir, sessionID, transcriptPath string, noSummary bool) (store.IndexEntry, error) {
	cfg := loadConfig(projectDir)
	if noSummary {
		cfg.Summarizer.Disabled = true
	}

	ledger := store.NewLedger(filepath.Join(projectDir, ".surface"))
	ix, err := indexer.New(indexer.Dependencies{
		Ledger:     ledger,
		Summarizer: summary.New(cfg.Summarizer),
	})
	if err != nil {
		return store.IndexEntry{}, err
	}

	return ix.Index(ctx, sessionID, transcriptPath)
}
