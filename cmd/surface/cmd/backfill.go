package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SurfaceLayerAI/surface-plugin/internal/backfill"
	"github.com/SurfaceLayerAI/surface-plugin/internal/indexer"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
	"github.com/SurfaceLayerAI/surface-plugin/internal/summary"
	"github.com/SurfaceLayerAI/surface-plugin/internal/ui"
)

// backfillOptions holds CLI flags for backfill.
type backfillOptions struct {
	project     string
	parallelism int
	noSummary   bool
	force       bool
	noTUI       bool
}

func newBackfillCmd() *cobra.Command {
	var opts backfillOptions

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Index all existing session transcripts",
		Long: `Discover every session transcript for the project and index the ones
worth keeping.

Sessions already present in the ledger are skipped unless --force,
which snapshots the ledger first. Summaries run through the summarizer
subprocess in parallel; use --no-summary for a fast structural-only
pass.

Only one backfill can run per project at a time.

Examples:
  surface backfill
  surface backfill --no-summary
  surface backfill --force --parallelism 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Ctrl+C should stop in-flight summarizer subprocesses, not
			// orphan them.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runBackfill(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.project, "project", "", "Project directory (default: auto-detected)")
	cmd.Flags().IntVar(&opts.parallelism, "parallelism", 0, "Concurrent session workers (default: from config)")
	cmd.Flags().BoolVar(&opts.noSummary, "no-summary", false, "Skip the summarizer subprocess, use the structural fallback")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Re-index sessions already in the ledger (snapshots it first)")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "Force plain text progress output")

	return cmd
}

func runBackfill(ctx context.Context, cmd *cobra.Command, opts backfillOptions) error {
	cleanup := setupCommandLogging()
	defer cleanup()

	projectDir := resolveProjectDir(opts.project)
	cfg := loadConfig(projectDir)
	if opts.noSummary {
		cfg.Summarizer.Disabled = true
	}

	parallelism := opts.parallelism
	if parallelism <= 0 {
		parallelism = cfg.Backfill.Parallelism
	}

	ledger := store.NewLedger(filepath.Join(projectDir, ".surface"))
	ix, err := indexer.New(indexer.Dependencies{
		Ledger:     ledger,
		Summarizer: summary.New(cfg.Summarizer),
	})
	if err != nil {
		return err
	}

	// Auto-detects TTY/CI; --no-tui forces plain output.
	uiCfg := ui.NewConfig(cmd.OutOrStdout(),
		ui.WithForcePlain(opts.noTUI),
		ui.WithNoColor(ui.DetectNoColor()),
		ui.WithProjectDir(projectDir))
	renderer := ui.NewRenderer(uiCfg)
	if err := renderer.Start(ctx); err != nil {
		slog.Warn("failed to start progress renderer", slog.String("error", err.Error()))
	}
	defer func() { _ = renderer.Stop() }()

	runner, err := backfill.NewRunner(backfill.Dependencies{
		Ledger:   ledger,
		Indexer:  ix,
		Renderer: renderer,
	})
	if err != nil {
		return err
	}

	_, err = runner.Run(ctx, backfill.Options{
		ProjectDir:  projectDir,
		Parallelism: parallelism,
		Force:       opts.force,
		LockWait:    time.Duration(cfg.Backfill.LockWaitSeconds) * time.Second,
	})
	return err
}
