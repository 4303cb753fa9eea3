package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SurfaceLayerAI/surface-plugin/internal/discovery"
	"github.com/SurfaceLayerAI/surface-plugin/internal/indexer"
	"github.com/SurfaceLayerAI/surface-plugin/internal/output"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
	"github.com/SurfaceLayerAI/surface-plugin/internal/summary"
	"github.com/SurfaceLayerAI/surface-plugin/internal/watcher"
)

// watchOptions holds CLI flags for watch.
type watchOptions struct {
	project    string
	noSummary  bool
	debounceMs int
}

func newWatchCmd() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch transcripts and re-index sessions as they change",
		Long: `Watch the project's transcript directory and re-index sessions after
their transcripts stop changing.

Rapid writes to the same transcript coalesce within the debounce
window, so a session streaming output is indexed once, after the
burst. Runs until interrupted.

Examples:
  surface watch
  surface watch --no-summary --debounce-ms 1000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.project, "project", "", "Project directory (default: auto-detected)")
	cmd.Flags().BoolVar(&opts.noSummary, "no-summary", false, "Skip the summarizer subprocess, use the structural fallback")
	cmd.Flags().IntVar(&opts.debounceMs, "debounce-ms", 0, "Quiet window before re-indexing (default: from config)")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts watchOptions) error {
	cleanup := setupCommandLogging()
	defer cleanup()

	out := output.New(cmd.OutOrStdout())
	projectDir := resolveProjectDir(opts.project)
	cfg := loadConfig(projectDir)
	if opts.noSummary {
		cfg.Summarizer.Disabled = true
	}

	debounceMs := opts.debounceMs
	if debounceMs <= 0 {
		debounceMs = cfg.Watch.DebounceMs
	}

	ledger := store.NewLedger(filepath.Join(projectDir, ".surface"))
	ix, err := indexer.New(indexer.Dependencies{
		Ledger:     ledger,
		Summarizer: summary.New(cfg.Summarizer),
	})
	if err != nil {
		return err
	}

	runner, err := watcher.NewRunner(watcher.Dependencies{
		Ledger:  ledger,
		Indexer: ix,
		OnIndexed: func(entry store.IndexEntry) {
			out.Statusf("", "indexed %s  %s", entry.SessionID, truncateText(entry.Summary, 60))
		},
	})
	if err != nil {
		return err
	}

	dir, err := discovery.SessionsDir(projectDir)
	if err != nil {
		return err
	}
	out.Statusf("👀", "Watching %s (Ctrl+C to stop)", dir)

	err = runner.Run(ctx, watcher.RunOptions{
		ProjectDir: projectDir,
		Debounce:   time.Duration(debounceMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	out.Status("", "Watch stopped.")
	return nil
}
