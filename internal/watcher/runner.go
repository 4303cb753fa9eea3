package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/SurfaceLayerAI/surface-plugin/internal/discovery"
	"github.com/SurfaceLayerAI/surface-plugin/internal/hook"
	"github.com/SurfaceLayerAI/surface-plugin/internal/indexer"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
)

// Dependencies are the collaborators a watch runner needs.
type Dependencies struct {
	Ledger  *store.Ledger
	Indexer *indexer.Indexer

	// OnIndexed, when set, is called after each successful re-index.
	// The watch command uses it to echo a line per session.
	OnIndexed func(store.IndexEntry)
}

// RunOptions configures one watch run.
type RunOptions struct {
	// ProjectDir is the project whose transcripts are watched.
	ProjectDir string

	// Debounce is the quiet window before changed sessions are
	// re-indexed. Zero means the watcher default.
	Debounce time.Duration
}

// Runner keeps a project's index current by re-indexing sessions as
// their transcripts change.
type Runner struct {
	ledger    *store.Ledger
	indexer   *indexer.Indexer
	onIndexed func(store.IndexEntry)
}

// NewRunner validates dependencies and builds a watch runner.
func NewRunner(deps Dependencies) (*Runner, error) {
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if deps.Indexer == nil {
		return nil, fmt.Errorf("indexer is required")
	}
	return &Runner{
		ledger:    deps.Ledger,
		indexer:   deps.Indexer,
		onIndexed: deps.OnIndexed,
	}, nil
}

// Run watches the project's transcript directory until the context is
// cancelled. Context cancellation is the normal way to stop watching
// and is not reported as an error.
func (r *Runner) Run(ctx context.Context, opts RunOptions) error {
	dir, err := discovery.SessionsDir(opts.ProjectDir)
	if err != nil {
		return err
	}

	w, err := NewWatcher(Options{DebounceWindow: opts.Debounce})
	if err != nil {
		return err
	}
	defer w.Stop()

	runErr := make(chan error, 1)
	go func() { runErr <- w.Start(ctx, dir) }()

	slog.Info("watching transcripts",
		slog.String("project", opts.ProjectDir),
		slog.String("dir", dir))

	for {
		select {
		case err := <-runErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			r.handleBatch(ctx, dir, batch)
		case werr, ok := <-w.Errors():
			if ok && werr != nil {
				slog.Warn("transcript watch error", slog.String("error", werr.Error()))
			}
		}
	}
}

// handleBatch re-indexes every changed session in one debounced batch.
func (r *Runner) handleBatch(ctx context.Context, dir string, events []FileEvent) {
	for _, ev := range events {
		if ctx.Err() != nil {
			return
		}
		if ev.Operation == OpDelete || ev.Operation == OpRename {
			// The ledger is append-only: a removed transcript keeps
			// its last entry rather than losing history.
			slog.Debug("transcript removed, keeping index entry", slog.String("file", ev.Path))
			continue
		}

		sessionID := strings.TrimSuffix(ev.Path, ".jsonl")
		path := filepath.Join(dir, ev.Path)

		if !hook.WorthIndexing(path) {
			slog.Debug("transcript has nothing to index yet", slog.String("session_id", sessionID))
			continue
		}

		entry, err := r.indexer.Build(ctx, sessionID, path)
		if err != nil {
			slog.Warn("re-index failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()))
			continue
		}
		if err := r.ledger.Replace(entry); err != nil {
			slog.Warn("ledger write failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()))
			continue
		}

		slog.Info("session reindexed",
			slog.String("session_id", sessionID),
			slog.Bool("plan_mode", entry.PlanMode))
		if r.onIndexed != nil {
			r.onIndexed(entry)
		}
	}
}
