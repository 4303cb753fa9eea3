// Package backfill discovers a project's historical session
// transcripts and indexes the ones worth keeping, with a bounded
// worker pool and a cross-process lock.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/SurfaceLayerAI/surface-plugin/internal/discovery"
	"github.com/SurfaceLayerAI/surface-plugin/internal/errors"
	"github.com/SurfaceLayerAI/surface-plugin/internal/hook"
	"github.com/SurfaceLayerAI/surface-plugin/internal/indexer"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
	"github.com/SurfaceLayerAI/surface-plugin/internal/ui"
)

const (
	// LockFileName is the cross-process lock inside the .surface dir.
	LockFileName = "backfill.lock"

	// DefaultParallelism bounds concurrent summarizer subprocesses.
	DefaultParallelism = 10

	lockRetryInterval = 500 * time.Millisecond
)

// Options configures a backfill run.
type Options struct {
	// ProjectDir is the project whose sessions are backfilled.
	ProjectDir string

	// Parallelism bounds concurrent session builds.
	Parallelism int

	// Force re-indexes sessions already present in the ledger,
	// snapshotting the ledger first.
	Force bool

	// LockWait is how long to wait for another backfill to release
	// the lock before giving up.
	LockWait time.Duration
}

// Result contains the outcome of a backfill run.
type Result struct {
	// Sessions is the number of transcripts discovered.
	Sessions int

	// Indexed is the number of sessions written to the ledger.
	Indexed int

	// Skipped counts sessions already indexed or with nothing worth
	// keeping.
	Skipped int

	// Failed counts sessions that could not be indexed.
	Failed int

	// Duration is the total run time.
	Duration time.Duration
}

// Dependencies contains the injected dependencies for Runner.
type Dependencies struct {
	// Ledger is the session index being filled (required).
	Ledger *store.Ledger

	// Indexer builds index entries from transcripts (required).
	Indexer *indexer.Indexer

	// Renderer for progress display (required).
	Renderer ui.Renderer
}

// Runner executes backfill runs with progress reporting.
// It accepts injected dependencies for testability.
type Runner struct {
	ledger   *store.Ledger
	indexer  *indexer.Indexer
	renderer ui.Renderer
}

// NewRunner creates a Runner with injected dependencies.
func NewRunner(deps Dependencies) (*Runner, error) {
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if deps.Indexer == nil {
		return nil, fmt.Errorf("indexer is required")
	}
	if deps.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}

	return &Runner{
		ledger:   deps.Ledger,
		indexer:  deps.Indexer,
		renderer: deps.Renderer,
	}, nil
}

// buildResult carries one worker's outcome to the writer.
type buildResult struct {
	session discovery.SessionInfo
	entry   store.IndexEntry
	skipped bool
	err     error
}

// Run executes the full backfill pipeline. Per-session failures are
// reported and counted but do not abort the run; only lock failures,
// discovery failures, and context cancellation do.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	lock, err := r.acquireLock(ctx, opts.LockWait)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	if opts.Force {
		if path, err := r.ledger.Backup(); err != nil {
			slog.Warn("ledger backup failed", slog.String("error", err.Error()))
		} else if path != "" {
			slog.Info("ledger backed up", slog.String("path", path))
		}
	}

	r.renderer.UpdateProgress(ui.ProgressEvent{
		Stage:   ui.StageDiscovering,
		Message: "Scanning transcripts...",
	})

	sessions, err := discovery.ListSessions(opts.ProjectDir)
	if err != nil {
		return nil, err
	}

	indexed := make(map[string]bool)
	if !opts.Force {
		entries, err := r.ledger.Load()
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			indexed[e.SessionID] = true
		}
	}

	// Plan sessions should land before the sessions that continue
	// them, so work proceeds oldest first.
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ModTime.Before(sessions[j].ModTime)
	})

	res := &Result{Sessions: len(sessions)}
	var todo []discovery.SessionInfo
	for _, s := range sessions {
		if indexed[s.SessionID] {
			res.Skipped++
			continue
		}
		todo = append(todo, s)
	}

	total := len(todo)
	r.renderer.UpdateProgress(ui.ProgressEvent{
		Stage: ui.StageIndexing,
		Total: total,
	})

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, parallelism)
	results := make(chan buildResult, parallelism)

	for _, s := range todo {
		s := s
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			br := buildResult{session: s}
			if !hook.WorthIndexing(s.Path) {
				br.skipped = true
			} else {
				br.entry, br.err = r.indexer.Build(gctx, s.SessionID, s.Path)
			}

			select {
			case results <- br:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	var waitErr error
	go func() {
		waitErr = g.Wait()
		close(results)
	}()

	// Single writer: ledger appends stay serialized no matter how
	// wide the pool is.
	done := 0
	for br := range results {
		done++
		switch {
		case br.skipped:
			res.Skipped++
		case br.err != nil:
			res.Failed++
			r.renderer.AddError(ui.ErrorEvent{SessionID: br.session.SessionID, Err: br.err})
			slog.Warn("session backfill failed",
				slog.String("session_id", br.session.SessionID),
				slog.String("error", br.err.Error()))
		default:
			if err := r.ledger.Replace(br.entry); err != nil {
				res.Failed++
				r.renderer.AddError(ui.ErrorEvent{SessionID: br.session.SessionID, Err: err})
				slog.Warn("ledger write failed",
					slog.String("session_id", br.session.SessionID),
					slog.String("error", err.Error()))
			} else {
				res.Indexed++
			}
		}

		r.renderer.UpdateProgress(ui.ProgressEvent{
			Stage:     ui.StageIndexing,
			Current:   done,
			Total:     total,
			SessionID: br.session.SessionID,
		})
	}

	if waitErr != nil {
		return nil, waitErr
	}

	res.Duration = time.Since(start)
	r.renderer.Complete(ui.CompletionStats{
		Sessions: res.Sessions,
		Indexed:  res.Indexed,
		Skipped:  res.Skipped,
		Failed:   res.Failed,
		Duration: res.Duration,
	})

	slog.Info("backfill complete",
		slog.Int("sessions", res.Sessions),
		slog.Int("indexed", res.Indexed),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", res.Duration))

	return res, nil
}

// acquireLock takes the cross-process backfill lock, retrying for up
// to wait before failing with ErrCodeBackfillLocked.
func (r *Runner) acquireLock(ctx context.Context, wait time.Duration) (*flock.Flock, error) {
	lockPath := filepath.Join(filepath.Dir(r.ledger.Path()), LockFileName)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	lock := flock.New(lockPath)
	deadline := time.Now().Add(wait)
	for {
		acquired, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire backfill lock: %w", err)
		}
		if acquired {
			return lock, nil
		}
		if wait <= 0 || time.Now().After(deadline) {
			return nil, errors.New(errors.ErrCodeBackfillLocked,
				"another backfill is already running", nil).
				WithSuggestion("wait for it to finish or remove " + lockPath)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}
