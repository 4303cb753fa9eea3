// Package watcher follows a project's transcript directory and emits
// debounced change events for session files.
//
// Transcript files grow in bursts: a single assistant turn appends many
// JSONL lines in quick succession. Raw fsnotify events are therefore
// coalesced per file, and a batch is emitted only after the directory
// has been quiet for the debounce window.
//
// Usage:
//
//	w, err := watcher.NewWatcher(watcher.Options{})
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//	go w.Start(ctx, sessionsDir)
//
//	for batch := range w.Events() {
//	    // Re-index the sessions named in batch.
//	}
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation is the kind of change observed on a transcript file.
type Operation int

const (
	// OpCreate indicates a new transcript appeared.
	OpCreate Operation = iota
	// OpModify indicates an existing transcript grew or changed.
	OpModify
	// OpDelete indicates a transcript was removed.
	OpDelete
	// OpRename indicates a transcript was renamed away.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one observed change to a transcript file.
type FileEvent struct {
	// Path is the file name relative to the watched directory.
	Path string

	// Operation is the kind of change.
	Operation Operation

	// Timestamp is when the change was detected.
	Timestamp time.Time
}

// Options configures the watcher.
type Options struct {
	// DebounceWindow is how long the directory must stay quiet before
	// a batch is emitted. Default: 500ms.
	DebounceWindow time.Duration

	// EventBufferSize is the batch channel buffer. Default: 64.
	EventBufferSize int
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	if o.DebounceWindow == 0 {
		o.DebounceWindow = 500 * time.Millisecond
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = 64
	}
	return o
}

// Watcher watches one flat transcript directory via fsnotify. Session
// transcripts live directly in the directory as <session-id>.jsonl;
// everything else (subagent subdirectories, temp files) is ignored.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	errs      chan error
	stopCh    chan struct{}
	rootPath  string
	opts      Options
	mu        sync.Mutex
	stopped   bool
}

// NewWatcher creates a watcher. It fails when the platform cannot
// provide filesystem notifications.
func NewWatcher(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize filesystem notifications: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		debouncer: NewDebouncer(opts.DebounceWindow),
		errs:      make(chan error, 10),
		stopCh:    make(chan struct{}),
		opts:      opts,
	}, nil
}

// Start begins watching the given directory and blocks until the
// context is cancelled or Stop is called. The directory is created if
// it does not exist yet, so watching can begin before the first
// session is recorded.
func (w *Watcher) Start(ctx context.Context, dir string) error {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve watch directory: %w", err)
	}
	w.rootPath = absPath

	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return fmt.Errorf("failed to create watch directory: %w", err)
	}
	if err := w.fsWatcher.Add(absPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", absPath, err)
	}

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// handleEvent filters and converts one raw fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".jsonl") {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		// Directory creation slips past the suffix check only when a
		// directory is named like a transcript; stat settles it.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return
		}
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		// Chmod and unknown ops carry no transcript content.
		return
	}

	w.debouncer.Add(FileEvent{
		Path:      name,
		Operation: op,
		Timestamp: time.Now(),
	})
}

// Events returns the channel of debounced event batches. A batch
// arrives after the directory has been quiet for the debounce window.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns the channel of non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Stop stops the watcher and releases resources. Safe to call more
// than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true

	close(w.stopCh)
	_ = w.fsWatcher.Close()
	w.debouncer.Stop()
	close(w.errs)
}

// emitError sends a non-fatal error without blocking.
func (w *Watcher) emitError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	select {
	case w.errs <- err:
	default:
	}
}
