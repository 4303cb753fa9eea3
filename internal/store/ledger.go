// Package store maintains the per-project session index: an
// append-only JSONL ledger with whole-file replace-by-key, plus the
// continuation-link resolution over it.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// IndexFileName is the ledger file inside a project's .surface dir.
const IndexFileName = "session-index.jsonl"

// IndexEntry is one indexed session.
type IndexEntry struct {
	SessionID        string   `json:"session_id"`
	Timestamp        string   `json:"timestamp"`
	Summary          string   `json:"summary"`
	PlanMode         bool     `json:"plan_mode"`
	PlanPaths        []string `json:"plan_paths"`
	MadeEdits        bool     `json:"made_edits"`
	ContinuesSession string   `json:"continues_session,omitempty"`
}

// Ledger is the session index for one project. Every operation
// reloads from disk; nothing is cached between calls. The file is an
// ownerless shared append log, so concurrent external appends are
// always possible.
type Ledger struct {
	dir string
}

// NewLedger returns a ledger rooted at the given .surface directory.
func NewLedger(dir string) *Ledger {
	return &Ledger{dir: dir}
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return filepath.Join(l.dir, IndexFileName)
}

// Append writes one entry to the end of the ledger, creating the
// directory and file as needed. Never rewrites existing content.
func (l *Ledger) Append(entry IndexEntry) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode index entry: %w", err)
	}

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append index entry: %w", err)
	}
	return nil
}

// Load reads all entries in file order. A missing file yields an
// empty slice; malformed lines are skipped with a warning.
func (l *Ledger) Load() ([]IndexEntry, error) {
	f, err := os.Open(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer f.Close()

	var entries []IndexEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry IndexEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			slog.Warn("skipping malformed index entry", "line", lineNum, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}
	return entries, nil
}

// Replace rewrites the ledger with every entry whose session_id
// differs from the new entry's, plus the new entry at the end. This
// is the idempotent path: after Replace there is exactly one entry
// for the session. The rewrite goes through a temp file and rename;
// it is not safe under concurrent writers, so parallel callers must
// serialize index mutations themselves.
func (l *Ledger) Replace(entry IndexEntry) error {
	entries, err := l.Load()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	var buf []byte
	for _, e := range entries {
		if e.SessionID == entry.SessionID {
			continue
		}
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode index entry: %w", err)
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode index entry: %w", err)
	}
	buf = append(buf, line...)
	buf = append(buf, '\n')

	// Atomic write: temp file then rename
	indexPath := l.Path()
	tmpPath := indexPath + ".tmp"
	if err := os.WriteFile(tmpPath, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	if err := os.Rename(tmpPath, indexPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace index file: %w", err)
	}
	return nil
}

// Get returns the entry for a session id, or false when absent. When
// the id somehow appears more than once (append without replace), the
// latest entry wins.
func (l *Ledger) Get(sessionID string) (IndexEntry, bool, error) {
	entries, err := l.Load()
	if err != nil {
		return IndexEntry{}, false, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].SessionID == sessionID {
			return entries[i], true, nil
		}
	}
	return IndexEntry{}, false, nil
}

// Sessions returns one entry per session id. When an id appears more
// than once (append without replace), the latest occurrence wins; the
// position of the first occurrence is kept so output order stays
// stable across re-indexing.
func (l *Ledger) Sessions() ([]IndexEntry, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}

	pos := make(map[string]int, len(entries))
	var out []IndexEntry
	for _, e := range entries {
		if i, ok := pos[e.SessionID]; ok {
			out[i] = e
			continue
		}
		pos[e.SessionID] = len(out)
		out = append(out, e)
	}
	return out, nil
}

// RecentPlanSessions returns the most recent plan-mode entries,
// newest first, capped at limit.
func (l *Ledger) RecentPlanSessions(limit int) ([]IndexEntry, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}

	var planEntries []IndexEntry
	for _, e := range entries {
		if e.PlanMode {
			planEntries = append(planEntries, e)
		}
	}
	sort.SliceStable(planEntries, func(i, j int) bool {
		return planEntries[i].Timestamp > planEntries[j].Timestamp
	})
	if limit > 0 && len(planEntries) > limit {
		planEntries = planEntries[:limit]
	}
	return planEntries, nil
}
