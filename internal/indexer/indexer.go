// Package indexer runs the per-session pipeline: metadata extraction,
// summarization, continuation resolution, index write.
package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SurfaceLayerAI/surface-plugin/internal/metadata"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
	"github.com/SurfaceLayerAI/surface-plugin/internal/summary"
)

// Dependencies are the collaborators an Indexer needs.
type Dependencies struct {
	// Ledger is the project's session index (required).
	Ledger *store.Ledger

	// Summarizer produces the prose summary (required; pass
	// summary.Disabled{} to skip the subprocess).
	Summarizer summary.Summarizer
}

// Indexer turns one finished session into an index entry.
type Indexer struct {
	ledger     *store.Ledger
	summarizer summary.Summarizer
}

// New creates an Indexer with injected dependencies.
func New(deps Dependencies) (*Indexer, error) {
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if deps.Summarizer == nil {
		return nil, fmt.Errorf("summarizer is required")
	}
	return &Indexer{ledger: deps.Ledger, summarizer: deps.Summarizer}, nil
}

// Build extracts, summarizes, and link-resolves one session without
// touching the ledger. Backfill workers call it directly so a single
// consumer can serialize the writes.
func (ix *Indexer) Build(ctx context.Context, sessionID, transcriptPath string) (store.IndexEntry, error) {
	meta, err := metadata.Extract(transcriptPath, sessionID)
	if err != nil {
		return store.IndexEntry{}, fmt.Errorf("failed to extract metadata for %s: %w", sessionID, err)
	}

	summaryText := ix.summarizer.Summarize(ctx, meta)

	continues, err := ix.ledger.ResolveContinuation(meta.ReferencedPlanPaths, meta.Slug)
	if err != nil {
		// A damaged index loses the link, not the entry.
		slog.Warn("continuation resolution failed", "session_id", sessionID, "error", err)
		continues = ""
	}
	if continues == sessionID {
		// Re-indexing a plan session that read its own plan must not
		// link it to itself.
		continues = ""
	}

	return store.IndexEntry{
		SessionID:        sessionID,
		Timestamp:        meta.TimestampEnd,
		Summary:          summaryText,
		PlanMode:         meta.PlanMode,
		PlanPaths:        meta.PlanPaths,
		MadeEdits:        meta.MadeEdits,
		ContinuesSession: continues,
	}, nil
}

// Index builds the entry and writes it, replacing any previous entry
// for the session so re-indexing stays idempotent.
func (ix *Indexer) Index(ctx context.Context, sessionID, transcriptPath string) (store.IndexEntry, error) {
	entry, err := ix.Build(ctx, sessionID, transcriptPath)
	if err != nil {
		return store.IndexEntry{}, err
	}
	if err := ix.ledger.Replace(entry); err != nil {
		return store.IndexEntry{}, fmt.Errorf("failed to write index entry for %s: %w", sessionID, err)
	}
	return entry, nil
}
