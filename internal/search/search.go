// Package search ranks indexed sessions against free-text queries.
//
// The session ledger is small (one row per session), so rather than
// maintaining a persistent search index alongside it, every query
// builds a throwaway in-memory Bleve index from the current entries
// and discards it afterwards. The JSONL ledger stays the only source
// of truth on disk.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/SurfaceLayerAI/surface-plugin/internal/errors"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
)

// DefaultLimit caps result count when Options.Limit is unset.
const DefaultLimit = 10

// Options configures a search.
type Options struct {
	// Limit caps the number of results. Zero means DefaultLimit.
	Limit int

	// PlansOnly restricts results to plan-mode sessions.
	PlansOnly bool
}

// Result is one ranked session.
type Result struct {
	Entry store.IndexEntry
	Score float64
}

// sessionDocument is the indexed shape of one ledger entry.
type sessionDocument struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary"`
	PlanPaths string `json:"plan_paths"`
}

// Search ranks entries against queryStr and returns the best matches.
// Entries sharing a session id collapse to the last one given, matching
// the ledger's latest-wins read semantics.
func Search(ctx context.Context, entries []store.IndexEntry, queryStr string, opts Options) ([]Result, error) {
	queryStr = strings.TrimSpace(queryStr)
	if queryStr == "" {
		return nil, errors.New(errors.ErrCodeQueryEmpty, "search query is empty", nil).
			WithSuggestion("pass a keyword, e.g. surface search \"auth refactor\"")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	idx, err := bleve.NewMemOnly(createIndexMapping())
	if err != nil {
		return nil, errors.New(errors.ErrCodeSearchFailed, "failed to create search index", err)
	}
	defer func() { _ = idx.Close() }()

	byID := make(map[string]store.IndexEntry, len(entries))
	batch := idx.NewBatch()
	for _, e := range entries {
		if opts.PlansOnly && !e.PlanMode {
			continue
		}
		byID[e.SessionID] = e
		doc := sessionDocument{
			SessionID: e.SessionID,
			Summary:   e.Summary,
			PlanPaths: strings.Join(e.PlanPaths, " "),
		}
		// Re-indexing the same id overwrites the earlier document.
		if err := batch.Index(e.SessionID, doc); err != nil {
			return nil, fmt.Errorf("failed to index session %s: %w", e.SessionID, err)
		}
	}
	if batch.Size() == 0 {
		return nil, nil
	}
	if err := idx.Batch(batch); err != nil {
		return nil, errors.New(errors.ErrCodeSearchFailed, "failed to build search index", err)
	}

	res, err := idx.SearchInContext(ctx, buildRequest(queryStr, limit))
	if err != nil {
		return nil, errors.New(errors.ErrCodeSearchFailed, "search failed", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		entry, ok := byID[hit.ID]
		if !ok {
			continue
		}
		results = append(results, Result{Entry: entry, Score: hit.Score})
	}
	return results, nil
}

// createIndexMapping builds the mapping for session documents. Session
// ids use the keyword analyzer so a whole id stays one term and prefix
// lookups against it work; the other fields keep the standard analyzer.
func createIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("session_id", idField)
	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

// buildRequest assembles the ranked query: summaries carry the most
// signal, so they outweigh plan-path hits, and an id prefix matches the
// session directly.
func buildRequest(queryStr string, limit int) *bleve.SearchRequest {
	summaryQuery := bleve.NewMatchQuery(queryStr)
	summaryQuery.SetField("summary")
	summaryQuery.SetBoost(2.0)

	pathQuery := bleve.NewMatchQuery(queryStr)
	pathQuery.SetField("plan_paths")

	idQuery := bleve.NewPrefixQuery(strings.ToLower(queryStr))
	idQuery.SetField("session_id")

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(summaryQuery, pathQuery, idQuery))
	req.Size = limit
	return req
}
