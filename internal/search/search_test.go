package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurfaceLayerAI/surface-plugin/internal/errors"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
)

func TestSearchMatchesSummary(t *testing.T) {
	// Given: two indexed sessions with distinct summaries
	entries := []store.IndexEntry{
		{SessionID: "sess-auth", Summary: "Fixed the authentication token refresh loop"},
		{SessionID: "sess-ui", Summary: "Tightened spacing in the settings panel"},
	}

	// When: searching for a summary keyword
	results, err := Search(context.Background(), entries, "authentication", Options{})

	// Then: only the matching session comes back
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sess-auth", results[0].Entry.SessionID)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestSearchMatchesPlanPath(t *testing.T) {
	// Given: a plan session whose summary never mentions the plan topic
	entries := []store.IndexEntry{
		{
			SessionID: "sess-plan",
			Summary:   "Drafted the rollout steps",
			PlanMode:  true,
			PlanPaths: []string{"/home/dev/.claude/plans/db-migration.md"},
		},
		{SessionID: "sess-other", Summary: "Bumped dependency versions"},
	}

	// When: searching for a term that only appears in the plan path
	results, err := Search(context.Background(), entries, "migration", Options{})

	// Then: the plan session is found via its path
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sess-plan", results[0].Entry.SessionID)
}

func TestSearchRanksSummaryAbovePlanPath(t *testing.T) {
	// Given: one session matching in its summary, another only in a plan path
	entries := []store.IndexEntry{
		{
			SessionID: "sess-path-hit",
			Summary:   "Wired the new storage backend",
			PlanMode:  true,
			PlanPaths: []string{"/home/dev/.claude/plans/cache-layer.md"},
		},
		{SessionID: "sess-summary-hit", Summary: "Rebuilt the cache eviction policy for thumbnails"},
	}

	// When: searching the shared keyword
	results, err := Search(context.Background(), entries, "cache", Options{})

	// Then: both match and the summary hit ranks first
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "sess-summary-hit", results[0].Entry.SessionID)
	assert.Equal(t, "sess-path-hit", results[1].Entry.SessionID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchSessionIDPrefix(t *testing.T) {
	// Given: sessions identified by UUIDs
	entries := []store.IndexEntry{
		{SessionID: "b2a4f1c8-3d5e-4f6a-8b9c-0d1e2f3a4b5c", Summary: "Refactored the importer"},
		{SessionID: "77310a9a-1f22-4d10-9d33-55c2f0e1aa04", Summary: "Fixed flaky watcher test"},
	}

	// When: searching by the first id segment
	results, err := Search(context.Background(), entries, "b2a4f1c8", Options{})

	// Then: the id prefix resolves to that session
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b2a4f1c8-3d5e-4f6a-8b9c-0d1e2f3a4b5c", results[0].Entry.SessionID)
}

func TestSearchPlansOnly(t *testing.T) {
	// Given: a plan session and a regular session on the same topic
	entries := []store.IndexEntry{
		{SessionID: "sess-impl", Summary: "Implemented the auth token refresh"},
		{SessionID: "sess-plan", Summary: "Planned the auth token refresh", PlanMode: true},
	}

	// When: searching with the plans-only filter
	results, err := Search(context.Background(), entries, "auth", Options{PlansOnly: true})

	// Then: the regular session is excluded
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sess-plan", results[0].Entry.SessionID)
	assert.True(t, results[0].Entry.PlanMode)
}

func TestSearchLimit(t *testing.T) {
	// Given: more matching sessions than the limit allows
	entries := []store.IndexEntry{
		{SessionID: "sess-1", Summary: "Deploy pipeline cleanup"},
		{SessionID: "sess-2", Summary: "Deploy script hardening"},
		{SessionID: "sess-3", Summary: "Deploy rollback tooling"},
	}

	// When: searching with a limit of two
	results, err := Search(context.Background(), entries, "deploy", Options{Limit: 2})

	// Then: only the top two come back
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchLatestEntryWins(t *testing.T) {
	// Given: the same session appended twice, as after a re-index
	entries := []store.IndexEntry{
		{SessionID: "sess-dup", Summary: "first pass"},
		{SessionID: "sess-dup", Summary: "second pass refactor"},
	}

	// When: searching a term from the newer summary
	results, err := Search(context.Background(), entries, "refactor", Options{})

	// Then: the session appears once with the newer summary
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "second pass refactor", results[0].Entry.Summary)
}

func TestSearchEmptyQuery(t *testing.T) {
	// Given: an indexed session
	entries := []store.IndexEntry{
		{SessionID: "sess-1", Summary: "Anything at all"},
	}

	// When: searching with a blank query
	_, err := Search(context.Background(), entries, "   ", Options{})

	// Then: the empty-query error code comes back
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeQueryEmpty, errors.GetCode(err))
}

func TestSearchNoEntries(t *testing.T) {
	// When: searching an empty ledger
	results, err := Search(context.Background(), nil, "anything", Options{})

	// Then: no results and no error
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchNoMatches(t *testing.T) {
	// Given: sessions unrelated to the query
	entries := []store.IndexEntry{
		{SessionID: "sess-1", Summary: "Adjusted retry backoff for uploads"},
	}

	// When: searching a term nothing mentions
	results, err := Search(context.Background(), entries, "kubernetes", Options{})

	// Then: the result set is empty
	require.NoError(t, err)
	assert.Empty(t, results)
}
