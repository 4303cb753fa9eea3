package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	surferrors "github.com/SurfaceLayerAI/surface-plugin/internal/errors"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
)

func TestIndexCmd_RequiresSessionArg(t *testing.T) {
	// Given: an index command with no session id

	// When: executing
	_, err := runRootCmd(t, "index")

	// Then: cobra rejects the call
	require.Error(t, err)
}

func TestIndexCmd_MissingTranscript(t *testing.T) {
	// Given: a session id with no transcript on disk
	setupTestHome(t)
	project := t.TempDir()

	// When: indexing it
	_, err := runRootCmd(t, "index", "sess-ghost", "--project", project)

	// Then: the error carries the transcript-not-found code
	require.Error(t, err)
	assert.Equal(t, surferrors.ErrCodeTranscriptNotFound, surferrors.GetCode(err))
}

func TestIndexCmd_IndexesSession(t *testing.T) {
	// Given: a transcript under the project's session directory
	setupTestHome(t)
	project := t.TempDir()
	writeTranscript(t, transcriptDir(t, project), "sess-index",
		userLine("2025-06-01T10:00:00Z", "Wire the metrics endpoint into the gateway"),
		planWriteLine("2025-06-01T10:05:00Z", "/home/u/.claude/plans/metrics-endpoint.md"),
	)

	// When: indexing by id
	output, err := runRootCmd(t, "index", "sess-index", "--project", project, "--no-summary")

	// Then: the ledger holds the entry and the command reports it
	require.NoError(t, err)
	assert.Contains(t, output, "Indexed session sess-index")

	ledger := store.NewLedger(filepath.Join(project, ".surface"))
	entry, found, err := ledger.Get("sess-index")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, entry.PlanMode)
	assert.Equal(t, []string{"/home/u/.claude/plans/metrics-endpoint.md"}, entry.PlanPaths)
}

func TestIndexCmd_ReindexReplacesEntry(t *testing.T) {
	// Given: a session already in the ledger
	setupTestHome(t)
	project := t.TempDir()
	dir := transcriptDir(t, project)
	writeTranscript(t, dir, "sess-again",
		userLine("2025-06-01T10:00:00Z", "Draft the rollout checklist"),
	)
	_, err := runRootCmd(t, "index", "sess-again", "--project", project, "--no-summary")
	require.NoError(t, err)

	// When: the transcript grows a plan write and is re-indexed
	writeTranscript(t, dir, "sess-again",
		userLine("2025-06-01T10:00:00Z", "Draft the rollout checklist"),
		planWriteLine("2025-06-01T10:10:00Z", "/home/u/.claude/plans/rollout.md"),
	)
	_, err = runRootCmd(t, "index", "sess-again", "--project", project, "--no-summary")
	require.NoError(t, err)

	// Then: one entry remains, with the fresh plan state
	ledger := store.NewLedger(filepath.Join(project, ".surface"))
	entries, err := ledger.Sessions()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].PlanMode)
}
