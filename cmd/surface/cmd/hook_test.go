package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurfaceLayerAI/surface-plugin/internal/hook"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
)

// runHookCmd executes the hook subcommand with the given stdin.
func runHookCmd(t *testing.T, stdin string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(strings.Builder)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs([]string{"hook"})
	err := cmd.Execute()
	return buf.String(), err
}

func hookEvent(sessionID, transcriptPath, cwd, reason string) string {
	return fmt.Sprintf(`{"session_id":%q,"transcript_path":%q,"cwd":%q,"reason":%q}`,
		sessionID, transcriptPath, cwd, reason)
}

func TestHookCmd_AlwaysPrintsEmptyObject(t *testing.T) {
	// Given: garbage on stdin
	setupTestHome(t)

	// When: running the hook
	output, err := runHookCmd(t, "this is not json")

	// Then: the hook contract holds regardless
	require.NoError(t, err)
	assert.Equal(t, "{}", strings.TrimSpace(output))
}

func TestHookCmd_IndexesSessionOnLogout(t *testing.T) {
	// Given: a finished session with a substantive transcript
	setupTestHome(t)
	project := t.TempDir()
	transcriptPath := writeTranscript(t, transcriptDir(t, project), "sess-logout",
		userLine("2025-06-01T10:00:00Z", "Refactor the retry logic in the uploader"),
	)

	// When: the SessionEnd hook fires with reason logout
	output, err := runHookCmd(t, hookEvent("sess-logout", transcriptPath, project, "logout"))

	// Then: the session lands in the project ledger and stdout stays clean
	require.NoError(t, err)
	assert.Equal(t, "{}", strings.TrimSpace(output))

	ledger := store.NewLedger(filepath.Join(project, ".surface"))
	entry, found, err := ledger.Get("sess-logout")
	require.NoError(t, err)
	require.True(t, found, "session should be indexed")
	assert.Contains(t, entry.Summary, "Refactor the retry logic")
}

func TestHookCmd_SkipsNonTerminalReason(t *testing.T) {
	// Given: a session ending with prompt_input_exit (session continues)
	setupTestHome(t)
	project := t.TempDir()
	transcriptPath := writeTranscript(t, transcriptDir(t, project), "sess-cont",
		userLine("2025-06-01T10:00:00Z", "Add pagination to the admin list"),
	)

	// When: the hook fires
	output, err := runHookCmd(t, hookEvent("sess-cont", transcriptPath, project, "prompt_input_exit"))

	// Then: nothing is indexed
	require.NoError(t, err)
	assert.Equal(t, "{}", strings.TrimSpace(output))

	ledger := store.NewLedger(filepath.Join(project, ".surface"))
	_, found, err := ledger.Get("sess-cont")
	require.NoError(t, err)
	assert.False(t, found, "non-terminal reason should not index")
}

func TestHookCmd_SkipsClearWithoutPlan(t *testing.T) {
	// Given: a /clear ending on a session that never wrote a plan
	setupTestHome(t)
	project := t.TempDir()
	transcriptPath := writeTranscript(t, transcriptDir(t, project), "sess-clear",
		userLine("2025-06-01T10:00:00Z", "Quick question about the build"),
	)

	// When: the hook fires with reason clear
	_, err := runHookCmd(t, hookEvent("sess-clear", transcriptPath, project, "clear"))
	require.NoError(t, err)

	// Then: the session is dropped
	ledger := store.NewLedger(filepath.Join(project, ".surface"))
	_, found, err := ledger.Get("sess-clear")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHookCmd_HonorsRecursionGuard(t *testing.T) {
	// Given: the environment marker set by the indexer's own subprocess
	setupTestHome(t)
	t.Setenv(hook.EnvIndexing, "1")
	project := t.TempDir()
	transcriptPath := writeTranscript(t, transcriptDir(t, project), "sess-guard",
		userLine("2025-06-01T10:00:00Z", "Summarize the previous session"),
	)

	// When: the hook fires for the summarizer's session
	output, err := runHookCmd(t, hookEvent("sess-guard", transcriptPath, project, "logout"))

	// Then: it exits without touching the ledger
	require.NoError(t, err)
	assert.Equal(t, "{}", strings.TrimSpace(output))

	ledger := store.NewLedger(filepath.Join(project, ".surface"))
	_, found, err := ledger.Get("sess-guard")
	require.NoError(t, err)
	assert.False(t, found, "guarded hook must not index")
}
