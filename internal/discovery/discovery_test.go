package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectSlug(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/Users/foo/bar", "-Users-foo-bar"},
		{"/a/b/c", "-a-b-c"},
		{"relative/dir", "relative-dir"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ProjectSlug(tt.path))
		})
	}
}

func TestTranscriptPath(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	path, err := TranscriptPath("ses123", "/Users/foo/bar")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpHome, ".claude", "projects", "-Users-foo-bar", "ses123.jsonl"), path)
}

func TestListSessions_SortedByModTimeDescending(t *testing.T) {
	// Given: two session files with distinct mtimes and a noise subdir
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	dir := filepath.Join(tmpHome, ".claude", "projects", "-proj")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subagents"), 0o755))

	oldPath := filepath.Join(dir, "old-session.jsonl")
	newPath := filepath.Join(dir, "new-session.jsonl")
	require.NoError(t, os.WriteFile(oldPath, []byte("{}\n"), 0o644))
	require.NoError(t, os.WriteFile(newPath, []byte("{}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subagents", "agent-1.jsonl"), []byte("{}\n"), 0o644))

	// Force a clear mtime ordering without sleeping
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	// When: listing sessions for the project
	sessions, err := ListSessions("/proj")

	// Then: only direct .jsonl files, newest first
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "new-session", sessions[0].SessionID)
	assert.Equal(t, "old-session", sessions[1].SessionID)
	assert.Equal(t, newPath, sessions[0].Path)
	assert.True(t, sessions[0].ModTime.After(sessions[1].ModTime))
}

func TestListSessions_MissingDirectoryIsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	sessions, err := ListSessions("/nowhere")

	require.NoError(t, err)
	assert.Empty(t, sessions)
}

// planTaskLine is an assistant entry spawning a Plan subagent.
const planTaskLine = `{"type":"assistant","message":{"content":[{"type":"tool_use","id":"toolu_plan_001","name":"Task","input":{"subagent_type":"Plan","description":"Make a plan"}}]}}`

func writeMainTranscript(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "session.jsonl")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscoverPlanSubagents_MatchesTaskToProgress(t *testing.T) {
	// Given: a Plan Task, its progress entry, and the subagent file
	dir := t.TempDir()
	path := writeMainTranscript(t, dir,
		planTaskLine,
		`{"type":"progress","parentToolUseID":"toolu_plan_001","data":{"agentId":"agent_xyz"}}`,
	)
	subagentFile := filepath.Join(dir, "subagents", "agent-agent_xyz.jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(subagentFile), 0o755))
	require.NoError(t, os.WriteFile(subagentFile, nil, 0o644))

	// When: discovering subagents
	subagents, err := DiscoverPlanSubagents(path)

	// Then: the agent is found with its on-disk path
	require.NoError(t, err)
	require.Len(t, subagents, 1)
	assert.Equal(t, "agent_xyz", subagents[0].AgentID)
	assert.Equal(t, subagentFile, subagents[0].Path)
}

func TestDiscoverPlanSubagents_ProgressBeforeTask(t *testing.T) {
	// Given: the progress entry precedes its Task block
	dir := t.TempDir()
	path := writeMainTranscript(t, dir,
		`{"type":"progress","parentToolUseID":"toolu_plan_001","data":{"agentId":"early_agent"}}`,
		planTaskLine,
	)
	subagentFile := filepath.Join(dir, "subagents", "agent-early_agent.jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(subagentFile), 0o755))
	require.NoError(t, os.WriteFile(subagentFile, nil, 0o644))

	subagents, err := DiscoverPlanSubagents(path)

	// Then: the two-pass scan still matches them
	require.NoError(t, err)
	require.Len(t, subagents, 1)
	assert.Equal(t, "early_agent", subagents[0].AgentID)
}

func TestDiscoverPlanSubagents_MissingFileIsDropped(t *testing.T) {
	dir := t.TempDir()
	path := writeMainTranscript(t, dir,
		planTaskLine,
		`{"type":"progress","parentToolUseID":"toolu_plan_001","data":{"agentId":"missing_agent"}}`,
	)

	subagents, err := DiscoverPlanSubagents(path)

	require.NoError(t, err)
	assert.Empty(t, subagents)
}

func TestDiscoverPlanSubagents_IgnoresNonPlanTasks(t *testing.T) {
	dir := t.TempDir()
	path := writeMainTranscript(t, dir,
		`{"type":"assistant","message":{"content":[{"type":"tool_use","id":"toolu_other","name":"Task","input":{"subagent_type":"Explore"}}]}}`,
		`{"type":"progress","parentToolUseID":"toolu_other","data":{"agentId":"explore_agent"}}`,
	)

	subagents, err := DiscoverPlanSubagents(path)

	require.NoError(t, err)
	assert.Empty(t, subagents)
}

func TestDiscoverPlanSubagents_DuplicateProgressEntriesYieldOneSubagent(t *testing.T) {
	// Given: several progress entries for the same agent
	dir := t.TempDir()
	path := writeMainTranscript(t, dir,
		planTaskLine,
		`{"type":"progress","parentToolUseID":"toolu_plan_001","data":{"agentId":"agent_dup"}}`,
		`{"type":"progress","parentToolUseID":"toolu_plan_001","data":{"agentId":"agent_dup"}}`,
	)
	subagentFile := filepath.Join(dir, "subagents", "agent-agent_dup.jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(subagentFile), 0o755))
	require.NoError(t, os.WriteFile(subagentFile, nil, 0o644))

	subagents, err := DiscoverPlanSubagents(path)

	require.NoError(t, err)
	assert.Len(t, subagents, 1)
}

func TestDiscoverPlanSubagents_MissingTranscript_ReturnsError(t *testing.T) {
	_, err := DiscoverPlanSubagents(filepath.Join(t.TempDir(), "none.jsonl"))
	require.Error(t, err)
}
