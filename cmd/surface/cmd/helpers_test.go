package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SurfaceLayerAI/surface-plugin/internal/discovery"
)

// setupTestHome points HOME at a temp dir so ledgers, logs, and
// transcripts stay inside the test sandbox, and disables the
// summarizer subprocess so tests never shell out.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SURFACE_SUMMARIZER_DISABLED", "true")
	return home
}

// transcriptDir returns the transcript directory the discovery layer
// resolves for project under the current test HOME.
func transcriptDir(t *testing.T, project string) string {
	t.Helper()
	dir, err := discovery.SessionsDir(project)
	require.NoError(t, err)
	return dir
}

// writeTranscript writes a JSONL transcript for sessionID into dir and
// returns its path.
func writeTranscript(t *testing.T, dir, sessionID string, lines ...string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, sessionID+".jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func userLine(ts, text string) string {
	return fmt.Sprintf(`{"type":"user","timestamp":%q,"message":{"role":"user","content":[{"type":"text","text":%q}]}}`, ts, text)
}

func planWriteLine(ts, path string) string {
	return fmt.Sprintf(`{"type":"assistant","timestamp":%q,"message":{"role":"assistant","content":[{"type":"tool_use","id":"tu-1","name":"Write","input":{"file_path":%q,"content":"# Plan"}}]}}`, ts, path)
}

func thinkingLine(ts, thought string) string {
	return fmt.Sprintf(`{"type":"assistant","timestamp":%q,"message":{"role":"assistant","content":[{"type":"thinking","thinking":%q}]}}`, ts, thought)
}

// runRootCmd executes the root command with args and returns combined
// output.
func runRootCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(strings.Builder)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
