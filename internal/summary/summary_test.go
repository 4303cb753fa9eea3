package summary

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurfaceLayerAI/surface-plugin/internal/config"
	"github.com/SurfaceLayerAI/surface-plugin/internal/errors"
	"github.com/SurfaceLayerAI/surface-plugin/internal/metadata"
)

func testMeta() *metadata.SessionMetadata {
	return &metadata.SessionMetadata{
		SessionID:      "sess-1",
		InitialRequest: "Build the auth system",
		UserMessages:   []string{"Build the auth system"},
		PlanPaths:      []string{"/home/dev/.claude/plans/auth.md"},
		PlanMode:       true,
	}
}

// fakeClaude writes an executable script standing in for the claude
// binary and returns a summarizer configured to run it.
func fakeClaude(t *testing.T, script string) *ClaudeCLI {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-claude.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return NewClaudeCLI(config.SummarizerConfig{Command: path, Model: "haiku", TimeoutSeconds: 5})
}

func TestStructuralFallback(t *testing.T) {
	// Given: metadata with a request and one plan file
	meta := testMeta()

	// When/Then: the fallback is fully deterministic
	assert.Equal(t,
		"Session worked on: Build the auth system. Plan files: /home/dev/.claude/plans/auth.md.",
		StructuralFallback(meta))
}

func TestStructuralFallbackNoPlans(t *testing.T) {
	meta := testMeta()
	meta.PlanPaths = nil
	assert.Equal(t, "Session worked on: Build the auth system. Plan files: none.",
		StructuralFallback(meta))
}

func TestStructuralFallbackEmptyRequest(t *testing.T) {
	meta := &metadata.SessionMetadata{SessionID: "sess-1"}
	assert.Equal(t, "Session worked on: unknown task. Plan files: none.",
		StructuralFallback(meta))
}

func TestStructuralFallbackTruncatesRequest(t *testing.T) {
	// Given: a request longer than the excerpt cap
	meta := testMeta()
	meta.InitialRequest = strings.Repeat("x", 250)

	// When: building the fallback
	got := StructuralFallback(meta)

	// Then: only the first 100 characters survive
	assert.Contains(t, got, strings.Repeat("x", 100)+". Plan files:")
	assert.NotContains(t, got, strings.Repeat("x", 101))
}

func TestDisabledSummarizer(t *testing.T) {
	got := Disabled{}.Summarize(context.Background(), testMeta())
	assert.Equal(t, StructuralFallback(testMeta()), got)
}

func TestNewSelectsDisabled(t *testing.T) {
	s := New(config.SummarizerConfig{Command: "claude", Model: "haiku", TimeoutSeconds: 30, Disabled: true})
	_, isDisabled := s.(Disabled)
	assert.True(t, isDisabled)

	s = New(config.SummarizerConfig{Command: "claude", Model: "haiku", TimeoutSeconds: 30})
	_, isCLI := s.(*ClaudeCLI)
	assert.True(t, isCLI)
}

func TestClaudeCLISuccess(t *testing.T) {
	// Given: a fake binary echoing the recursion guard and model arg
	cli := fakeClaude(t, `echo "guard=$SURFACE_INDEXING model=$4"`)

	// When: summarizing
	got := cli.Summarize(context.Background(), testMeta())

	// Then: the subprocess ran with the guard set and the model passed
	assert.Equal(t, "guard=1 model=haiku", got)
}

func TestClaudeCLITrimsOutput(t *testing.T) {
	cli := fakeClaude(t, `printf "  a tidy summary \n\n"`)
	assert.Equal(t, "a tidy summary", cli.Summarize(context.Background(), testMeta()))
}

func TestClaudeCLIMissingBinaryFallsBack(t *testing.T) {
	// Given: a command that does not exist
	cli := NewClaudeCLI(config.SummarizerConfig{
		Command: filepath.Join(t.TempDir(), "no-such-claude"), Model: "haiku", TimeoutSeconds: 5})

	// When/Then: the structural fallback comes back
	assert.Equal(t, StructuralFallback(testMeta()), cli.Summarize(context.Background(), testMeta()))
}

func TestClaudeCLINonzeroExitFallsBack(t *testing.T) {
	cli := fakeClaude(t, `exit 3`)
	assert.Equal(t, StructuralFallback(testMeta()), cli.Summarize(context.Background(), testMeta()))
}

func TestClaudeCLIEmptyOutputFallsBack(t *testing.T) {
	cli := fakeClaude(t, `exit 0`)
	assert.Equal(t, StructuralFallback(testMeta()), cli.Summarize(context.Background(), testMeta()))
}

func TestClaudeCLICircuitOpensAfterRepeatedFailures(t *testing.T) {
	// Given: a summarizer whose binary always fails
	cli := fakeClaude(t, `exit 1`)

	// When: enough sessions fail in a row
	for i := 0; i < 5; i++ {
		cli.Summarize(context.Background(), testMeta())
	}

	// Then: the circuit is open and further calls skip the subprocess
	assert.Equal(t, errors.StateOpen, cli.breaker.State())
	assert.Equal(t, StructuralFallback(testMeta()), cli.Summarize(context.Background(), testMeta()))
}
