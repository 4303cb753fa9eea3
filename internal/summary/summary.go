// Package summary turns session metadata into short prose summaries
// for the index. The primary path shells out to the claude CLI in
// print mode; every failure (missing binary, timeout, nonzero exit,
// empty output) degrades to a deterministic structural fallback, so
// Summarize never fails.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/SurfaceLayerAI/surface-plugin/internal/metadata"
)

// maxFallbackRequest caps the initial-request excerpt in the
// structural fallback.
const maxFallbackRequest = 100

// Summarizer produces a prose summary from session metadata.
type Summarizer interface {
	Summarize(ctx context.Context, meta *metadata.SessionMetadata) string
}

// StructuralFallback builds a summary from the metadata alone, used
// whenever the LLM path is unavailable or disabled.
func StructuralFallback(meta *metadata.SessionMetadata) string {
	request := meta.InitialRequest
	if request == "" {
		request = "unknown task"
	}
	request = truncate(request, maxFallbackRequest)

	paths := "none"
	if len(meta.PlanPaths) > 0 {
		paths = strings.Join(meta.PlanPaths, ", ")
	}
	return fmt.Sprintf("Session worked on: %s. Plan files: %s.", request, paths)
}

// Disabled is a Summarizer that always returns the structural
// fallback without spawning anything.
type Disabled struct{}

// Summarize implements Summarizer.
func (Disabled) Summarize(_ context.Context, meta *metadata.SessionMetadata) string {
	return StructuralFallback(meta)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
