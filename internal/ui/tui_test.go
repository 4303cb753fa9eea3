package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTUIRenderer_ReturnsNilForNonTTY(t *testing.T) {
	// Given: a non-TTY buffer
	buf := &bytes.Buffer{}
	cfg := NewConfig(buf)

	// When: creating TUI renderer
	r, err := NewTUIRenderer(cfg)

	// Then: returns error (can't create TUI for non-TTY)
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestBackfillModel_InitialView(t *testing.T) {
	// Given: a new backfill model with properly initialized tracker
	tracker := NewProgressTracker()
	model := newBackfillModel(tracker, "")

	// When: getting initial view
	view := model.View()

	// Then: view shows the discovery stage and the header
	assert.Contains(t, view, "Discovering")
	assert.Contains(t, view, "Surface Backfill")
}

func TestBackfillModel_TitleIncludesProject(t *testing.T) {
	// Given: a model for a specific project
	tracker := NewProgressTracker()
	model := newBackfillModel(tracker, "/home/dev/app")

	// When: rendering view
	view := model.View()

	// Then: the project directory appears in the header
	assert.Contains(t, view, "/home/dev/app")
}

func TestBackfillModel_ProgressDisplay(t *testing.T) {
	// Given: a model with progress
	tracker := NewProgressTracker()
	tracker.SetStage(StageIndexing, 20)
	tracker.Update(5, "sess-a")

	model := newBackfillModel(tracker, "")

	// When: rendering view
	view := model.View()

	// Then: progress counts are shown
	assert.Contains(t, view, "5 / 20")
	assert.Contains(t, view, "sessions")
}

func TestBackfillModel_SessionDisplay(t *testing.T) {
	// Given: a model with a current session
	tracker := NewProgressTracker()
	tracker.SetStage(StageIndexing, 20)
	tracker.Update(1, "b2a4f1c8-3d5e-4f6a-8b9c-0d1e2f3a4b5c")

	model := newBackfillModel(tracker, "")

	// When: rendering view
	view := model.View()

	// Then: the session ID is shown
	assert.Contains(t, view, "b2a4f1c8-3d5e-4f6a-8b9c-0d1e2f3a4b5c")
}

func TestBackfillModel_StatusBarShowsFailures(t *testing.T) {
	// Given: a model with errors and warnings
	tracker := NewProgressTracker()
	tracker.AddError(ErrorEvent{
		SessionID: "sess-broken",
		Err:       assert.AnError,
		IsWarn:    false,
	})
	tracker.AddError(ErrorEvent{
		SessionID: "sess-slow",
		Err:       assert.AnError,
		IsWarn:    true,
	})

	model := newBackfillModel(tracker, "")

	// When: rendering view
	view := model.View()

	// Then: failure and warning counts are shown
	assert.Contains(t, view, "1 failed")
	assert.Contains(t, view, "1 warnings")
}

func TestBackfillModel_CompletionState(t *testing.T) {
	// Given: a completed model
	tracker := NewProgressTracker()
	tracker.SetStage(StageComplete, 0)

	model := newBackfillModel(tracker, "")
	model.complete = true
	model.stats = CompletionStats{
		Sessions: 20,
		Indexed:  18,
		Skipped:  2,
		Duration: 3 * time.Second,
	}

	// When: rendering view
	view := model.View()

	// Then: shows completion summary
	assert.Contains(t, view, "Backfill Complete")
	assert.Contains(t, view, "Indexed:")
	assert.Contains(t, view, "18")
	assert.Contains(t, view, "Skipped:")
}

func TestBackfillModel_QuittingView(t *testing.T) {
	// Given: a model that was cancelled
	tracker := NewProgressTracker()
	model := newBackfillModel(tracker, "")
	model.quitting = true

	// When: rendering view
	view := model.View()

	// Then: shows cancellation
	assert.Contains(t, view, "Cancelled")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds", 45 * time.Second, "45s"},
		{"exact minutes", 2 * time.Minute, "2m"},
		{"minutes and seconds", 90 * time.Second, "1m 30s"},
		{"hours", 3*time.Hour + 5*time.Minute, "3h 5m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}

func TestTUIRenderer_InterfaceCompliance(t *testing.T) {
	// Ensure TUIRenderer implements Renderer
	var _ Renderer = (*TUIRenderer)(nil)
}
