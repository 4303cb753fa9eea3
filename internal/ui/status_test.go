package ui

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusInfo_Zero(t *testing.T) {
	// Given: zero-valued status info
	info := StatusInfo{}

	// Then: all fields are zero/empty
	assert.Empty(t, info.ProjectName)
	assert.Equal(t, 0, info.TotalSessions)
	assert.Equal(t, 0, info.PlanSessions)
	assert.True(t, info.LastIndexed.IsZero())
}

func TestStatusInfo_JSONSerialization(t *testing.T) {
	// Given: populated status info
	info := StatusInfo{
		ProjectName:       "test-project",
		TotalSessions:     42,
		PlanSessions:      7,
		EditedSessions:    31,
		LinkedSessions:    5,
		LastIndexed:       time.Date(2026, 2, 15, 10, 30, 0, 0, time.UTC),
		IndexPath:         "/home/dev/.claude/surface/sessions.jsonl",
		IndexSize:         32 * 1024,
		Backups:           3,
		SummarizerCommand: "claude",
		SummarizerModel:   "haiku",
		SummarizerStatus:  "ready",
	}

	// When: serializing to JSON
	data, err := json.Marshal(info)
	require.NoError(t, err)

	// Then: JSON is valid and contains expected fields
	var parsed map[string]any
	err = json.Unmarshal(data, &parsed)
	require.NoError(t, err)

	assert.Equal(t, "test-project", parsed["project_name"])
	assert.Equal(t, float64(42), parsed["total_sessions"])
	assert.Equal(t, float64(7), parsed["plan_sessions"])
	assert.Equal(t, "claude", parsed["summarizer_command"])
	assert.Equal(t, "ready", parsed["summarizer_status"])
}

func TestStatusRenderer_Render_Basic(t *testing.T) {
	// Given: status renderer
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, false)

	// When: rendering status info
	info := StatusInfo{
		ProjectName:       "my-project",
		TotalSessions:     42,
		PlanSessions:      7,
		EditedSessions:    31,
		LinkedSessions:    5,
		LastIndexed:       time.Now(),
		IndexPath:         "/home/dev/.claude/surface/sessions.jsonl",
		IndexSize:         32 * 1024,
		Backups:           3,
		SummarizerCommand: "claude",
		SummarizerModel:   "haiku",
		SummarizerStatus:  "ready",
	}

	err := r.Render(info)
	require.NoError(t, err)

	// Then: output contains key information
	output := buf.String()
	assert.Contains(t, output, "my-project")
	assert.Contains(t, output, "42")
	assert.Contains(t, output, "7")
	assert.Contains(t, output, "claude")
	assert.Contains(t, output, "haiku")
	assert.Contains(t, output, "ready")
	assert.Contains(t, output, "sessions.jsonl")
}

func TestStatusRenderer_RenderJSON(t *testing.T) {
	// Given: status renderer
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, false)

	// When: rendering as JSON
	info := StatusInfo{
		ProjectName:   "json-project",
		TotalSessions: 25,
		PlanSessions:  4,
	}

	err := r.RenderJSON(info)
	require.NoError(t, err)

	// Then: output is valid JSON
	var parsed StatusInfo
	err = json.Unmarshal(buf.Bytes(), &parsed)
	require.NoError(t, err)
	assert.Equal(t, "json-project", parsed.ProjectName)
	assert.Equal(t, 25, parsed.TotalSessions)
}

func TestStatusRenderer_NoColor(t *testing.T) {
	// Given: status renderer with noColor
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	// When: rendering
	info := StatusInfo{
		ProjectName:      "nocolor-project",
		SummarizerStatus: "ready",
	}

	err := r.Render(info)
	require.NoError(t, err)

	// Then: no ANSI codes in output
	output := buf.String()
	assert.NotContains(t, output, "\x1b[")
	assert.NotContains(t, output, "\033[")
}

func TestStatusRenderer_SummarizerDisabled(t *testing.T) {
	// Given: status renderer
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, false)

	// When: rendering with a disabled summarizer
	info := StatusInfo{
		ProjectName:       "disabled-project",
		SummarizerCommand: "claude",
		SummarizerStatus:  "disabled",
	}

	err := r.Render(info)
	require.NoError(t, err)

	// Then: shows disabled status
	output := buf.String()
	assert.Contains(t, output, "disabled")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{1024 * 1024 * 1024, "1.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatBytes(tt.bytes)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFormatTime_Relative(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", time.Now().Add(-10 * time.Second), "just now"},
		{"minutes", time.Now().Add(-5 * time.Minute), "5 minutes ago"},
		{"one hour", time.Now().Add(-1 * time.Hour), "1 hour ago"},
		{"days", time.Now().Add(-48 * time.Hour), "2 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTime(tt.t))
		})
	}
}

func TestStatusRenderer_IndexSize(t *testing.T) {
	// Given: status renderer
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true) // noColor for easier assertion

	// When: rendering with index size
	info := StatusInfo{
		ProjectName: "storage-project",
		IndexSize:   512 * 1024,
		Backups:     2,
	}

	err := r.Render(info)
	require.NoError(t, err)

	// Then: size is human-readable
	output := buf.String()
	assert.Contains(t, output, "512.0 KB")
	assert.Contains(t, output, "Backups: 2")
}
