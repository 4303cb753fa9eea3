package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StatusInfo contains session index health information.
type StatusInfo struct {
	// Index stats
	ProjectName    string    `json:"project_name"`
	TotalSessions  int       `json:"total_sessions"`
	PlanSessions   int       `json:"plan_sessions"`
	EditedSessions int       `json:"edited_sessions"`
	LinkedSessions int       `json:"linked_sessions"`
	LastIndexed    time.Time `json:"last_indexed"`

	// Storage
	IndexPath string `json:"index_path"`
	IndexSize int64  `json:"index_size"`
	Backups   int    `json:"backups"`

	// Summarizer status
	SummarizerCommand string `json:"summarizer_command"`
	SummarizerModel   string `json:"summarizer_model,omitempty"`
	SummarizerStatus  string `json:"summarizer_status"` // "ready", "disabled", "missing"
}

// StatusRenderer displays session index status.
type StatusRenderer struct {
	out     io.Writer
	styles  Styles
	noColor bool
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:     out,
		styles:  GetStyles(noColor),
		noColor: noColor,
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	// Header
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Session Index: "+info.ProjectName))

	// Session stats
	_, _ = fmt.Fprintf(r.out, "  Sessions:     %d\n", info.TotalSessions)
	_, _ = fmt.Fprintf(r.out, "  Plan mode:    %d\n", info.PlanSessions)
	_, _ = fmt.Fprintf(r.out, "  With edits:   %d\n", info.EditedSessions)
	_, _ = fmt.Fprintf(r.out, "  Linked:       %d\n", info.LinkedSessions)
	if !info.LastIndexed.IsZero() {
		_, _ = fmt.Fprintf(r.out, "  Last indexed: %s\n", formatTime(info.LastIndexed))
	}
	_, _ = fmt.Fprintln(r.out)

	// Storage
	_, _ = fmt.Fprintln(r.out, "  Storage:")
	_, _ = fmt.Fprintf(r.out, "    Index:   %s\n", FormatBytes(info.IndexSize))
	_, _ = fmt.Fprintf(r.out, "    Path:    %s\n", info.IndexPath)
	_, _ = fmt.Fprintf(r.out, "    Backups: %d\n", info.Backups)
	_, _ = fmt.Fprintln(r.out)

	// Summarizer status
	_, _ = fmt.Fprintln(r.out, "  Summarizer:")
	_, _ = fmt.Fprintf(r.out, "    Command: %s\n", info.SummarizerCommand)
	if info.SummarizerModel != "" {
		_, _ = fmt.Fprintf(r.out, "    Model:   %s\n", info.SummarizerModel)
	}
	_, _ = fmt.Fprintf(r.out, "    Status:  %s\n", r.renderStatus(info.SummarizerStatus))

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "ready":
		return r.styles.Success.Render(status)
	case "disabled":
		return r.styles.Warning.Render(status)
	case "missing":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// formatTime formats a time for display.
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
