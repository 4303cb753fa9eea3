package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/SurfaceLayerAI/surface-plugin/internal/config"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
	"github.com/SurfaceLayerAI/surface-plugin/internal/ui"
)

func newStatusCmd() *cobra.Command {
	var (
		project    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session index health",
		Long: `Display information about the project's session index:
  - Session counts (total, plan mode, with edits, linked)
  - Last indexed time
  - Index file size and backups
  - Summarizer availability`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, project, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project directory (default: auto-detected)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, project string, jsonOutput bool) error {
	projectDir := resolveProjectDir(project)
	ledger := store.NewLedger(filepath.Join(projectDir, ".surface"))

	if !fileExists(ledger.Path()) {
		return fmt.Errorf("no session index found in %s\nRun 'surface backfill' to create one", projectDir)
	}

	info, err := collectStatus(projectDir, ledger)
	if err != nil {
		return fmt.Errorf("failed to collect status: %w", err)
	}

	noColor := ui.DetectNoColor()
	renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), noColor)

	if jsonOutput {
		return renderer.RenderJSON(info)
	}

	return renderer.Render(info)
}

func collectStatus(projectDir string, ledger *store.Ledger) (ui.StatusInfo, error) {
	info := ui.StatusInfo{
		ProjectName: filepath.Base(projectDir),
		IndexPath:   ledger.Path(),
	}

	entries, err := ledger.Sessions()
	if err != nil {
		return info, err
	}

	info.TotalSessions = len(entries)
	var lastIndexed time.Time
	for _, e := range entries {
		if e.PlanMode {
			info.PlanSessions++
		}
		if e.MadeEdits {
			info.EditedSessions++
		}
		if e.ContinuesSession != "" {
			info.LinkedSessions++
		}
		if t, err := time.Parse(time.RFC3339, e.Timestamp); err == nil && t.After(lastIndexed) {
			lastIndexed = t
		}
	}
	info.LastIndexed = lastIndexed
	info.IndexSize = getFileSize(ledger.Path())

	backups, err := ledger.ListBackups()
	if err == nil {
		info.Backups = len(backups)
	}

	cfg := loadConfig(projectDir)
	info.SummarizerCommand = cfg.Summarizer.Command
	info.SummarizerModel = cfg.Summarizer.Model
	info.SummarizerStatus = summarizerStatus(cfg.Summarizer)

	return info, nil
}

// summarizerStatus reports whether the summarizer subprocess can run.
func summarizerStatus(cfg config.SummarizerConfig) string {
	if cfg.Disabled {
		return "disabled"
	}
	if _, err := exec.LookPath(cfg.Command); err != nil {
		return "missing"
	}
	return "ready"
}

// getFileSize returns the size of a file in bytes.
func getFileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
