package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SurfaceLayerAI/surface-plugin/internal/output"
	"github.com/SurfaceLayerAI/surface-plugin/internal/search"
	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	project   string
	limit     int
	plansOnly bool
	format    string // "text", "json"
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed sessions",
		Long: `Search session summaries, plan paths, and session ids.

The query matches summary text (weighted highest), plan file paths,
and session id prefixes.

Examples:
  surface search "auth token refresh"
  surface search migration --plans
  surface search "cache eviction" --limit 5 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().StringVar(&opts.project, "project", "", "Project directory (default: auto-detected)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", search.DefaultLimit, "Maximum number of results")
	cmd.Flags().BoolVar(&opts.plansOnly, "plans", false, "Only sessions that wrote a plan")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	cleanup := setupCommandLogging()
	defer cleanup()

	slog.Info("search started", slog.String("query", query), slog.Int("limit", opts.limit))
	out := output.New(cmd.OutOrStdout())

	projectDir := resolveProjectDir(opts.project)
	ledger := store.NewLedger(filepath.Join(projectDir, ".surface"))
	if !fileExists(ledger.Path()) {
		return fmt.Errorf("no session index found in %s\nRun 'surface backfill' to create one", projectDir)
	}

	entries, err := ledger.Sessions()
	if err != nil {
		return fmt.Errorf("failed to load session index: %w", err)
	}

	results, err := search.Search(ctx, entries, query, search.Options{
		Limit:     opts.limit,
		PlansOnly: opts.plansOnly,
	})
	if err != nil {
		return err
	}
	slog.Info("search complete", slog.Int("results", len(results)))

	if len(results) == 0 {
		out.Status("", fmt.Sprintf("No results found for %q", query))
		return nil
	}

	switch opts.format {
	case "json":
		return formatSearchJSON(cmd, results)
	default:
		return formatSearchText(out, query, results)
	}
}

// formatSearchText outputs results in human-readable format.
func formatSearchText(out *output.Writer, query string, results []search.Result) error {
	out.Statusf("🔍", "Found %d results for %q:", len(results), query)
	out.Newline()

	for i, r := range results {
		out.Statusf("", "%d. %s (score: %.2f)", i+1, r.Entry.SessionID, r.Score)
		if r.Entry.Summary != "" {
			out.Status("", "   "+truncateText(r.Entry.Summary, 100))
		}
		if len(r.Entry.PlanPaths) > 0 {
			out.Status("", "   plans: "+strings.Join(r.Entry.PlanPaths, ", "))
		}
		out.Newline()
	}

	return nil
}

// formatSearchJSON outputs results in JSON format.
func formatSearchJSON(cmd *cobra.Command, results []search.Result) error {
	type jsonResult struct {
		SessionID        string   `json:"session_id"`
		Timestamp        string   `json:"timestamp,omitempty"`
		Summary          string   `json:"summary,omitempty"`
		PlanMode         bool     `json:"plan_mode,omitempty"`
		PlanPaths        []string `json:"plan_paths,omitempty"`
		MadeEdits        bool     `json:"made_edits,omitempty"`
		ContinuesSession string   `json:"continues_session,omitempty"`
		Score            float64  `json:"score"`
	}

	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		out = append(out, jsonResult{
			SessionID:        r.Entry.SessionID,
			Timestamp:        r.Entry.Timestamp,
			Summary:          r.Entry.Summary,
			PlanMode:         r.Entry.PlanMode,
			PlanPaths:        r.Entry.PlanPaths,
			MadeEdits:        r.Entry.MadeEdits,
			ContinuesSession: r.Entry.ContinuesSession,
			Score:            r.Score,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
