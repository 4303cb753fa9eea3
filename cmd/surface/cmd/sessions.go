package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SurfaceLayerAI/surface-plugin/internal/store"
)

func newSessionsCmd() *cobra.Command {
	var (
		project   string
		plansOnly bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List indexed sessions",
		Long: `List the sessions in the project ledger, most recent first.

Examples:
  # List all indexed sessions
  surface sessions

  # The four most recent sessions that produced a plan
  surface sessions --plans --limit 4

  # The continuation chain around one session
  surface sessions linked 3f8a2c1e-9b4d-4f6a-8c0e-2d7b5a1c9e3f`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSessionsList(cmd, project, plansOnly, limit)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project directory (default: auto-detected)")
	cmd.Flags().BoolVar(&plansOnly, "plans", false, "Only sessions that wrote a plan")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum sessions to show (0 = all)")

	cmd.AddCommand(newSessionsLinkedCmd())

	return cmd
}

func newSessionsLinkedCmd() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "linked SESSION_ID",
		Short: "Show the continuation chain around a session",
		Long: `Show every session linked to the given one through plan
continuation, in both directions: the plan sessions it continues and
the later sessions that continue it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsLinked(cmd, project, args[0])
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project directory (default: auto-detected)")

	return cmd
}

func runSessionsList(cmd *cobra.Command, project string, plansOnly bool, limit int) error {
	projectDir := resolveProjectDir(project)
	ledger := store.NewLedger(filepath.Join(projectDir, ".surface"))

	var (
		entries []store.IndexEntry
		err     error
	)
	if plansOnly {
		entries, err = ledger.RecentPlanSessions(limit)
	} else {
		entries, err = ledger.Sessions()
	}
	if err != nil {
		return fmt.Errorf("failed to load session index: %w", err)
	}

	if !plansOnly {
		// Timestamps are RFC 3339, so string order is time order.
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Timestamp > entries[j].Timestamp
		})
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No sessions indexed.")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "")
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Index existing transcripts with: surface backfill")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SESSION\tWHEN\tPLAN\tEDITS\tSUMMARY")
	_, _ = fmt.Fprintln(w, "-------\t----\t----\t-----\t-------")

	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.SessionID,
			formatEntryTime(e.Timestamp),
			yesNo(e.PlanMode),
			yesNo(e.MadeEdits),
			truncateText(e.Summary, 60))
	}
	_ = w.Flush()

	return nil
}

func runSessionsLinked(cmd *cobra.Command, project, sessionID string) error {
	projectDir := resolveProjectDir(project)
	ledger := store.NewLedger(filepath.Join(projectDir, ".surface"))

	ids, err := ledger.LinkedSessions(sessionID)
	if err != nil {
		return fmt.Errorf("failed to resolve linked sessions: %w", err)
	}
	if len(ids) == 1 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Session %s is not linked to any other session.\n", sessionID)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SESSION\tWHEN\tCONTINUES\tSUMMARY")
	_, _ = fmt.Fprintln(w, "-------\t----\t---------\t-------")

	for _, id := range ids {
		entry, found, err := ledger.Get(id)
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", id, err)
		}
		marker := ""
		if id == sessionID {
			marker = " *"
		}
		if !found {
			_, _ = fmt.Fprintf(w, "%s%s\t-\t-\t(not indexed)\n", id, marker)
			continue
		}
		continues := entry.ContinuesSession
		if continues == "" {
			continues = "-"
		}
		_, _ = fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n",
			id, marker,
			formatEntryTime(entry.Timestamp),
			continues,
			truncateText(entry.Summary, 50))
	}
	_ = w.Flush()

	return nil
}

// yesNo renders a boolean flag for table output.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}

// formatEntryTime renders an index timestamp as a relative age,
// falling back to the raw string when it does not parse.
func formatEntryTime(ts string) string {
	if ts == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return formatTimeAgo(t)
}

// formatTimeAgo formats a time as a human-readable "time ago" string.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}
