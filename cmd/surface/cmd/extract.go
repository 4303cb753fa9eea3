package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/SurfaceLayerAI/surface-plugin/internal/discovery"
	"github.com/SurfaceLayerAI/surface-plugin/internal/errors"
	"github.com/SurfaceLayerAI/surface-plugin/internal/output"
	"github.com/SurfaceLayerAI/surface-plugin/internal/signal"
	"github.com/SurfaceLayerAI/surface-plugin/internal/transcript"
)

// extractOptions holds CLI flags for extract.
type extractOptions struct {
	session string
	project string
	output  string
}

func newExtractCmd() *cobra.Command {
	var opts extractOptions

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract review signals from a session transcript",
		Long: `Extract typed review signals from a session transcript and its plan
subagents: user requests and feedback, plan writes and revisions,
decision-bearing reasoning, and pre-implementation exploration.

Signals are merged across the main transcript and any plan subagent
transcripts, ordered by timestamp, and written as JSONL.

Examples:
  surface extract --session 3f8a2c1e-9b4d-4f6a-8c0e-2d7b5a1c9e3f
  surface extract --session 3f8a2c1e-9b4d-4f6a-8c0e-2d7b5a1c9e3f --output review.jsonl`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtract(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.session, "session", "", "Session id to extract (required)")
	cmd.Flags().StringVar(&opts.project, "project", "", "Project directory (default: auto-detected)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output file (default: <session_id>.signals.jsonl)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runExtract(_ context.Context, cmd *cobra.Command, opts extractOptions) error {
	cleanup := setupCommandLogging()
	defer cleanup()

	out := output.New(cmd.OutOrStdout())
	projectDir := resolveProjectDir(opts.project)

	transcriptPath, err := discovery.TranscriptPath(opts.session, projectDir)
	if err != nil {
		return err
	}
	if !fileExists(transcriptPath) {
		return errors.New(errors.ErrCodeTranscriptNotFound,
			"no transcript found for session "+opts.session, nil).
			WithDetail("path", transcriptPath).
			WithSuggestion("list known sessions with 'surface sessions'")
	}

	entries, err := transcript.ReadFile(transcriptPath)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	mainSignals := signal.ExtractMain(entries)

	subagents, err := discovery.DiscoverPlanSubagents(transcriptPath)
	if err != nil {
		return fmt.Errorf("failed to discover plan subagents: %w", err)
	}
	var subSignals []signal.Signal
	for _, sub := range subagents {
		subEntries, err := transcript.ReadFile(sub.Path)
		if err != nil {
			// A missing or damaged subagent transcript costs its
			// signals, not the run.
			out.Warningf("skipping subagent %s: %v", sub.AgentID, err)
			continue
		}
		subSignals = append(subSignals, signal.ExtractSubagent(sub.AgentID, subEntries)...)
	}

	merged := signal.MergeAndSort(mainSignals, subSignals)

	outPath := opts.output
	if outPath == "" {
		outPath = opts.session + ".signals.jsonl"
	}
	written, err := signal.WriteFile(outPath, merged)
	if err != nil {
		return errors.New(errors.ErrCodeSignalWriteFailed,
			"failed to write signals file", err).
			WithDetail("path", outPath)
	}

	out.Statusf("📝", "Extracted %d signals from session %s", len(merged), opts.session)
	counts := signal.CountByType(merged)
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		out.Statusf("", "%-24s %d", t, counts[t])
	}
	out.Newline()
	out.Statusf("", "Estimated tokens: ~%d", written/4)
	out.Successf("Wrote %s", outPath)

	return nil
}
