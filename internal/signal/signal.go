// Package signal extracts typed, timestamped review signals from
// session transcripts: user requests and feedback, plan writes and
// revisions, decision-bearing reasoning, and pre-implementation
// exploration.
package signal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Signal type constants.
const (
	UserRequest          = "user_request"
	PlanContent          = "plan_content"
	PlanRevision         = "plan_revision"
	UserFeedback         = "user_feedback"
	ThinkingDecision     = "thinking_decision"
	ExplorationContext   = "exploration_context"
	PlanAgentReasoning   = "plan_agent_reasoning"
	PlanAgentExploration = "plan_agent_exploration"
)

// Signal is one extracted fact. Fields beyond Type and Timestamp are
// variant-specific and omitted when unused.
type Signal struct {
	Type              string `json:"type"`
	Timestamp         string `json:"timestamp,omitempty"`
	AgentID           string `json:"agent_id,omitempty"`
	Path              string `json:"path,omitempty"`
	Content           string `json:"content,omitempty"`
	RevisionNumber    int    `json:"revision_number,omitempty"`
	ToolUseID         string `json:"tool_use_id,omitempty"`
	PrecedingPlanPath string `json:"preceding_plan_path,omitempty"`
	ToolName          string `json:"tool_name,omitempty"`
	InputSummary      string `json:"input_summary,omitempty"`
}

// MergeAndSort combines main-transcript and subagent signals into one
// list ordered by timestamp. The sort is stable and main signals come
// first in the concatenation, so entries sharing a timestamp keep
// main-before-subagent order.
func MergeAndSort(main, subagent []Signal) []Signal {
	merged := make([]Signal, 0, len(main)+len(subagent))
	merged = append(merged, main...)
	merged = append(merged, subagent...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// CountByType tallies signals per type.
func CountByType(signals []Signal) map[string]int {
	counts := make(map[string]int)
	for _, s := range signals {
		counts[s.Type]++
	}
	return counts
}

// Encode renders signals as JSONL, one signal per line.
func Encode(signals []Signal) ([]byte, error) {
	var buf bytes.Buffer
	for _, s := range signals {
		line, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to encode signal: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// WriteFile writes signals as a JSONL file at path, creating parent
// directories as needed. Returns the number of bytes written.
func WriteFile(path string, signals []Signal) (int, error) {
	data, err := Encode(signals)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write signals file: %w", err)
	}
	return len(data), nil
}
