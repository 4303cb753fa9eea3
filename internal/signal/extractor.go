package signal

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/SurfaceLayerAI/surface-plugin/internal/transcript"
)

// decisionRe matches thinking text that weighs alternatives. Any hit
// marks the block as decision-bearing; matches are independent per
// block, never deduplicated.
var decisionRe = regexp.MustCompile(`(?i)alternative|tradeoff|instead|option|chose|decided|rejected|considered|approach`)

// maxInputSummary caps the serialized tool input carried on
// exploration signals.
const maxInputSummary = 200

var explorationTools = map[string]bool{
	"Read": true,
	"Grep": true,
	"Glob": true,
	"Bash": true,
}

var codeWriteTools = map[string]bool{
	"Write": true,
	"Edit":  true,
}

// mainExtractor carries the scan state for one main transcript.
type mainExtractor struct {
	planWriteCounts    map[string]int
	codeWritingStarted bool
	firstUserSeen      bool
	lastPlanToolUseID  string
	lastPlanPath       string
	signals            []Signal
}

// ExtractMain scans a main transcript in order and returns its
// signals in transcript order (not yet merged with subagent signals).
func ExtractMain(entries []transcript.Entry) []Signal {
	x := &mainExtractor{planWriteCounts: make(map[string]int)}
	for i := range entries {
		x.process(&entries[i])
	}
	return x.signals
}

func (x *mainExtractor) process(e *transcript.Entry) {
	if e.Type == transcript.TypeUser && !e.IsSystem() {
		x.processUser(e)
	}
	if e.Type == transcript.TypeAssistant {
		for _, b := range e.ContentBlocks() {
			x.processAssistantBlock(e.Timestamp, &b)
		}
	}
}

// processUser emits the initial request for the first genuine user
// entry, and feedback for later ones once a plan has been written.
func (x *mainExtractor) processUser(e *transcript.Entry) {
	if !x.firstUserSeen {
		x.firstUserSeen = true
		x.signals = append(x.signals, Signal{
			Type:      UserRequest,
			Timestamp: e.Timestamp,
			Content:   e.UserText(),
		})
		return
	}
	if x.lastPlanToolUseID != "" {
		x.signals = append(x.signals, Signal{
			Type:              UserFeedback,
			Timestamp:         e.Timestamp,
			Content:           e.UserText(),
			PrecedingPlanPath: x.lastPlanPath,
		})
	}
}

func (x *mainExtractor) processAssistantBlock(ts string, b *transcript.ContentBlock) {
	// Plan content / plan revision
	if b.Type == transcript.BlockToolUse && b.Name == "Write" {
		filePath := b.InputString("file_path")
		if strings.Contains(strings.ToLower(filePath), "plan") {
			x.planWriteCounts[filePath]++
			count := x.planWriteCounts[filePath]

			sig := Signal{
				Timestamp: ts,
				Path:      filePath,
				Content:   b.InputString("content"),
				ToolUseID: b.ID,
			}
			if count == 1 {
				sig.Type = PlanContent
			} else {
				sig.Type = PlanRevision
				sig.RevisionNumber = count - 1
			}
			x.signals = append(x.signals, sig)

			x.lastPlanToolUseID = b.ID
			x.lastPlanPath = filePath
		}
	}

	// Thinking decisions
	if b.Type == transcript.BlockThinking && decisionRe.MatchString(b.Thinking) {
		x.signals = append(x.signals, Signal{
			Type:      ThinkingDecision,
			Timestamp: ts,
			Content:   b.Thinking,
		})
	}

	// Exploration context, only until real code writing starts. A
	// Write/Edit to a non-plan path flips the flag permanently.
	if b.Type == transcript.BlockToolUse && !x.codeWritingStarted {
		switch {
		case explorationTools[b.Name]:
			x.signals = append(x.signals, Signal{
				Type:         ExplorationContext,
				Timestamp:    ts,
				ToolName:     b.Name,
				InputSummary: summarizeInput(b.Input),
			})
		case codeWriteTools[b.Name]:
			filePath := b.InputString("file_path")
			if !strings.Contains(strings.ToLower(filePath), "plan") {
				x.codeWritingStarted = true
			}
		}
	}
}

// ExtractSubagent scans a plan subagent transcript. Subagents only
// reason and explore: text blocks become reasoning signals, familiar
// read-only tools become exploration signals. No plan-write or
// decision detection applies.
func ExtractSubagent(agentID string, entries []transcript.Entry) []Signal {
	var signals []Signal
	for i := range entries {
		e := &entries[i]
		if e.Type != transcript.TypeAssistant {
			continue
		}
		for _, b := range e.ContentBlocks() {
			switch {
			case b.Type == transcript.BlockText:
				signals = append(signals, Signal{
					Type:      PlanAgentReasoning,
					Timestamp: e.Timestamp,
					AgentID:   agentID,
					Content:   b.Text,
				})
			case b.Type == transcript.BlockToolUse && explorationTools[b.Name]:
				signals = append(signals, Signal{
					Type:         PlanAgentExploration,
					Timestamp:    e.Timestamp,
					AgentID:      agentID,
					ToolName:     b.Name,
					InputSummary: summarizeInput(b.Input),
				})
			}
		}
	}
	return signals
}

// summarizeInput serializes a tool input mapping and truncates it to
// maxInputSummary runes.
func summarizeInput(input map[string]any) string {
	if input == nil {
		input = map[string]any{}
	}
	data, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	return truncate(string(data), maxInputSummary)
}

// truncate limits s to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
