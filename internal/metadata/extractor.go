package metadata

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/SurfaceLayerAI/surface-plugin/internal/transcript"
)

// planRefRe matches references to plan files of the form
// .../.claude/plans/<name>.md anywhere in user-visible text.
var planRefRe = regexp.MustCompile(`[^\s"'` + "`" + `]*\.claude/plans/[^\s"'` + "`" + `/]+\.md`)

// extractor accumulates state across the single pass.
type extractor struct {
	meta            *SessionMetadata
	timestamps      []string
	budgetRemaining int
	budgetExhausted bool
}

// Extract scans the transcript at path once and returns the session's
// metadata. The transcript must exist; per-line corruption is skipped
// by the reader, never fatal.
func Extract(path, sessionID string) (*SessionMetadata, error) {
	entries, err := transcript.ReadFile(path)
	if err != nil {
		return nil, err
	}

	x := &extractor{
		meta: &SessionMetadata{
			SessionID:           sessionID,
			UserMessages:        []string{},
			PlanPaths:           []string{},
			ReferencedPlanPaths: []string{},
		},
		budgetRemaining: totalMessageBudget,
	}

	for i := range entries {
		x.process(&entries[i])
	}

	if len(x.timestamps) > 0 {
		x.meta.TimestampStart = x.timestamps[0]
		x.meta.TimestampEnd = x.timestamps[len(x.timestamps)-1]
	}

	// Main transcript showed no edits; a subagent may have made them.
	if !x.meta.MadeEdits {
		x.meta.MadeEdits = subagentMadeEdits(path)
	}

	return x.meta, nil
}

func (x *extractor) process(e *transcript.Entry) {
	if e.Timestamp != "" {
		x.timestamps = append(x.timestamps, e.Timestamp)
	}
	if x.meta.Slug == "" && e.Slug != "" {
		x.meta.Slug = e.Slug
	}

	if e.Type == transcript.TypeUser {
		// Plan references are scanned on every user entry, system
		// ones included: slash-command-injected text still carries
		// real plan paths.
		for _, ref := range planRefRe.FindAllString(e.UserText(), -1) {
			x.addReferencedPlan(ref)
		}

		if !e.IsSystem() {
			x.collectUserMessage(e.UserText())
		}
	}

	if e.Type == transcript.TypeAssistant {
		for _, b := range e.ContentBlocks() {
			x.processAssistantBlock(&b)
		}
	}
}

// collectUserMessage applies the noise filter, the per-message cap,
// and the cumulative budget. Once the budget overflows, collection
// stops for the rest of the session.
func (x *extractor) collectUserMessage(text string) {
	if x.budgetExhausted {
		return
	}

	text = strings.TrimSpace(text)
	if text == "" || IsNoiseCommand(text) {
		return
	}

	msg := truncate(text, maxMessageLen)
	msgLen := utf8.RuneCountInString(msg)

	if msgLen > x.budgetRemaining {
		// Keep a prefix only when a useful amount of budget is left,
		// then stop collecting entirely.
		if x.budgetRemaining > minPrefixRemainder {
			x.appendMessage(truncate(msg, x.budgetRemaining))
		}
		x.budgetRemaining = 0
		x.budgetExhausted = true
		return
	}

	x.appendMessage(msg)
	x.budgetRemaining -= msgLen
}

func (x *extractor) appendMessage(msg string) {
	if len(x.meta.UserMessages) == 0 {
		x.meta.InitialRequest = truncate(msg, maxInitialRequest)
	}
	x.meta.UserMessages = append(x.meta.UserMessages, msg)
}

func (x *extractor) processAssistantBlock(b *transcript.ContentBlock) {
	if b.Type != transcript.BlockToolUse {
		return
	}

	filePath := b.InputString("file_path")
	isPlanPath := strings.Contains(strings.ToLower(filePath), "plan")

	switch b.Name {
	case "Write":
		if isPlanPath {
			x.meta.PlanMode = true
			x.addPlanPath(filePath)
		} else {
			x.meta.MadeEdits = true
		}
	case "Edit":
		if !isPlanPath {
			x.meta.MadeEdits = true
		}
	case "Read":
		if strings.Contains(filePath, ".claude/plans/") && strings.HasSuffix(filePath, ".md") {
			x.addReferencedPlan(filePath)
		}
	}
}

func (x *extractor) addPlanPath(path string) {
	for _, p := range x.meta.PlanPaths {
		if p == path {
			return
		}
	}
	x.meta.PlanPaths = append(x.meta.PlanPaths, path)
}

func (x *extractor) addReferencedPlan(path string) {
	for _, p := range x.meta.ReferencedPlanPaths {
		if p == path {
			return
		}
	}
	x.meta.ReferencedPlanPaths = append(x.meta.ReferencedPlanPaths, path)
}

// subagentMadeEdits scans sibling subagents/agent-*.jsonl files in
// name order for a Write or Edit to a non-plan path. The first hit
// settles the question; remaining subagents are not read.
func subagentMadeEdits(transcriptPath string) bool {
	pattern := filepath.Join(filepath.Dir(transcriptPath), "subagents", "agent-*.jsonl")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return false
	}

	for _, subagentPath := range matches {
		found := false
		err := transcript.ScanFile(subagentPath, func(e transcript.Entry) bool {
			if e.Type != transcript.TypeAssistant {
				return true
			}
			for _, b := range e.ContentBlocks() {
				if b.Type != transcript.BlockToolUse {
					continue
				}
				if b.Name != "Write" && b.Name != "Edit" {
					continue
				}
				if !strings.Contains(strings.ToLower(b.InputString("file_path")), "plan") {
					found = true
					return false
				}
			}
			return true
		})
		if err != nil {
			continue
		}
		if found {
			return true
		}
	}
	return false
}
