// Package hook decodes SessionEnd events from the host assistant and
// decides whether a finished session is worth indexing.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/SurfaceLayerAI/surface-plugin/internal/metadata"
	"github.com/SurfaceLayerAI/surface-plugin/internal/transcript"
)

// EnvIndexing marks processes spawned by the indexer itself. The hook
// exits immediately when it is set, so the summarizer's own assistant
// subprocess never triggers a second round of indexing.
const EnvIndexing = "SURFACE_INDEXING"

// Reasons carried by SessionEnd events.
const (
	ReasonClear                     = "clear"
	ReasonLogout                    = "logout"
	ReasonPromptInputExit           = "prompt_input_exit"
	ReasonBypassPermissionsDisabled = "bypass_permissions_disabled"
)

// Event is the SessionEnd payload delivered on stdin.
type Event struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	CWD            string `json:"cwd"`
	Reason         string `json:"reason"`
}

// ParseEvent decodes a SessionEnd event from r.
func ParseEvent(r io.Reader) (Event, error) {
	var ev Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode hook event: %w", err)
	}
	return ev, nil
}

// ShouldIndex decides whether the ended session gets indexed. Rules,
// in order:
//
//  1. prompt_input_exit and bypass_permissions_disabled are not
//     terminal; the session continues, so never index on them.
//  2. logout always indexes.
//  3. clear indexes only when the transcript shows plan activity.
//  4. Anything else indexes only when the transcript holds at least
//     one substantive user message.
//
// A missing or unreadable transcript means no for rules 3 and 4.
func ShouldIndex(ev Event) bool {
	switch ev.Reason {
	case ReasonPromptInputExit, ReasonBypassPermissionsDisabled:
		return false
	case ReasonLogout:
		return true
	case ReasonClear:
		return hasPlanWrite(ev.TranscriptPath)
	default:
		return hasSubstantiveUserMessage(ev.TranscriptPath)
	}
}

// WorthIndexing applies the transcript-only checks used when no end
// reason is available, as in backfill: a session qualifies when it
// holds a substantive user message or shows plan activity.
func WorthIndexing(transcriptPath string) bool {
	return hasSubstantiveUserMessage(transcriptPath) || hasPlanWrite(transcriptPath)
}

// hasPlanWrite reports whether any assistant entry writes a plan file.
func hasPlanWrite(path string) bool {
	found := false
	err := transcript.ScanFile(path, func(e transcript.Entry) bool {
		if e.Type != transcript.TypeAssistant {
			return true
		}
		for _, block := range e.ContentBlocks() {
			if block.Type != transcript.BlockToolUse || block.Name != "Write" {
				continue
			}
			if strings.Contains(strings.ToLower(block.InputString("file_path")), "plan") {
				found = true
				return false
			}
		}
		return true
	})
	return err == nil && found
}

// hasSubstantiveUserMessage reports whether any non-system user entry
// carries text that is neither empty nor a noise command.
func hasSubstantiveUserMessage(path string) bool {
	found := false
	err := transcript.ScanFile(path, func(e transcript.Entry) bool {
		if e.Type != transcript.TypeUser || e.IsSystem() {
			return true
		}
		text := strings.TrimSpace(e.UserText())
		if text == "" || metadata.IsNoiseCommand(text) {
			return true
		}
		found = true
		return false
	})
	return err == nil && found
}
