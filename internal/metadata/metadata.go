// Package metadata derives per-session structured metadata from a
// transcript: the initial request, a budget-capped message history,
// plan activity, and edit detection. The output feeds the summarizer
// and the session index.
package metadata

import (
	"strings"
	"unicode/utf8"
)

// Collection limits. Message text is measured in runes.
const (
	// maxInitialRequest caps the stored initial user request.
	maxInitialRequest = 500
	// maxMessageLen caps each collected user message.
	maxMessageLen = 800
	// totalMessageBudget caps the cumulative size of user_messages.
	totalMessageBudget = 4000
	// minPrefixRemainder is the smallest budget remnant worth keeping
	// as a truncated prefix of an overflowing message.
	minPrefixRemainder = 50
)

// noiseCommands are CLI slash commands that carry no session content.
// A message matches as an exact command or as the command followed by
// a space and arguments.
var noiseCommands = []string{"/clear", "/compact", "/model", "/cost", "/help", "/exit"}

// SessionMetadata is the structural summary of one session. Field
// names match the JSON handed to the summarizer.
type SessionMetadata struct {
	SessionID           string   `json:"session_id"`
	InitialRequest      string   `json:"initial_request"`
	UserMessages        []string `json:"user_messages"`
	PlanPaths           []string `json:"plan_paths"`
	ReferencedPlanPaths []string `json:"referenced_plan_paths"`
	PlanMode            bool     `json:"plan_mode"`
	MadeEdits           bool     `json:"made_edits"`
	Slug                string   `json:"slug,omitempty"`
	TimestampStart      string   `json:"timestamp_start"`
	TimestampEnd        string   `json:"timestamp_end"`
}

// IsNoiseCommand reports whether text is a bare CLI command rather
// than a substantive user message.
func IsNoiseCommand(text string) bool {
	for _, cmd := range noiseCommands {
		if text == cmd || strings.HasPrefix(text, cmd+" ") {
			return true
		}
	}
	return false
}

// truncate limits s to n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
