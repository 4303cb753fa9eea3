// Package transcript parses JSON-lines session transcripts into typed
// entries and content blocks. Parsing is best-effort per line: a
// malformed line never aborts a scan.
package transcript

import (
	"encoding/json"
	"strings"
)

// Entry types observed in transcripts. Other types pass through
// untouched; extractors match on the ones they care about.
const (
	TypeUser      = "user"
	TypeAssistant = "assistant"
	TypeProgress  = "progress"
)

// Content block types.
const (
	BlockText     = "text"
	BlockToolUse  = "tool_use"
	BlockThinking = "thinking"
)

// systemMarkers are CLI-injected substrings that mark a user entry as
// synthetic rather than genuine user input.
var systemMarkers = []string{
	"<local-command-caveat>",
	"<local-command-stdout>",
	"<command-name>",
}

// Entry is one parsed transcript line.
//
// Timestamp stays a raw RFC3339 string: entries are merged and sorted
// lexically, which matches chronological order for a uniform offset.
type Entry struct {
	Type            string          `json:"type"`
	Timestamp       string          `json:"timestamp,omitempty"`
	Message         *Message        `json:"message,omitempty"`
	IsMeta          bool            `json:"isMeta,omitempty"`
	Slug            string          `json:"slug,omitempty"`
	ParentToolUseID string          `json:"parentToolUseID,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
}

// Message is the message payload of a user or assistant entry.
// Content is deferred because it may be a plain string or an array of
// content blocks; ContentBlocks normalizes both shapes.
type Message struct {
	Role    string          `json:"role,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// ContentBlock represents one block in a message's content array.
// Blocks are a tagged variant:
//   - "text": Text carries the content
//   - "thinking": Thinking carries the content
//   - "tool_use": ID, Name, Input describe the invocation
type ContentBlock struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	Thinking string         `json:"thinking,omitempty"`
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Input    map[string]any `json:"input,omitempty"`
}

// InputString returns the string value for key in a tool_use block's
// input, or "" when absent or not a string.
func (b *ContentBlock) InputString(key string) string {
	if b.Input == nil {
		return ""
	}
	s, _ := b.Input[key].(string)
	return s
}

// ContentBlocks normalizes the entry's message content into a block
// slice. A plain-string content becomes a single synthetic text block.
// Array elements that fail to decode are dropped rather than failing
// the whole entry.
func (e *Entry) ContentBlocks() []ContentBlock {
	if e.Message == nil || len(e.Message.Content) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(e.Message.Content, &s); err == nil {
		return []ContentBlock{{Type: BlockText, Text: s}}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(e.Message.Content, &raw); err != nil {
		return nil
	}

	blocks := make([]ContentBlock, 0, len(raw))
	for _, r := range raw {
		var b ContentBlock
		if err := json.Unmarshal(r, &b); err != nil {
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// IsSystem reports whether the entry is system-injected rather than a
// genuine turn: isMeta entries, and user entries whose text carries a
// CLI marker substring. System entries never count as user input
// downstream.
func (e *Entry) IsSystem() bool {
	if e.IsMeta {
		return true
	}
	if e.Type != TypeUser {
		return false
	}
	for _, b := range e.ContentBlocks() {
		if b.Type != BlockText {
			continue
		}
		for _, marker := range systemMarkers {
			if strings.Contains(b.Text, marker) {
				return true
			}
		}
	}
	return false
}

// UserText concatenates the text of all text blocks in the entry's
// content, space-joined. Returns "" when the content carries no text.
func (e *Entry) UserText() string {
	var parts []string
	for _, b := range e.ContentBlocks() {
		if b.Type == BlockText && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, " ")
}

// AgentID extracts data.agentId from a progress entry, or "" when the
// data payload is absent or not shaped as expected.
func (e *Entry) AgentID() string {
	if len(e.Data) == 0 {
		return ""
	}
	var d struct {
		AgentID string `json:"agentId"`
	}
	if err := json.Unmarshal(e.Data, &d); err != nil {
		return ""
	}
	return d.AgentID
}
