// Package discovery maps project directories to their session
// transcript locations and finds plan subagent transcripts.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/SurfaceLayerAI/surface-plugin/internal/transcript"
)

// ProjectSlug converts a filesystem path to the session directory
// slug by replacing every path separator with a hyphen.
// "/Users/foo/bar" becomes "-Users-foo-bar".
func ProjectSlug(projectPath string) string {
	return strings.ReplaceAll(projectPath, "/", "-")
}

// SessionsDir returns the directory holding a project's session
// transcripts: <home>/.claude/projects/<slug>.
func SessionsDir(projectPath string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "projects", ProjectSlug(projectPath)), nil
}

// TranscriptPath returns the expected transcript path for a session.
func TranscriptPath(sessionID, projectPath string) (string, error) {
	dir, err := SessionsDir(projectPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionID+".jsonl"), nil
}

// SessionInfo describes one discovered session transcript.
type SessionInfo struct {
	SessionID string
	Path      string
	ModTime   time.Time
}

// ListSessions lists all session transcripts for a project, most
// recently modified first. A missing sessions directory yields an
// empty list, not an error. Subdirectories (subagents/) are ignored.
func ListSessions(projectPath string) ([]SessionInfo, error) {
	dir, err := SessionsDir(projectPath)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list sessions in %s: %w", dir, err)
	}

	var sessions []SessionInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, SessionInfo{
			SessionID: strings.TrimSuffix(entry.Name(), ".jsonl"),
			Path:      filepath.Join(dir, entry.Name()),
			ModTime:   info.ModTime(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ModTime.After(sessions[j].ModTime)
	})
	return sessions, nil
}

// Subagent is a plan subagent whose transcript exists on disk.
type Subagent struct {
	AgentID string
	Path    string
}

// DiscoverPlanSubagents finds plan subagent transcripts spawned by a
// session. Two passes are required: Task blocks and their progress
// entries have no ordering contract, so ids are collected first and
// matched second. Only subagents whose transcript file exists are
// returned.
func DiscoverPlanSubagents(transcriptPath string) ([]Subagent, error) {
	entries, err := transcript.ReadFile(transcriptPath)
	if err != nil {
		return nil, err
	}

	// First pass: Task tool_use ids with subagent_type == "Plan".
	planTaskIDs := make(map[string]bool)
	for i := range entries {
		e := &entries[i]
		if e.Type != transcript.TypeAssistant {
			continue
		}
		for _, b := range e.ContentBlocks() {
			if b.Type == transcript.BlockToolUse && b.Name == "Task" &&
				b.InputString("subagent_type") == "Plan" && b.ID != "" {
				planTaskIDs[b.ID] = true
			}
		}
	}
	if len(planTaskIDs) == 0 {
		return nil, nil
	}

	// Second pass: progress entries parented by those Tasks.
	seen := make(map[string]bool)
	var agentIDs []string
	for i := range entries {
		e := &entries[i]
		if e.Type != transcript.TypeProgress || !planTaskIDs[e.ParentToolUseID] {
			continue
		}
		if id := e.AgentID(); id != "" && !seen[id] {
			seen[id] = true
			agentIDs = append(agentIDs, id)
		}
	}

	subagentsDir := filepath.Join(filepath.Dir(transcriptPath), "subagents")
	var results []Subagent
	for _, id := range agentIDs {
		path := filepath.Join(subagentsDir, "agent-"+id+".jsonl")
		if _, err := os.Stat(path); err == nil {
			results = append(results, Subagent{AgentID: id, Path: path})
		}
	}
	return results, nil
}
