package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/SurfaceLayerAI/surface-plugin/configs"
	"github.com/SurfaceLayerAI/surface-plugin/internal/metadata"
)

// frontmatterRe matches a leading YAML frontmatter block.
var frontmatterRe = regexp.MustCompile(`(?s)^---\n.*?\n---\n`)

// TemplateOverridePath returns the state-dir file that replaces the
// embedded prompt template when present.
func TemplateOverridePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "surface", "indexer.md")
}

// loadTemplate returns the prompt template body: the override file
// when readable, the embedded default otherwise. Frontmatter is
// stripped either way.
func loadTemplate(overridePath string) string {
	template := configs.IndexerTemplate
	if overridePath != "" {
		if data, err := os.ReadFile(overridePath); err == nil {
			template = string(data)
		}
	}
	return frontmatterRe.ReplaceAllString(template, "")
}

// BuildPrompt renders the summarizer prompt: the template with
// {metadata} replaced by the session metadata as indented JSON.
func BuildPrompt(meta *metadata.SessionMetadata, overridePath string) (string, error) {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	return strings.ReplaceAll(loadTemplate(overridePath), "{metadata}", string(data)), nil
}
