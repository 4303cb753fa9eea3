package summary

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/SurfaceLayerAI/surface-plugin/internal/config"
	"github.com/SurfaceLayerAI/surface-plugin/internal/errors"
	"github.com/SurfaceLayerAI/surface-plugin/internal/hook"
	"github.com/SurfaceLayerAI/surface-plugin/internal/metadata"
)

// ClaudeCLI summarizes sessions by shelling out to the claude binary
// in print mode. A circuit breaker fails fast to the structural
// fallback once the binary has failed repeatedly, so a broken install
// does not cost a full timeout per session during batch runs.
type ClaudeCLI struct {
	command      string
	model        string
	timeout      time.Duration
	overridePath string
	breaker      *errors.CircuitBreaker
}

// NewClaudeCLI builds the subprocess-backed summarizer from config.
func NewClaudeCLI(cfg config.SummarizerConfig) *ClaudeCLI {
	return &ClaudeCLI{
		command:      cfg.Command,
		model:        cfg.Model,
		timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		overridePath: TemplateOverridePath(),
		breaker:      errors.NewCircuitBreaker("summarizer"),
	}
}

// New returns the Summarizer the config asks for: Disabled when the
// subprocess is turned off, ClaudeCLI otherwise.
func New(cfg config.SummarizerConfig) Summarizer {
	if cfg.Disabled {
		return Disabled{}
	}
	return NewClaudeCLI(cfg)
}

// Summarize runs the subprocess and returns its trimmed output, or
// the structural fallback on any failure or an open circuit.
func (c *ClaudeCLI) Summarize(ctx context.Context, meta *metadata.SessionMetadata) string {
	prompt, err := BuildPrompt(meta, c.overridePath)
	if err != nil {
		return StructuralFallback(meta)
	}

	result, _ := c.breaker.ExecuteWithResult(
		func() (string, error) { return c.invoke(ctx, prompt) },
		func() (string, error) { return StructuralFallback(meta), nil },
	)
	return result
}

func (c *ClaudeCLI) invoke(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command,
		"-p", prompt, "--model", c.model, "--no-session-persistence")
	// The guard keeps the SessionEnd hook fired by this subprocess
	// from indexing recursively.
	cmd.Env = append(os.Environ(), hook.EnvIndexing+"=1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slog.Warn("summarizer subprocess failed",
			"command", c.command,
			"error", err,
			"stderr", strings.TrimSpace(stderr.String()))
		return "", errors.New(errors.ErrCodeSummarizerFailed, "summarizer subprocess failed", err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", errors.New(errors.ErrCodeSummarizerFailed, "summarizer produced no output", nil)
	}
	return out, nil
}
