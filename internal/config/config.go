package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Surface configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Summarizer SummarizerConfig `yaml:"summarizer" json:"summarizer"`
	Backfill   BackfillConfig   `yaml:"backfill" json:"backfill"`
	Watch      WatchConfig      `yaml:"watch" json:"watch"`
}

// LoggingConfig configures the structured log output.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// File is the log file path. Empty uses ~/.claude/surface/logs/surface.log.
	File string `yaml:"file" json:"file"`
}

// SummarizerConfig configures the LLM summarizer subprocess.
// Summaries degrade to a structural fallback when the subprocess
// fails or times out, so every field here is best-effort tuning.
type SummarizerConfig struct {
	// Command is the CLI binary invoked for summarization.
	Command string `yaml:"command" json:"command"`
	// Model is passed as --model to the summarizer CLI.
	Model string `yaml:"model" json:"model"`
	// TimeoutSeconds bounds a single summarizer invocation.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
	// Disabled skips the subprocess entirely and always uses the fallback.
	Disabled bool `yaml:"disabled" json:"disabled"`
}

// BackfillConfig configures bulk re-indexing of historical sessions.
type BackfillConfig struct {
	// Parallelism is the number of concurrent session workers.
	Parallelism int `yaml:"parallelism" json:"parallelism"`
	// LockWaitSeconds is how long to wait for the backfill lock
	// before giving up. 0 fails immediately when another backfill
	// holds the lock.
	LockWaitSeconds int `yaml:"lock_wait_seconds" json:"lock_wait_seconds"`
}

// WatchConfig configures the transcript directory watcher.
type WatchConfig struct {
	// DebounceMs is the quiet window before a changed transcript
	// is re-indexed. Rapid writes within the window coalesce.
	DebounceMs int `yaml:"debounce_ms" json:"debounce_ms"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Logging: LoggingConfig{
			Level: "info",
			File:  "", // Empty uses the default log path
		},
		Summarizer: SummarizerConfig{
			Command:        "claude",
			Model:          "haiku",
			TimeoutSeconds: 30,
			Disabled:       false,
		},
		Backfill: BackfillConfig{
			Parallelism:     10,
			LockWaitSeconds: 0, // Fail fast when another backfill runs
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file.
// SURFACE_CONFIG overrides the default ~/.claude/surface/config.yaml.
func GetUserConfigPath() string {
	if p := os.Getenv("SURFACE_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback - should rarely happen
		return filepath.Join(os.TempDir(), ".claude", "surface", "config.yaml")
	}
	return filepath.Join(home, ".claude", "surface", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig loads the user configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist (that's OK).
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()

	if !fileExists(configPath) {
		return nil, nil // No user config is fine
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}

	return cfg, nil
}

// Load loads configuration for the given project directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.claude/surface/config.yaml or SURFACE_CONFIG)
//  3. Project config (<projectDir>/.surface/config.yaml)
//  4. Environment variables (SURFACE_*)
func Load(projectDir string) (*Config, error) {
	cfg := NewConfig()

	// Step 1: Load user config (if exists)
	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	// Step 2: Load project config (overrides user config)
	if projectDir != "" {
		if err := cfg.loadFromProject(projectDir); err != nil {
			return nil, err
		}
	}

	// Step 3: Apply environment variable overrides (highest precedence)
	cfg.applyEnvOverrides()

	// Step 4: Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromProject attempts to load <projectDir>/.surface/config.yaml.
func (c *Config) loadFromProject(projectDir string) error {
	yamlPath := filepath.Join(projectDir, ".surface", "config.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	// No project config is fine - use defaults
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Use a temporary struct for parsing to detect type errors
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}

	// Summarizer
	if other.Summarizer.Command != "" {
		c.Summarizer.Command = other.Summarizer.Command
	}
	if other.Summarizer.Model != "" {
		c.Summarizer.Model = other.Summarizer.Model
	}
	if other.Summarizer.TimeoutSeconds != 0 {
		c.Summarizer.TimeoutSeconds = other.Summarizer.TimeoutSeconds
	}
	// Disabled can only be turned on via file config; yaml.Unmarshal
	// leaves false indistinguishable from unset.
	if other.Summarizer.Disabled {
		c.Summarizer.Disabled = true
	}

	// Backfill
	if other.Backfill.Parallelism != 0 {
		c.Backfill.Parallelism = other.Backfill.Parallelism
	}
	if other.Backfill.LockWaitSeconds != 0 {
		c.Backfill.LockWaitSeconds = other.Backfill.LockWaitSeconds
	}

	// Watch
	if other.Watch.DebounceMs != 0 {
		c.Watch.DebounceMs = other.Watch.DebounceMs
	}
}

// applyEnvOverrides applies SURFACE_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SURFACE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SURFACE_SUMMARIZER_DISABLED"); v != "" {
		c.Summarizer.Disabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("SURFACE_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backfill.Parallelism = n
		}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	// Validate log level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	// Validate summarizer
	if c.Summarizer.Command == "" {
		return fmt.Errorf("summarizer.command must not be empty")
	}
	if c.Summarizer.TimeoutSeconds < 1 || c.Summarizer.TimeoutSeconds > 600 {
		return fmt.Errorf("summarizer.timeout_seconds must be between 1 and 600, got %d", c.Summarizer.TimeoutSeconds)
	}

	// Validate backfill
	if c.Backfill.Parallelism < 1 || c.Backfill.Parallelism > 64 {
		return fmt.Errorf("backfill.parallelism must be between 1 and 64, got %d", c.Backfill.Parallelism)
	}
	if c.Backfill.LockWaitSeconds < 0 {
		return fmt.Errorf("backfill.lock_wait_seconds must be non-negative, got %d", c.Backfill.LockWaitSeconds)
	}

	// Validate watch
	if c.Watch.DebounceMs < 0 || c.Watch.DebounceMs > 60000 {
		return fmt.Errorf("watch.debounce_ms must be between 0 and 60000, got %d", c.Watch.DebounceMs)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindProjectRoot finds the project root directory.
// It looks for a .git or .surface directory by walking up the tree.
// When neither exists, the starting directory itself is the root.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		if dirExists(filepath.Join(currentDir, ".surface")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, return original directory
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
