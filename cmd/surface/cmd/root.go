// Package cmd provides the CLI commands for surface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SurfaceLayerAI/surface-plugin/internal/config"
	"github.com/SurfaceLayerAI/surface-plugin/internal/logging"
	"github.com/SurfaceLayerAI/surface-plugin/pkg/version"
)

// Persistent flags shared by every subcommand.
var (
	debugMode      bool
	logLevel       string
	configPath     string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the surface CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surface",
		Short: "Session transcript indexing and mining for Claude Code",
		Long: `Surface indexes finished Claude Code sessions into a per-project
ledger (.surface/session-index.jsonl) and mines transcripts for the
signals a reviewer cares about: requests, plans, decisions, feedback.

Wire 'surface hook' into the SessionEnd hook to index sessions as they
finish, run 'surface backfill' to index existing history, and expose
the ledger to assistants with 'surface serve' (MCP over stdio).`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Set version template
	cmd.SetVersionTemplate("surface version {{.Version}}\n")

	// Global flags
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.claude/surface/logs/")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (overrides SURFACE_CONFIG)")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	// Add subcommands
	cmd.AddCommand(newHookCmd())
	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newBackfillCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging exports the --config path and installs debug logging
// when the flag is set. Commands that need logging without --debug set
// up their own file-only logger.
func startLogging(_ *cobra.Command, _ []string) error {
	if configPath != "" {
		if err := os.Setenv("SURFACE_CONFIG", configPath); err != nil {
			return fmt.Errorf("failed to set config path: %w", err)
		}
	}

	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("Debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	}

	return nil
}

// stopLogging flushes and closes the debug log file.
func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// setupCommandLogging installs file-only logging for a regular command.
// It is a no-op when --debug already installed a logger. Setup failures
// are swallowed: a command must not die because the log dir is broken.
func setupCommandLogging() func() {
	if loggingCleanup != nil {
		return func() {}
	}

	cfg := logging.DefaultConfig()
	if logLevel != "" {
		cfg.Level = logLevel
	}
	cleanup, err := logging.SetupDefault(cfg)
	if err != nil {
		return func() {}
	}
	return cleanup
}

// setupQuietLogging installs file-only logging for protocol commands
// (hook, serve) where stdout carries the protocol stream.
func setupQuietLogging() func() {
	if loggingCleanup != nil {
		return func() {}
	}

	level := "info"
	if logLevel != "" {
		level = logLevel
	}
	cleanup, err := logging.SetupQuietMode(level)
	if err != nil {
		return func() {}
	}
	return cleanup
}

// resolveProjectDir turns the --project flag into an absolute project
// directory. Without the flag the enclosing project root is detected,
// falling back to the working directory.
func resolveProjectDir(flag string) string {
	if flag != "" {
		if abs, err := filepath.Abs(flag); err == nil {
			return abs
		}
		return flag
	}

	root, err := config.FindProjectRoot(".")
	if err != nil {
		root, _ = os.Getwd()
	}
	return root
}

// loadConfig loads the effective config for a project, falling back to
// defaults when no config file exists or parsing fails.
func loadConfig(projectDir string) *config.Config {
	cfg, err := config.Load(projectDir)
	if err != nil {
		slog.Warn("config load failed, using defaults", slog.String("error", err.Error()))
		return config.NewConfig()
	}
	return cfg
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// truncateText shortens s to at most n bytes with an ellipsis.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
