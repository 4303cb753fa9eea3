// Package logging provides file-based logging with rotation for surface.
// Logs are written to ~/.claude/surface/logs/ as JSON lines.
//
// Hook and MCP serve modes must log to file only: stdout carries the hook
// response or JSON-RPC stream, and stderr is surfaced to the host session.
package logging
