package mcp

import (
	"errors"
	"fmt"

	surferrors "github.com/SurfaceLayerAI/surface-plugin/internal/errors"
)

// MCP error codes. The -320xx range follows JSON-RPC, the -3200x
// range is ours.
const (
	// ErrCodeSessionNotFound indicates the session id is not indexed
	// and has no transcript on disk.
	ErrCodeSessionNotFound = -32001

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError creates an invalid-params error.
func NewInvalidParamsError(message string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: message}
}

// NewSessionNotFoundError creates a session-not-found error.
func NewSessionNotFoundError(sessionID string) *MCPError {
	return &MCPError{
		Code:    ErrCodeSessionNotFound,
		Message: fmt.Sprintf("session not found: %s", sessionID),
	}
}

// MapError converts internal errors to MCP errors. Validation errors
// surface as invalid params, everything else as an internal error.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var surfErr *surferrors.SurfaceError
	if errors.As(err, &surfErr) {
		code := ErrCodeInternalError
		if surfErr.Category == surferrors.CategoryValidation {
			code = ErrCodeInvalidParams
		}
		return &MCPError{Code: code, Message: surfErr.Message}
	}

	return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
}
