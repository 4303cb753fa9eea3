package errors

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForUser_BasicError(t *testing.T) {
	// Given: a SurfaceError
	err := New(ErrCodeTranscriptNotFound, "transcript 'abc.jsonl' not found", nil)

	// When: formatting for user
	result := FormatForUser(err)

	// Then: contains message
	assert.Contains(t, result, "transcript 'abc.jsonl' not found")
	// And: contains error code at end
	assert.Contains(t, result, "[ERR_201_TRANSCRIPT_NOT_FOUND]")
}

func TestFormatForUser_WithSuggestion(t *testing.T) {
	// Given: an error with suggestion
	err := New(ErrCodeSummarizerUnavailable, "claude binary not on PATH", nil).
		WithSuggestion("Install the claude CLI or run with --no-summary")

	// When: formatting for user
	result := FormatForUser(err)

	// Then: contains suggestion
	assert.Contains(t, result, "Suggestion:")
	assert.Contains(t, result, "--no-summary")
}

func TestFormatForUser_StandardError(t *testing.T) {
	// Given: a standard Go error
	err := errors.New("something went wrong")

	// When: formatting for user
	result := FormatForUser(err)

	// Then: shows generic message
	assert.Contains(t, result, "something went wrong")
}

func TestFormatForUser_NilError(t *testing.T) {
	// When: formatting nil
	result := FormatForUser(nil)

	// Then: returns empty string
	assert.Empty(t, result)
}

func TestFormatJSON_BasicError(t *testing.T) {
	// Given: a SurfaceError with details
	err := New(ErrCodeTranscriptNotFound, "transcript not found", nil).
		WithDetail("path", "/foo/bar.jsonl").
		WithSuggestion("Check the session id")

	// When: formatting as JSON
	data, jsonErr := FormatJSON(err)

	// Then: valid JSON
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	// And: contains expected fields
	assert.Equal(t, ErrCodeTranscriptNotFound, result["code"])
	assert.Equal(t, "transcript not found", result["message"])
	assert.Equal(t, string(CategoryIO), result["category"])
	assert.Equal(t, string(SeverityError), result["severity"])
	assert.Equal(t, "Check the session id", result["suggestion"])

	details, ok := result["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/foo/bar.jsonl", details["path"])
}

func TestFormatJSON_StandardError(t *testing.T) {
	// Given: a standard error
	err := errors.New("generic error")

	// When: formatting as JSON
	data, jsonErr := FormatJSON(err)

	// Then: valid JSON with internal error code
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, ErrCodeInternal, result["code"])
	assert.Equal(t, "generic error", result["message"])
}

func TestFormatJSON_NilError(t *testing.T) {
	// When: formatting nil
	data, err := FormatJSON(nil)

	// Then: returns empty result
	assert.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(string(data)))
}

func TestFormatJSON_WithCause(t *testing.T) {
	// Given: an error with cause
	cause := errors.New("underlying error")
	err := New(ErrCodeInternal, "operation failed", cause)

	// When: formatting as JSON
	data, jsonErr := FormatJSON(err)

	// Then: includes cause
	require.NoError(t, jsonErr)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, "underlying error", result["cause"])
}

func TestFormatForCLI_ContainsCodeAndMessage(t *testing.T) {
	// Given: an index error
	err := New(ErrCodeIndexWriteFailed, "index write failed", nil).
		WithSuggestion("Check permissions on the .surface directory")

	// When: formatting for CLI
	result := FormatForCLI(err)

	// Then: contains error info
	assert.Contains(t, result, "index write failed")
	assert.Contains(t, result, "ERR_203_INDEX_WRITE_FAILED")
}

func TestFormatForCLI_ShortFormat(t *testing.T) {
	// Given: a simple error
	err := New(ErrCodeTranscriptNotFound, "transcript not found", nil)

	// When: formatting for CLI
	result := FormatForCLI(err)

	// Then: is concise
	lines := strings.Split(strings.TrimSpace(result), "\n")
	assert.LessOrEqual(t, len(lines), 5, "Should be concise")
}

func TestFormatForLog_SurfaceError(t *testing.T) {
	// Given: an error with details
	err := New(ErrCodeSummarizerTimeout, "summarizer timed out", nil).
		WithDetail("session_id", "abc-123")

	// When: formatting for log
	attrs := FormatForLog(err)

	// Then: slog attributes carry the structured fields
	assert.Equal(t, ErrCodeSummarizerTimeout, attrs["error_code"])
	assert.Equal(t, string(CategorySummarizer), attrs["category"])
	assert.Equal(t, "abc-123", attrs["detail_session_id"])
}
