// Package errors provides structured error handling for surface.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (transcript, index file)
//   - 3XX: Summarizer (external process) errors
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates transcript and index file I/O errors.
	CategoryIO Category = "IO"
	// CategorySummarizer indicates external summarizer process errors.
	CategorySummarizer Category = "SUMMARIZER"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeTranscriptNotFound = "ERR_201_TRANSCRIPT_NOT_FOUND"
	ErrCodeProjectNotFound    = "ERR_202_PROJECT_NOT_FOUND"
	ErrCodeIndexWriteFailed   = "ERR_203_INDEX_WRITE_FAILED"
	ErrCodeSignalWriteFailed  = "ERR_204_SIGNAL_WRITE_FAILED"

	// Summarizer errors (300-399)
	ErrCodeSummarizerTimeout     = "ERR_301_SUMMARIZER_TIMEOUT"
	ErrCodeSummarizerUnavailable = "ERR_302_SUMMARIZER_UNAVAILABLE"
	ErrCodeSummarizerFailed      = "ERR_303_SUMMARIZER_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidInput     = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidSessionID = "ERR_402_INVALID_SESSION_ID"
	ErrCodeQueryEmpty       = "ERR_403_QUERY_EMPTY"

	// Internal errors (500-599)
	ErrCodeInternal         = "ERR_501_INTERNAL"
	ErrCodeExtractionFailed = "ERR_502_EXTRACTION_FAILED"
	ErrCodeSearchFailed     = "ERR_503_SEARCH_FAILED"
	ErrCodeBackfillLocked   = "ERR_504_BACKFILL_LOCKED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	numStr := code[4:7]
	if len(numStr) < 1 {
		return CategoryInternal
	}

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategorySummarizer
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeIndexWriteFailed:
		return SeverityFatal
	}

	// Summarizer failures degrade to the structural fallback, never abort
	if categoryFromCode(code) == CategorySummarizer {
		return SeverityWarning
	}

	return SeverityError
}
