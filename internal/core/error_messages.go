package core

// # Error Codes Reference
//
// Per-file failures reported by the ingestion coordinator carry a short
// code so a user can quote it when something goes wrong.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the configured size limit
//	          Patterns: "file too large"
//
//	FILE002 - Unreadable file: No read strategy produced any rows
//	          Patterns: "all read strategies failed"
//
//	FILE003 - Encoding error: File could not be decoded
//	          Patterns: "decode failed"
//
//	FILE004 - Not found: File does not exist
//	          Patterns: "no such file", "cannot find the file"
//
//	FILE005 - Empty file: The file has no data
//	          Patterns: "empty file"
//
//	FILE006 - Compression: Compressed stream is corrupt or unsupported
//	          Patterns: "unsupported compression", "decompress"
//
// # Filter Errors (FLT001-FLT099)
//
//	FLT001 - Unknown column: Filter or transform refers to a column that is not loaded
//	         Patterns: "unknown filter column", "unknown column"
//
//	FLT002 - Invalid filter: Filter values are missing or inconsistent
//	         Patterns: "invalid predicate"
//
// # Ingestion Errors (ING001-ING099)
//
//	ING001 - Cancelled: Loading was cancelled
//	         Patterns: "load cancelled", "context canceled"
//
//	ING002 - Busy: Too many files are loading
//	         Patterns: "too many concurrent loads"
//
//	ING003 - Timeout: Loading took too long
//	         Patterns: "context deadline exceeded"
//
// # Default Error (ERR000)
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // User-friendly description
	Action  string // Suggested action
	Code    string // Reference code
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "all read strategies failed",
		msg: UserMessage{
			Message: "File could not be read as CSV",
			Action:  "Check that the file is a delimited text file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "decode failed",
		msg: UserMessage{
			Message: "File contains characters that could not be decoded",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the file path and select the file again",
			Code:    "FILE004",
		},
	},
	{
		pattern: "cannot find the file",
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the file path and select the file again",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Select a CSV file with data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported compression",
		msg: UserMessage{
			Message: "Compressed file format is not supported",
			Action:  "Decompress the file before loading it",
			Code:    "FILE006",
		},
	},
	{
		pattern: "decompress",
		msg: UserMessage{
			Message: "Compressed file is corrupt",
			Action:  "Decompress the file manually and load the CSV",
			Code:    "FILE006",
		},
	},

	// Filter errors
	{
		pattern: "unknown filter column",
		msg: UserMessage{
			Message: "Filter refers to a column that does not exist",
			Action:  "Remove the filter or reload the data",
			Code:    "FLT001",
		},
	},
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "A column used here does not exist",
			Action:  "Pick one of the loaded columns",
			Code:    "FLT001",
		},
	},
	{
		pattern: "invalid predicate",
		msg: UserMessage{
			Message: "Filter values are invalid",
			Action:  "Check that all filter values are filled in",
			Code:    "FLT002",
		},
	},

	// Ingestion errors
	{
		pattern: "load cancelled",
		msg: UserMessage{
			Message: "Loading was cancelled",
			Action:  "Start a new load when ready",
			Code:    "ING001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Loading was cancelled",
			Action:  "Start a new load when ready",
			Code:    "ING001",
		},
	},
	{
		pattern: "too many concurrent loads",
		msg: UserMessage{
			Message: "Too many files are loading",
			Action:  "Please wait a moment and try again",
			Code:    "ING002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Loading timed out",
			Action:  "Try a smaller file or raise the load timeout",
			Code:    "ING003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the application log for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A wrapped UserError keeps the message it was created with. If no pattern
// matches, the ERR000 fallback is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("read a.csv: %w", ErrEmptyFile))
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error stays reachable through Unwrap for errors.Is checks.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
