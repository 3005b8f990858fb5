// Package core provides the application logic for the classification
// workflow.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Classification Errors (CLS001-CLS099)
//
// Errors raised while talking to the classification service:
//
//	CLS001 - Classify failed: The classification request did not succeed
//	         Action: Check that the classification service is running
//	         Patterns: "classify failed"
//
//	CLS002 - Evaluate failed: Metrics could not be computed
//	         Action: Results are still available; include a label column for metrics
//	         Patterns: "evaluate failed"
//
//	CLS003 - No results: The service answered without a results list
//	         Action: Check the classification service version
//	         Patterns: "response has no results"
//
//	CLS004 - System busy: Too many classifications in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many classifications"
//
// # File Errors (FILE001-FILE099)
//
// Errors related to file handling and parsing:
//
//	FILE001 - File too large: File exceeds the maximum size limit
//	          Action: Choose a CSV file within the size limit shown on the page
//	          Patterns: "file too large"
//
//	FILE002 - Not CSV: The selected file is not a CSV file
//	          Action: Select a file with a .csv extension
//	          Patterns: "not a csv file"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The file has no data rows
//	          Action: Please upload a CSV file with a header and data rows
//	          Patterns: "empty file"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No upload: Classification requested before a file was uploaded
//	         Action: Upload a CSV file, then classify
//	         Patterns: "no file uploaded"
//
//	SES002 - Session expired: The session is unknown or has expired
//	         Action: Reload the page and upload the file again
//	         Patterns: "session not found"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - No results: Export requested before classification
//	         Action: Classify the uploaded file first
//	         Patterns: "no results to export"
//
// # Request Errors (UPL004-UPL005)
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. Classification patterns come first so a
// timeout during classify still reports as CLS001.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Classification Errors (CLS001-CLS004)
	// =========================================================================
	{
		pattern: "response has no results",
		msg: UserMessage{
			Message: "The classification service returned no results",
			Action:  "Check the classification service version",
			Code:    "CLS003",
		},
	},
	{
		pattern: "too many classifications",
		msg: UserMessage{
			Message: "System is busy processing other classifications",
			Action:  "Please wait a moment and try again",
			Code:    "CLS004",
		},
	},
	{
		pattern: "classify failed",
		msg: UserMessage{
			Message: "Classification failed. Please check your backend API.",
			Action:  "Check that the classification service is running",
			Code:    "CLS001",
		},
	},
	{
		pattern: "evaluate failed",
		msg: UserMessage{
			Message: "Metrics could not be computed for these results",
			Action:  "Results are still available; include a label column for metrics",
			Code:    "CLS002",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Choose a CSV file within the size limit shown on the page",
			Code:    "FILE001",
		},
	},
	{
		pattern: "not a csv file",
		msg: UserMessage{
			Message: "Please upload a CSV file",
			Action:  "Select a file with a .csv extension",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The CSV file appears to be empty or invalid",
			Action:  "Please upload a CSV file with a header and data rows",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Session and Export Errors (SES001-SES002, EXP001)
	// =========================================================================
	{
		pattern: "no file uploaded",
		msg: UserMessage{
			Message: "Please upload a CSV file first",
			Action:  "Upload a CSV file, then classify",
			Code:    "SES001",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Reload the page and upload the file again",
			Code:    "SES002",
		},
	},
	{
		pattern: "no results to export",
		msg: UserMessage{
			Message: "No results to export",
			Action:  "Classify the uploaded file first",
			Code:    "EXP001",
		},
	},

	// =========================================================================
	// Request Errors (UPL004-UPL005)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("classify failed: %w", apiErr)
//	msg := MapError(err)
//	// msg.Code == "CLS001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
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
