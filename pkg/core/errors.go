package core

import (
	"fmt"
)

// ConversionError represents a structured error with category and details
type ConversionError struct {
	Category ErrorCategory
	Code     string         // Machine-readable code: malformed_recording, unresolvable_selector, etc.
	Message  string         // Human-readable message
	Details  map[string]any // Additional context
	Cause    error          // Underlying error
}

// Error implements the error interface
func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// Is matches predefined errors by code, so a copy made with WithCause
// still satisfies errors.Is against the original.
func (e *ConversionError) Is(target error) bool {
	t, ok := target.(*ConversionError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ConversionError) WithCause(cause error) *ConversionError {
	return &ConversionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ConversionError) WithMessage(msg string) *ConversionError {
	return &ConversionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithDetails returns a copy of the error with additional details
func (e *ConversionError) WithDetails(details map[string]any) *ConversionError {
	merged := make(map[string]any)
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ConversionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Recording errors (fatal for one file)
	ErrMalformedRecording = &ConversionError{
		Category: ErrCategoryParse,
		Code:     "malformed_recording",
		Message:  "malformed recording",
	}
	ErrEmptyRecording = &ConversionError{
		Category: ErrCategoryParse,
		Code:     "empty_recording",
		Message:  "No recording found. Please create and upload before trying again",
	}

	// Step errors (never fatal, reported as diagnostics)
	ErrUnresolvableSelector = &ConversionError{
		Category: ErrCategorySelector,
		Code:     "unresolvable_selector",
		Message:  "no usable selector",
	}
	ErrUnsupportedStepType = &ConversionError{
		Category: ErrCategoryUnsupported,
		Code:     "unsupported_step_type",
		Message:  "step type is not supported",
	}

	// Output errors
	ErrOutputFailed = &ConversionError{
		Category: ErrCategoryOutput,
		Code:     "output_failed",
		Message:  "failed to write generated script",
	}

	// Config errors
	ErrInvalidConfig = &ConversionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
)
