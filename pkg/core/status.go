package core

import "fmt"

// FileStatus represents the conversion status of one recording file
type FileStatus int

const (
	StatusPending   FileStatus = iota // Not yet started
	StatusConverted                   // Script generated with no diagnostics
	StatusWarned                      // Script generated, some steps were skipped
	StatusFailed                      // Recording could not be parsed or written
	StatusSkipped                     // Run cancelled before the file was processed
)

// String returns the string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConverted:
		return "converted"
	case StatusWarned:
		return "warned"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON reports.
func (s FileStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText.
func (s *FileStatus) UnmarshalText(text []byte) error {
	for _, candidate := range []FileStatus{StatusPending, StatusConverted, StatusWarned, StatusFailed, StatusSkipped} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown file status %q", text)
}

// IsTerminal returns true if the status is a final state
func (s FileStatus) IsTerminal() bool {
	switch s {
	case StatusConverted, StatusWarned, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if a script was produced (converted or warned)
func (s FileStatus) IsSuccess() bool {
	return s == StatusConverted || s == StatusWarned
}

// ErrorCategory classifies the type of error for reporting
type ErrorCategory int

const (
	ErrCategoryNone        ErrorCategory = iota // No error
	ErrCategoryParse                            // Recording is empty, not JSON, or fails the schema
	ErrCategorySelector                         // No usable selector for a step
	ErrCategoryUnsupported                      // Step type or key has no Katalon equivalent
	ErrCategoryOutput                           // Writing the generated script failed
	ErrCategoryConfig                           // Invalid configuration
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryParse:
		return "parse"
	case ErrCategorySelector:
		return "selector"
	case ErrCategoryUnsupported:
		return "unsupported"
	case ErrCategoryOutput:
		return "output"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// MarshalText renders the category by name in JSON reports.
func (c ErrorCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a category name written by MarshalText.
func (c *ErrorCategory) UnmarshalText(text []byte) error {
	for _, candidate := range []ErrorCategory{ErrCategoryNone, ErrCategoryParse, ErrCategorySelector, ErrCategoryUnsupported, ErrCategoryOutput, ErrCategoryConfig} {
		if candidate.String() == string(text) {
			*c = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown error category %q", text)
}
