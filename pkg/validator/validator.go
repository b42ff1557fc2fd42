// Package validator validates recording files without writing any output.
// It parses every file upfront and reports the steps that would not
// translate to Katalon.
package validator

import (
	"errors"
	"fmt"

	"github.com/devicelab-dev/katalon-recorder/pkg/core"
	"github.com/devicelab-dev/katalon-recorder/pkg/katalon"
	"github.com/devicelab-dev/katalon-recorder/pkg/recording"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	File    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Unwrap returns the underlying parse error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Warning is a step that parses but would be skipped during conversion.
type Warning struct {
	File       string
	Diagnostic core.Diagnostic
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.File, w.Diagnostic)
}

// Result contains the validation result.
type Result struct {
	// Files is the list of valid recording paths in conversion order.
	Files []string
	// Errors contains all validation errors found.
	Errors []error
	// Warnings lists steps that would be skipped.
	Warnings []Warning
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Option configures a Validator.
type Option func(*Validator)

// WithSelectorAttribute checks selectors as a conversion with this
// attribute override would resolve them.
func WithSelectorAttribute(attr string) Option {
	return func(v *Validator) {
		v.selectorAttribute = attr
	}
}

// Validator validates recording files.
type Validator struct {
	selectorAttribute string
}

// New creates a new Validator.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate validates files and directories. Directories are searched
// recursively for *.json recordings.
func (v *Validator) Validate(paths ...string) *Result {
	result := &Result{}

	files, err := recording.CollectFiles(paths...)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    fmt.Sprint(paths),
			Message: err.Error(),
			Err:     err,
		})
		return result
	}
	if len(files) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			File:    fmt.Sprint(paths),
			Message: "no recordings found",
		})
		return result
	}

	for _, file := range files {
		v.validateFile(file, result)
	}
	return result
}

// validateFile parses a single file and dry-runs the transcoder on it.
func (v *Validator) validateFile(path string, result *Result) {
	f, err := recording.ParseFile(path)
	if err != nil {
		msg := fmt.Sprintf("parse error: %v", err)
		if errors.Is(err, recording.ErrEmptyRecording) {
			msg = core.ErrEmptyRecording.Message
		}
		result.Errors = append(result.Errors, &ValidationError{
			File:    path,
			Message: msg,
			Err:     err,
		})
		return
	}

	result.Files = append(result.Files, path)

	_, diags := katalon.Stringify(f,
		katalon.WithSelectorAttribute(v.selectorAttribute),
		katalon.WithLogging(false))
	for _, d := range diags {
		result.Warnings = append(result.Warnings, Warning{File: path, Diagnostic: d})
	}
}
