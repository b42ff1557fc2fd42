package core

import "fmt"

// Diagnostic is a non-fatal notice that a step could not be translated.
type Diagnostic struct {
	Category  ErrorCategory `json:"category"`
	Code      string        `json:"code"`
	StepIndex int           `json:"stepIndex"` // 0-based position in the recording
	StepType  string        `json:"stepType"`
	Message   string        `json:"message"`
}

// String formats the diagnostic for console output.
func (d Diagnostic) String() string {
	return fmt.Sprintf("step %d (%s): %s", d.StepIndex+1, d.StepType, d.Message)
}

// Diagnostics collects diagnostics in the order they were reported.
type Diagnostics []Diagnostic

// Add appends a diagnostic derived from a predefined error.
func (d *Diagnostics) Add(kind *ConversionError, stepIndex int, stepType, message string) {
	*d = append(*d, Diagnostic{
		Category:  kind.Category,
		Code:      kind.Code,
		StepIndex: stepIndex,
		StepType:  stepType,
		Message:   message,
	})
}

// Strings formats every diagnostic.
func (d Diagnostics) Strings() []string {
	out := make([]string, len(d))
	for i, diag := range d {
		out[i] = diag.String()
	}
	return out
}
