// Package recording handles parsing and representation of Chrome DevTools
// Recorder files (Puppeteer Replay JSON schema).
package recording

// Flow represents a parsed recording.
type Flow struct {
	SourcePath        string  `json:"-"`                           // Path to the source file
	Title             string  `json:"title"`                       // Recording title
	SelectorAttribute string  `json:"selectorAttribute,omitempty"` // Preferred attribute for selector choice
	TimeoutMs         float64 `json:"timeout,omitempty"`           // Default for steps without their own timeout
	Steps             []Step  `json:"-"`                           // Steps in recorded order
}

// StepCount returns the number of steps, counting by type.
func (f *Flow) StepCount() map[StepType]int {
	counts := make(map[StepType]int)
	for _, s := range f.Steps {
		counts[s.Type()]++
	}
	return counts
}
