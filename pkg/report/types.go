// Package report provides the JSON summary of a conversion run.
//
// The summary is written to report.json in the output directory: run
// metadata, aggregated counts, and one entry per recording with its status,
// output location and diagnostics.
package report

import (
	"time"

	"github.com/devicelab-dev/katalon-recorder/pkg/core"
)

// Version is the report schema version.
const Version = "1.0.0"

// FileName is the report file written to the output directory.
const FileName = "report.json"

// ============================================================================
// REPORT (report.json)
// ============================================================================

// Report is the summary of one conversion run.
type Report struct {
	Version   string          `json:"version"`
	RunID     string          `json:"runId"`
	Status    core.FileStatus `json:"status"`
	StartTime time.Time       `json:"startTime"`
	EndTime   time.Time       `json:"endTime"`
	Duration  int64           `json:"duration"` // milliseconds
	Tool      ToolInfo        `json:"tool"`
	Options   Options         `json:"options"`
	Summary   Summary         `json:"summary"`
	Files     []FileEntry     `json:"files"`
}

// ToolInfo identifies the converter that produced the report.
type ToolInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Options records the settings the run used.
type Options struct {
	Output            string `json:"output"`
	Dry               bool   `json:"dry"`
	Parallelism       int    `json:"parallelism"`
	SelectorAttribute string `json:"selectorAttribute,omitempty"`
}

// Summary contains aggregated counts.
type Summary struct {
	Total       int `json:"total"`
	Converted   int `json:"converted"`
	Warned      int `json:"warned"`
	Failed      int `json:"failed"`
	Skipped     int `json:"skipped"`
	Diagnostics int `json:"diagnostics"`
}

// FileEntry is the report entry for one recording.
type FileEntry struct {
	Index       int               `json:"index"`      // Original position
	ID          string            `json:"id"`         // Stable per-run ID
	Name        string            `json:"name"`       // Test name
	Title       string            `json:"title,omitempty"`
	SourceFile  string            `json:"sourceFile"` // Path to the recording
	Output      string            `json:"output,omitempty"`
	Status      core.FileStatus   `json:"status"`
	Steps       int               `json:"steps"`
	Duration    int64             `json:"duration"` // milliseconds
	Diagnostics []core.Diagnostic `json:"diagnostics,omitempty"`
	Error       *Error            `json:"error,omitempty"`
}

// Error contains error details.
type Error struct {
	Type    string `json:"type"` // parse, output, config, unknown
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
