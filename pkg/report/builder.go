package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/katalon-recorder/pkg/converter"
	"github.com/devicelab-dev/katalon-recorder/pkg/core"
)

// Meta carries run information the converter does not know about.
type Meta struct {
	ToolName    string
	ToolVersion string
	Options     Options
}

// Build creates a report from a conversion result.
func Build(result *converter.RunResult, meta Meta) *Report {
	start := result.StartTime
	r := &Report{
		Version:   Version,
		RunID:     uuid.New().String(),
		Status:    result.Status,
		StartTime: start,
		EndTime:   start.Add(time.Duration(result.Duration) * time.Millisecond),
		Duration:  result.Duration,
		Tool: ToolInfo{
			Name:    meta.ToolName,
			Version: meta.ToolVersion,
		},
		Options: meta.Options,
		Summary: Summary{
			Total:     result.TotalFiles,
			Converted: result.ConvertedFiles,
			Warned:    result.WarnedFiles,
			Failed:    result.FailedFiles,
			Skipped:   result.SkippedFiles,
		},
		Files: make([]FileEntry, 0, len(result.FileResults)),
	}

	for i, fr := range result.FileResults {
		entry := FileEntry{
			Index:       i,
			ID:          fmt.Sprintf("file-%03d", i+1),
			Name:        fr.TestName,
			Title:       fr.Title,
			SourceFile:  fr.Path,
			Output:      fr.Location,
			Status:      fr.Status,
			Steps:       fr.Steps,
			Duration:    fr.Duration,
			Diagnostics: fr.Diagnostics,
			Error:       buildError(fr.Err),
		}
		r.Summary.Diagnostics += len(fr.Diagnostics)
		r.Files = append(r.Files, entry)
	}

	return r
}

func buildError(err error) *Error {
	if err == nil {
		return nil
	}
	var convErr *core.ConversionError
	if errors.As(err, &convErr) {
		return &Error{
			Type:    convErr.Category.String(),
			Code:    convErr.Code,
			Message: err.Error(),
		}
	}
	return &Error{Type: "unknown", Message: err.Error()}
}

// Write writes the report to <dir>/report.json, creating dir if needed.
func Write(dir string, r *Report) error {
	if err := ensureDir(dir); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := atomicWriteJSON(filepath.Join(dir, FileName), r); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Read loads the report from <dir>/report.json.
func Read(dir string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &r, nil
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// atomicWriteJSON writes v as indented JSON through a temp file and a
// rename, so readers never see a partial report.
func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
