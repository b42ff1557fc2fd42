// Package converter orchestrates batch conversion of recordings, connecting
// the parser and transcoder to an output writer.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/devicelab-dev/katalon-recorder/pkg/core"
	"github.com/devicelab-dev/katalon-recorder/pkg/katalon"
	"github.com/devicelab-dev/katalon-recorder/pkg/logger"
	"github.com/devicelab-dev/katalon-recorder/pkg/output"
	"github.com/devicelab-dev/katalon-recorder/pkg/recording"
)

// Config configures a conversion run.
type Config struct {
	SelectorAttribute string // Overrides the recording's selectorAttribute when set
	Parallelism       int    // Max concurrent files (0 = sequential)

	// Live progress callbacks. With Parallelism > 0 they are called from
	// several goroutines at once.
	OnFileStart func(fileIdx, totalFiles int, path string)
	OnFileEnd   func(result FileResult)
}

// RunResult contains the outcome of a conversion run.
type RunResult struct {
	Status         core.FileStatus // Converted, Warned or Failed for the run as a whole
	TotalFiles     int
	ConvertedFiles int
	WarnedFiles    int
	FailedFiles    int
	SkippedFiles   int
	StartTime      time.Time
	Duration       int64 // Wall clock duration in milliseconds
	FileResults    []FileResult
}

// FileResult contains the outcome of converting one recording.
type FileResult struct {
	Path        string
	TestName    string
	Title       string
	Status      core.FileStatus
	Location    string // Where the script was written
	Steps       int
	Duration    int64
	Diagnostics core.Diagnostics
	Err         error
}

// Error returns the failure message, or "" when the file converted.
func (r FileResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Converter converts recordings and hands the scripts to a writer.
type Converter struct {
	config Config
	writer output.Writer
}

// New creates a new Converter.
func New(writer output.Writer, cfg Config) *Converter {
	return &Converter{
		config: cfg,
		writer: writer,
	}
}

// ConvertContent converts one recording held in memory. name is used in
// error messages and logs.
//
// A malformed recording returns an error matching core.ErrMalformedRecording
// and recording.ErrMalformedRecording; a blank one returns
// core.ErrEmptyRecording. Untranslatable steps never fail the conversion;
// they are returned as diagnostics.
func (c *Converter) ConvertContent(name string, data []byte) (string, core.Diagnostics, error) {
	flow, err := c.parse(name, data)
	if err != nil {
		return "", nil, err
	}
	script, diags := katalon.Stringify(flow, katalon.WithSelectorAttribute(c.config.SelectorAttribute))
	return script, diags, nil
}

func (c *Converter) parse(name string, data []byte) (*recording.Flow, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, core.ErrEmptyRecording.WithDetails(map[string]any{"file": name})
	}

	flow, err := recording.Parse(data, name)
	if err != nil {
		return nil, core.ErrMalformedRecording.WithCause(err).WithDetails(map[string]any{"file": name})
	}

	if logger.IsVerbose() {
		logger.Debug("parsed %s (%d steps): %v", name, len(flow.Steps), flow.StepCount())
		// Written in one call so parallel workers don't interleave dumps
		_, _ = io.WriteString(logger.GetWriter(), dumpConfig.Sdump(flow))
	}
	return flow, nil
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Run converts all files, either sequentially or with a bounded worker
// pool. Results keep the order of files; one file failing never stops the
// others.
func (c *Converter) Run(ctx context.Context, files []string) *RunResult {
	start := time.Now()
	owners := outputOwners(files)
	var results []FileResult
	if c.config.Parallelism <= 0 {
		results = c.runSequential(ctx, files, owners)
	} else {
		results = c.runParallel(ctx, files, owners)
	}
	return buildRunResult(results, start)
}

func (c *Converter) runSequential(ctx context.Context, files, owners []string) []FileResult {
	results := make([]FileResult, len(files))
	for i, path := range files {
		if ctx.Err() != nil {
			// Context cancelled, skip remaining
			results[i] = skipped(path)
			continue
		}
		results[i] = c.convertFile(ctx, path, owners[i], i, len(files))
	}
	return results
}

// outputOwners maps each file to the earlier file that already produces the
// same test name, or "" when its name is unique. Recordings with the same
// base name in different folders would otherwise overwrite one another.
func outputOwners(files []string) []string {
	owners := make([]string, len(files))
	first := make(map[string]string, len(files))
	for i, path := range files {
		name := recording.TestName(path)
		if owner, ok := first[name]; ok {
			owners[i] = owner
			continue
		}
		first[name] = path
	}
	return owners
}

// convertFile reads, converts and writes one recording. When owner is set,
// another file in the run already writes this test name and the file fails
// instead of being written.
func (c *Converter) convertFile(ctx context.Context, path, owner string, idx, total int) FileResult {
	if c.config.OnFileStart != nil {
		c.config.OnFileStart(idx, total, path)
	}
	logger.Info("converting %s", path)

	start := time.Now()
	res := FileResult{
		Path:     path,
		TestName: recording.TestName(path),
	}

	finish := func() FileResult {
		res.Duration = time.Since(start).Milliseconds()
		switch {
		case res.Err != nil:
			res.Status = core.StatusFailed
			logger.Error("%s: %v", path, res.Err)
		case len(res.Diagnostics) > 0:
			res.Status = core.StatusWarned
		default:
			res.Status = core.StatusConverted
		}
		if c.config.OnFileEnd != nil {
			c.config.OnFileEnd(res)
		}
		return res
	}

	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided recording file
	if err != nil {
		res.Err = core.ErrMalformedRecording.WithMessage("failed to read recording").WithCause(err)
		return finish()
	}

	flow, err := c.parse(path, data)
	if err != nil {
		res.Err = err
		return finish()
	}
	res.Title = flow.Title
	res.Steps = len(flow.Steps)

	script, diags := katalon.Stringify(flow, katalon.WithSelectorAttribute(c.config.SelectorAttribute))
	res.Diagnostics = diags

	if owner != "" {
		res.Err = core.ErrOutputFailed.WithMessage(
			fmt.Sprintf("output name %q is already used by %s", res.TestName, owner))
		return finish()
	}

	out := c.writer.Write(ctx, res.TestName, script)
	res.Location = out.Location
	if !out.OK() {
		res.Err = out.Err
		return finish()
	}
	logger.Info("%s exported to %s (%d steps, %d diagnostics)", path, out.Location, res.Steps, len(diags))
	return finish()
}

func skipped(path string) FileResult {
	return FileResult{
		Path:     path,
		TestName: recording.TestName(path),
		Status:   core.StatusSkipped,
		Err:      errors.New("run cancelled"),
	}
}

// buildRunResult aggregates file results into a run result.
func buildRunResult(fileResults []FileResult, start time.Time) *RunResult {
	result := &RunResult{
		TotalFiles:  len(fileResults),
		StartTime:   start,
		Duration:    time.Since(start).Milliseconds(),
		FileResults: fileResults,
	}

	for _, fr := range fileResults {
		switch fr.Status {
		case core.StatusConverted:
			result.ConvertedFiles++
		case core.StatusWarned:
			result.WarnedFiles++
		case core.StatusFailed:
			result.FailedFiles++
		case core.StatusSkipped:
			result.SkippedFiles++
		}
	}

	// Determine overall status
	switch {
	case result.FailedFiles > 0:
		result.Status = core.StatusFailed
	case result.WarnedFiles > 0:
		result.Status = core.StatusWarned
	case result.SkippedFiles > 0 && result.ConvertedFiles == 0:
		result.Status = core.StatusSkipped
	default:
		result.Status = core.StatusConverted
	}

	return result
}
