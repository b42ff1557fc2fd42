// Package output delivers generated scripts to their destination: a local
// directory, stdout for dry runs, or an S3-compatible bucket.
package output

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/devicelab-dev/katalon-recorder/pkg/core"
)

// Extension is the file extension of generated Katalon scripts.
const Extension = ".groovy"

// Writer stores one generated script under its test name.
type Writer interface {
	Write(ctx context.Context, testName, content string) Result
}

// Result reports where a script went, or why it could not be stored.
type Result struct {
	Location string
	Err      error
}

// OK returns true if the script was stored.
func (r Result) OK() bool { return r.Err == nil }

// FileName returns the script file name for a test.
func FileName(testName string) string {
	return testName + Extension
}

// DirWriter writes scripts as <dir>/<testName>.groovy.
type DirWriter struct {
	dir string
}

// NewDirWriter creates a writer for dir. The directory is created on first
// write when it does not exist.
func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{dir: dir}
}

// Dir returns the target directory.
func (w *DirWriter) Dir() string { return w.dir }

// Write writes the script file.
func (w *DirWriter) Write(ctx context.Context, testName, content string) Result {
	path := filepath.Join(w.dir, FileName(testName))
	if err := ctx.Err(); err != nil {
		return Result{Location: path, Err: core.ErrOutputFailed.WithCause(err)}
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Result{Location: path, Err: core.ErrOutputFailed.WithMessage("failed to create " + w.dir).WithCause(err)}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return Result{Location: path, Err: core.ErrOutputFailed.WithMessage("failed to write " + path).WithCause(err)}
	}
	return Result{Location: path}
}

// StdoutWriter prints scripts instead of storing them (dry run).
type StdoutWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewStdoutWriter creates a dry-run writer. A nil out prints to os.Stdout.
func NewStdoutWriter(out io.Writer) *StdoutWriter {
	if out == nil {
		out = os.Stdout
	}
	return &StdoutWriter{out: out}
}

// Write prints the script. Scripts from concurrent conversions are never
// interleaved.
func (w *StdoutWriter) Write(ctx context.Context, testName, content string) Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := io.WriteString(w.out, content); err != nil {
		return Result{Location: "stdout", Err: core.ErrOutputFailed.WithCause(err)}
	}
	return Result{Location: "stdout"}
}
