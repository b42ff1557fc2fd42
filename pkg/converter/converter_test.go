package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/devicelab-dev/katalon-recorder/pkg/core"
	"github.com/devicelab-dev/katalon-recorder/pkg/logger"
	"github.com/devicelab-dev/katalon-recorder/pkg/output"
	"github.com/devicelab-dev/katalon-recorder/pkg/recording"
)

const validRecording = `{
  "title": "Search",
  "steps": [
    {"type": "setViewport", "width": 1905, "height": 223},
    {"type": "navigate", "url": "https://www.google.com/"},
    {"type": "click", "selectors": [["aria/Search"], ["#APjFqb"]], "offsetX": 1, "offsetY": 2},
    {"type": "change", "selectors": [["#APjFqb"]], "value": "katalon"},
    {"type": "keyDown", "key": "Enter"}
  ]
}`

const warnedRecording = `{
  "title": "Partial",
  "steps": [
    {"type": "navigate", "url": "https://example.com/"},
    {"type": "keyUp", "key": "Enter"},
    {"type": "hover", "selectors": [["aria/Menu"]]}
  ]
}`

// memWriter records scripts in memory.
type memWriter struct {
	mu      sync.Mutex
	scripts map[string]string
	fail    map[string]bool
}

func newMemWriter() *memWriter {
	return &memWriter{scripts: map[string]string{}, fail: map[string]bool{}}
}

func (w *memWriter) Write(ctx context.Context, testName, content string) output.Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail[testName] {
		return output.Result{Location: "mem://" + testName, Err: core.ErrOutputFailed.WithCause(errors.New("disk full"))}
	}
	w.scripts[testName] = content
	return output.Result{Location: "mem://" + testName}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestConvertContent(t *testing.T) {
	c := New(newMemWriter(), Config{})

	script, diags, err := c.ConvertContent("search.json", []byte(validRecording))
	if err != nil {
		t.Fatalf("ConvertContent() error = %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags.Strings())
	}
	for _, want := range []string{
		"WebUI.comment(\"Search\")\nWebUI.openBrowser('')\n",
		"WebUI.setViewPortSize(1905, 223)\n",
		"WebUI.navigateToUrl(\"https://www.google.com/\")\n",
		"WebUI.click(to(\"#APjFqb\"))\n",
		"setValue(to(\"#APjFqb\"), \"katalon\")\n",
		"WebUI.sendKeys(tox('//body'), Keys.chord(Keys.ENTER))\n",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestConvertContent_Empty(t *testing.T) {
	c := New(newMemWriter(), Config{})

	for _, data := range []string{"", "  \n\t"} {
		script, _, err := c.ConvertContent("empty.json", []byte(data))
		if !errors.Is(err, core.ErrEmptyRecording) {
			t.Errorf("ConvertContent(%q) error = %v, want ErrEmptyRecording", data, err)
		}
		if errors.Is(err, core.ErrMalformedRecording) {
			t.Error("empty recording should not be reported as malformed")
		}
		if script != "" {
			t.Error("expected no script for an empty recording")
		}
	}
}

func TestConvertContent_Malformed(t *testing.T) {
	c := New(newMemWriter(), Config{})

	_, _, err := c.ConvertContent("bad.json", []byte(`{"title": "x", "steps": [{"type": "navigate"}]}`))
	if !errors.Is(err, core.ErrMalformedRecording) {
		t.Errorf("error = %v, want core.ErrMalformedRecording", err)
	}
	if !errors.Is(err, recording.ErrMalformedRecording) {
		t.Errorf("error = %v, want recording.ErrMalformedRecording", err)
	}
	var perr *recording.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *recording.ParseError in chain", err)
	}
	if perr.Step != 1 {
		t.Errorf("ParseError.Step = %d, want 1", perr.Step)
	}
}

func TestConvertContent_SelectorAttribute(t *testing.T) {
	data := `{"title": "t", "steps": [{"type": "click", "selectors": [["#a"], ["[data-qa=b]"]], "offsetX": 0, "offsetY": 0}]}`
	c := New(newMemWriter(), Config{SelectorAttribute: "data-qa"})

	script, _, err := c.ConvertContent("t.json", []byte(data))
	if err != nil {
		t.Fatalf("ConvertContent() error = %v", err)
	}
	if !strings.Contains(script, "WebUI.click(to(\"[data-qa=b]\"))") {
		t.Errorf("selector attribute override not applied:\n%s", script)
	}
}

func TestRun_Sequential(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "search.json", validRecording),
		writeFile(t, dir, "partial.json", warnedRecording),
		writeFile(t, dir, "broken.json", `{"title": `),
		writeFile(t, dir, "empty.json", ""),
	}

	w := newMemWriter()
	var started []string
	c := New(w, Config{
		OnFileStart: func(idx, total int, path string) {
			if total != 4 {
				t.Errorf("total = %d, want 4", total)
			}
			started = append(started, filepath.Base(path))
		},
	})

	result := c.Run(context.Background(), files)

	if result.TotalFiles != 4 {
		t.Errorf("TotalFiles = %d, want 4", result.TotalFiles)
	}
	if result.ConvertedFiles != 1 || result.WarnedFiles != 1 || result.FailedFiles != 2 {
		t.Errorf("counts = %d/%d/%d, want 1/1/2", result.ConvertedFiles, result.WarnedFiles, result.FailedFiles)
	}
	if result.Status != core.StatusFailed {
		t.Errorf("Status = %s, want failed", result.Status)
	}
	if strings.Join(started, ",") != "search.json,partial.json,broken.json,empty.json" {
		t.Errorf("files started out of order: %v", started)
	}

	statuses := []core.FileStatus{core.StatusConverted, core.StatusWarned, core.StatusFailed, core.StatusFailed}
	for i, fr := range result.FileResults {
		if fr.Status != statuses[i] {
			t.Errorf("FileResults[%d].Status = %s, want %s", i, fr.Status, statuses[i])
		}
	}

	partial := result.FileResults[1]
	if len(partial.Diagnostics) != 2 {
		t.Errorf("partial diagnostics = %v, want 2", partial.Diagnostics.Strings())
	}
	if partial.Location != "mem://partial" || partial.Title != "Partial" || partial.Steps != 3 {
		t.Errorf("unexpected partial result %+v", partial)
	}

	if !errors.Is(result.FileResults[2].Err, core.ErrMalformedRecording) {
		t.Errorf("broken.json error = %v", result.FileResults[2].Err)
	}
	if !errors.Is(result.FileResults[3].Err, core.ErrEmptyRecording) {
		t.Errorf("empty.json error = %v", result.FileResults[3].Err)
	}

	if len(w.scripts) != 2 {
		t.Errorf("wrote %d scripts, want 2", len(w.scripts))
	}
	if _, ok := w.scripts["empty"]; ok {
		t.Error("empty recording should produce no output")
	}
}

func TestRun_Parallel(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.json", "b.json", "c.json", "d.json", "e.json"} {
		files = append(files, writeFile(t, dir, name, validRecording))
	}
	files = append(files, writeFile(t, dir, "bad.json", "[]"))

	w := newMemWriter()
	result := New(w, Config{Parallelism: 3}).Run(context.Background(), files)

	if result.ConvertedFiles != 5 || result.FailedFiles != 1 {
		t.Errorf("counts = %d converted, %d failed", result.ConvertedFiles, result.FailedFiles)
	}
	for i, fr := range result.FileResults {
		if fr.Path != files[i] {
			t.Errorf("FileResults[%d].Path = %s, want %s", i, fr.Path, files[i])
		}
	}

	// Every script is identical regardless of which worker produced it.
	want := w.scripts["a"]
	for name, got := range w.scripts {
		if got != want {
			t.Errorf("script %s differs", name)
		}
	}
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "a.json", validRecording),
		writeFile(t, dir, "b.json", validRecording),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallelism := range []int{0, 2} {
		result := New(newMemWriter(), Config{Parallelism: parallelism}).Run(ctx, files)
		if result.SkippedFiles != 2 {
			t.Errorf("parallelism %d: SkippedFiles = %d, want 2", parallelism, result.SkippedFiles)
		}
		if result.Status != core.StatusSkipped {
			t.Errorf("parallelism %d: Status = %s, want skipped", parallelism, result.Status)
		}
	}
}

func TestRun_OutputFailure(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "a.json", validRecording),
		writeFile(t, dir, "b.json", validRecording),
	}

	w := newMemWriter()
	w.fail["a"] = true
	result := New(w, Config{}).Run(context.Background(), files)

	if result.FileResults[0].Status != core.StatusFailed {
		t.Errorf("a.json status = %s, want failed", result.FileResults[0].Status)
	}
	if !errors.Is(result.FileResults[0].Err, core.ErrOutputFailed) {
		t.Errorf("a.json error = %v", result.FileResults[0].Err)
	}
	if result.FileResults[1].Status != core.StatusConverted {
		t.Errorf("b.json status = %s, want converted", result.FileResults[1].Status)
	}
}

func TestRun_DirWriter(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "Checkout.JSON", validRecording)
	outDir := filepath.Join(dir, "out")

	result := New(output.NewDirWriter(outDir), Config{}).Run(context.Background(), []string{in})
	if result.Status != core.StatusConverted {
		t.Fatalf("Status = %s, err = %v", result.Status, result.FileResults[0].Err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "Checkout.groovy"))
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if !strings.HasPrefix(string(data), "import static ") {
		t.Error("output does not start with the import block")
	}
}

func TestRun_DuplicateTestNames(t *testing.T) {
	for _, parallelism := range []int{0, 2} {
		dir := t.TempDir()
		for _, sub := range []string{"a", "b"} {
			if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
				t.Fatal(err)
			}
		}
		first := writeFile(t, dir, filepath.Join("a", "login.json"), validRecording)
		writeFile(t, dir, filepath.Join("b", "login.json"), warnedRecording)

		files, err := recording.CollectFiles(dir)
		if err != nil {
			t.Fatalf("CollectFiles() error: %v", err)
		}
		outDir := filepath.Join(dir, "out")
		result := New(output.NewDirWriter(outDir), Config{Parallelism: parallelism}).Run(context.Background(), files)

		if result.ConvertedFiles != 1 || result.FailedFiles != 1 {
			t.Errorf("parallelism %d: counts = %d converted, %d failed, want 1/1",
				parallelism, result.ConvertedFiles, result.FailedFiles)
		}
		second := result.FileResults[1]
		if !errors.Is(second.Err, core.ErrOutputFailed) {
			t.Errorf("parallelism %d: second login.json error = %v", parallelism, second.Err)
		}
		if !strings.Contains(second.Error(), first) {
			t.Errorf("parallelism %d: error should name %s, got %q", parallelism, first, second.Error())
		}

		entries, err := os.ReadDir(outDir)
		if err != nil {
			t.Fatalf("failed to read output dir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("parallelism %d: %d files in output, want 1", parallelism, len(entries))
		}
		data, err := os.ReadFile(filepath.Join(outDir, "login.groovy"))
		if err != nil {
			t.Fatalf("expected login.groovy: %v", err)
		}
		if !strings.Contains(string(data), `WebUI.comment("Search")`) {
			t.Errorf("parallelism %d: login.groovy was not written from a/login.json", parallelism)
		}
	}
}

func TestFileResult_Error(t *testing.T) {
	if (FileResult{}).Error() != "" {
		t.Error("Error() should be empty without an error")
	}
	fr := FileResult{Err: errors.New("boom")}
	if fr.Error() != "boom" {
		t.Errorf("Error() = %q", fr.Error())
	}
}

func TestConvertContent_VerboseDump(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "convert.log")
	if err := logger.Init(logPath); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	logger.SetVerbose(true)
	defer func() {
		logger.SetVerbose(false)
		logger.Close()
	}()

	c := New(newMemWriter(), Config{})
	if _, _, err := c.ConvertContent("search.json", []byte(validRecording)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	log := string(data)
	if !strings.Contains(log, "parsed search.json (5 steps)") {
		t.Errorf("expected debug line in log, got:\n%s", log)
	}
	if !strings.Contains(log, `Title: (string) (len=6) "Search"`) {
		t.Errorf("expected flow dump in log, got:\n%s", log)
	}
}
