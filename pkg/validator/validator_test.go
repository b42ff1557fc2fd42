package validator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devicelab-dev/katalon-recorder/pkg/core"
	"github.com/devicelab-dev/katalon-recorder/pkg/recording"
)

const cleanRecording = `{
  "title": "Clean",
  "steps": [
    {"type": "navigate", "url": "https://example.com/"},
    {"type": "click", "selectors": [["#login"]], "offsetX": 1, "offsetY": 1}
  ]
}`

func writeRecording(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidate_SingleFile(t *testing.T) {
	file := writeRecording(t, t.TempDir(), "clean.json", cleanRecording)

	result := New().Validate(file)

	if !result.IsValid() {
		t.Errorf("expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Files) != 1 {
		t.Errorf("expected 1 file, got %d", len(result.Files))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestValidate_Directory(t *testing.T) {
	dir := t.TempDir()
	writeRecording(t, dir, "b.json", cleanRecording)
	writeRecording(t, dir, "a.json", cleanRecording)
	writeRecording(t, dir, "nested/c.json", cleanRecording)
	writeRecording(t, dir, "notes.txt", "not a recording")

	result := New().Validate(dir)

	if !result.IsValid() {
		t.Errorf("expected valid result, got errors: %v", result.Errors)
	}
	if len(result.Files) != 3 {
		t.Fatalf("expected 3 files, got %v", result.Files)
	}
	if filepath.Base(result.Files[0]) != "a.json" || filepath.Base(result.Files[1]) != "b.json" {
		t.Errorf("files not sorted: %v", result.Files)
	}
}

func TestValidate_Malformed(t *testing.T) {
	dir := t.TempDir()
	good := writeRecording(t, dir, "good.json", cleanRecording)
	bad := writeRecording(t, dir, "bad.json", `{"title": "x", "steps": [{"type": "teleport"}]}`)

	result := New().Validate(good, bad)

	if result.IsValid() {
		t.Fatal("expected errors for malformed recording")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !errors.Is(result.Errors[0], recording.ErrMalformedRecording) {
		t.Errorf("error = %v, want ErrMalformedRecording in chain", result.Errors[0])
	}
	if !strings.Contains(result.Errors[0].Error(), "bad.json") {
		t.Errorf("error should name the file: %v", result.Errors[0])
	}
	if len(result.Files) != 1 || result.Files[0] != good {
		t.Errorf("Files = %v, want only the good recording", result.Files)
	}
}

func TestValidate_EmptyFile(t *testing.T) {
	file := writeRecording(t, t.TempDir(), "empty.json", "")

	result := New().Validate(file)

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Error(), core.ErrEmptyRecording.Message) {
		t.Errorf("error = %v", result.Errors[0])
	}
	if !errors.Is(result.Errors[0], recording.ErrEmptyRecording) {
		t.Errorf("error = %v, want ErrEmptyRecording in chain", result.Errors[0])
	}
}

func TestValidate_Warnings(t *testing.T) {
	content := `{
  "title": "Warn",
  "steps": [
    {"type": "doubleClick", "selectors": [["#a"]], "offsetX": 1, "offsetY": 1},
    {"type": "hover", "selectors": [["aria/Menu"]]},
    {"type": "keyDown", "key": "UnknownKey"}
  ]
}`
	file := writeRecording(t, t.TempDir(), "warn.json", content)

	result := New().Validate(file)

	if !result.IsValid() {
		t.Fatalf("warnings must not invalidate: %v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", result.Warnings)
	}
	if result.Warnings[0].Diagnostic.Code != core.ErrUnsupportedStepType.Code {
		t.Errorf("first warning = %v", result.Warnings[0])
	}
	if result.Warnings[1].Diagnostic.Code != core.ErrUnresolvableSelector.Code {
		t.Errorf("second warning = %v", result.Warnings[1])
	}
	if !strings.HasPrefix(result.Warnings[1].String(), file+": step 2 (hover)") {
		t.Errorf("Warning.String() = %q", result.Warnings[1].String())
	}
}

func TestValidate_NonexistentPath(t *testing.T) {
	result := New().Validate(filepath.Join(t.TempDir(), "missing.json"))

	if result.IsValid() {
		t.Error("expected error for nonexistent path")
	}
}

func TestValidate_NoRecordings(t *testing.T) {
	result := New().Validate(t.TempDir())

	if result.IsValid() {
		t.Error("expected error for a directory without recordings")
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{File: "flow.json", Message: "parse error"}
	if err.Error() != "flow.json: parse error" {
		t.Errorf("Error() = %q", err.Error())
	}
}
