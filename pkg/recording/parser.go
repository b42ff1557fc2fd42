package recording

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors returned (wrapped in *ParseError) by Parse.
var (
	ErrMalformedRecording = errors.New("malformed recording")
	ErrEmptyRecording     = errors.New("empty recording")
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int // 1-based line in the source, 0 if unknown
	Step    int // 1-based step index, 0 if the error is not inside a step
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	case e.Step > 0:
		return fmt.Sprintf("%s: step %d: %s", e.Path, e.Step, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
}

// Unwrap returns ErrMalformedRecording or ErrEmptyRecording.
func (e *ParseError) Unwrap() error {
	if e.Err == nil {
		return ErrMalformedRecording
	}
	return e.Err
}

// ParseFile parses a single recording file.
func ParseFile(path string) (*Flow, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided recording file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

type rawFlow struct {
	Title             *string           `json:"title"`
	SelectorAttribute string            `json:"selectorAttribute"`
	Timeout           float64           `json:"timeout"`
	Steps             []json.RawMessage `json:"steps"`
}

// Parse parses recording JSON content.
func Parse(data []byte, sourcePath string) (*Flow, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{
			Path:    sourcePath,
			Message: "no recording found",
			Err:     ErrEmptyRecording,
		}
	}

	var raw rawFlow
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, wrapJSONError(sourcePath, data, 0, err)
	}

	if raw.Title == nil {
		return nil, &ParseError{Path: sourcePath, Message: "missing required field: title"}
	}
	if raw.Steps == nil {
		return nil, &ParseError{Path: sourcePath, Message: "missing required field: steps"}
	}

	flow := &Flow{
		SourcePath:        sourcePath,
		Title:             *raw.Title,
		SelectorAttribute: raw.SelectorAttribute,
		TimeoutMs:         raw.Timeout,
		Steps:             make([]Step, 0, len(raw.Steps)),
	}

	for i, rawStep := range raw.Steps {
		step, err := parseStep(rawStep, sourcePath, i+1)
		if err != nil {
			return nil, err
		}
		flow.Steps = append(flow.Steps, step)
	}

	return flow, nil
}

func parseStep(raw json.RawMessage, sourcePath string, index int) (Step, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, &ParseError{
			Path:    sourcePath,
			Step:    index,
			Message: "step must be an object",
		}
	}

	typeField, ok := fields["type"]
	if !ok {
		return nil, &ParseError{
			Path:    sourcePath,
			Step:    index,
			Message: "missing required field: type",
		}
	}
	var stepType string
	if err := json.Unmarshal(typeField, &stepType); err != nil {
		return nil, &ParseError{
			Path:    sourcePath,
			Step:    index,
			Message: "type must be a string",
		}
	}
	if !isStepType(stepType) {
		return nil, &ParseError{
			Path:    sourcePath,
			Step:    index,
			Message: fmt.Sprintf("unknown step type: %s", stepType),
		}
	}

	return decodeStep(StepType(stepType), raw, fields, sourcePath, index)
}

func isStepType(key string) bool {
	switch StepType(key) {
	case StepSetViewport, StepNavigate, StepEmulateNetworkConditions, StepClose,
		StepClick, StepDoubleClick, StepHover, StepScroll,
		StepChange, StepKeyDown, StepKeyUp,
		StepWaitForElement, StepWaitForExpression, StepCustomStep:
		return true
	}
	return false
}

//nolint:gocyclo
func decodeStep(stepType StepType, raw json.RawMessage, fields map[string]json.RawMessage, sourcePath string, index int) (Step, error) {
	decode := func(target any, required ...string) error {
		for _, name := range required {
			if _, ok := fields[name]; !ok {
				return &ParseError{
					Path:    sourcePath,
					Step:    index,
					Message: fmt.Sprintf("%s step: missing required field: %s", stepType, name),
				}
			}
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return wrapJSONError(sourcePath, raw, index, err)
		}
		return nil
	}

	switch stepType {
	case StepSetViewport:
		var s SetViewportStep
		if err := decode(&s, "width", "height"); err != nil {
			return nil, err
		}
		return &s, nil

	case StepNavigate:
		var s NavigateStep
		if err := decode(&s, "url"); err != nil {
			return nil, err
		}
		return &s, nil

	case StepEmulateNetworkConditions:
		var s EmulateNetworkConditionsStep
		if err := decode(&s, "download", "upload", "latency"); err != nil {
			return nil, err
		}
		return &s, nil

	case StepClose:
		var s CloseStep
		if err := decode(&s); err != nil {
			return nil, err
		}
		return &s, nil

	case StepClick:
		var s ClickStep
		if err := decode(&s, "selectors"); err != nil {
			return nil, err
		}
		if err := checkButton(s.Button, sourcePath, index); err != nil {
			return nil, err
		}
		return &s, nil

	case StepDoubleClick:
		var s DoubleClickStep
		if err := decode(&s, "selectors"); err != nil {
			return nil, err
		}
		if err := checkButton(s.Button, sourcePath, index); err != nil {
			return nil, err
		}
		return &s, nil

	case StepHover:
		var s HoverStep
		if err := decode(&s, "selectors"); err != nil {
			return nil, err
		}
		return &s, nil

	case StepScroll:
		var s ScrollStep
		if err := decode(&s); err != nil {
			return nil, err
		}
		return &s, nil

	case StepChange:
		var s ChangeStep
		if err := decode(&s, "selectors", "value"); err != nil {
			return nil, err
		}
		return &s, nil

	case StepKeyDown:
		var s KeyDownStep
		if err := decode(&s, "key"); err != nil {
			return nil, err
		}
		return &s, nil

	case StepKeyUp:
		var s KeyUpStep
		if err := decode(&s, "key"); err != nil {
			return nil, err
		}
		return &s, nil

	case StepWaitForElement:
		var s WaitForElementStep
		if err := decode(&s, "selectors"); err != nil {
			return nil, err
		}
		switch s.Operator {
		case "", ">=", "==", "<=":
		default:
			return nil, &ParseError{
				Path:    sourcePath,
				Step:    index,
				Message: fmt.Sprintf("waitForElement step: invalid operator: %s", s.Operator),
			}
		}
		return &s, nil

	case StepWaitForExpression:
		var s WaitForExpressionStep
		if err := decode(&s, "expression"); err != nil {
			return nil, err
		}
		return &s, nil

	case StepCustomStep:
		var s CustomStep
		if err := decode(&s, "name"); err != nil {
			return nil, err
		}
		return &s, nil
	}

	return nil, &ParseError{
		Path:    sourcePath,
		Step:    index,
		Message: fmt.Sprintf("unknown step type: %s", stepType),
	}
}

func checkButton(button, sourcePath string, index int) error {
	switch button {
	case "", ButtonPrimary, ButtonAuxiliary, ButtonSecondary, ButtonBack, ButtonForward:
		return nil
	}
	return &ParseError{
		Path:    sourcePath,
		Step:    index,
		Message: fmt.Sprintf("invalid button: %s", button),
	}
}

// wrapJSONError converts encoding/json errors into a ParseError. Offsets are
// only meaningful for whole-document errors (step == 0).
func wrapJSONError(path string, data []byte, step int, err error) error {
	pe := &ParseError{Path: path, Step: step, Message: err.Error()}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		pe.Message = "invalid JSON: " + syntaxErr.Error()
		if step == 0 {
			pe.Line = lineAt(data, syntaxErr.Offset)
		}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "recording"
		}
		pe.Message = fmt.Sprintf("field %s: cannot use %s as %s", field, typeErr.Value, jsonKind(typeErr.Type.Kind().String()))
		if step == 0 {
			pe.Line = lineAt(data, typeErr.Offset)
		}
	}
	return pe
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string":
		return "string"
	case "float64", "int", "int64":
		return "number"
	case "bool":
		return "boolean"
	case "slice":
		return "array"
	case "map", "struct":
		return "object"
	}
	return goKind
}

// lineAt returns the 1-based line containing the byte offset.
func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 0 {
		offset = 0
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}

// CollectFiles expands the given paths into recording files. Directories
// are walked recursively for *.json files; the result is sorted per argument
// and de-duplicated.
func CollectFiles(paths ...string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.ToLower(filepath.Ext(path)) == ".json" {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", p, err)
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}

	return files, nil
}

// TestName derives the generated test name from a recording path:
// the base name without its .json extension.
func TestName(path string) string {
	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(name), ".json") {
		name = name[:len(name)-len(".json")]
	}
	return name
}
