package recording

import (
	"strconv"
	"strings"
)

// StepType represents the type of step.
type StepType string

// Step type constants.
const (
	// Page
	StepSetViewport              StepType = "setViewport"
	StepNavigate                 StepType = "navigate"
	StepEmulateNetworkConditions StepType = "emulateNetworkConditions"
	StepClose                    StepType = "close"

	// Pointer
	StepClick       StepType = "click"
	StepDoubleClick StepType = "doubleClick"
	StepHover       StepType = "hover"
	StepScroll      StepType = "scroll"

	// Input
	StepChange  StepType = "change"
	StepKeyDown StepType = "keyDown"
	StepKeyUp   StepType = "keyUp"

	// Waits
	StepWaitForElement    StepType = "waitForElement"
	StepWaitForExpression StepType = "waitForExpression"

	// Other
	StepCustomStep StepType = "customStep"
)

// Step is the interface for all recorded steps.
type Step interface {
	Type() StepType
	Describe() string
}

// SelectorStep is implemented by steps that target an element.
type SelectorStep interface {
	Step
	StepSelectors() []Selector
}

// BaseStep contains common fields for all steps.
type BaseStep struct {
	StepType       StepType        `json:"type"`
	TimeoutMs      *float64        `json:"timeout,omitempty"`
	Target         string          `json:"target,omitempty"`
	Frame          []int           `json:"frame,omitempty"`
	AssertedEvents []AssertedEvent `json:"assertedEvents,omitempty"`
}

// Type returns the step type.
func (b *BaseStep) Type() StepType { return b.StepType }

// Describe returns a human-readable description.
func (b *BaseStep) Describe() string { return string(b.StepType) }

// Timeout returns the step timeout in milliseconds and whether one was recorded.
func (b *BaseStep) Timeout() (float64, bool) {
	if b.TimeoutMs == nil {
		return 0, false
	}
	return *b.TimeoutMs, true
}

// AssertedEvent is an event the recorder observed after a step.
type AssertedEvent struct {
	Type  string `json:"type"` // navigation
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// ============================================
// Page Steps
// ============================================

// SetViewportStep resizes the viewport.
type SetViewportStep struct {
	BaseStep
	Width             float64 `json:"width"`
	Height            float64 `json:"height"`
	DeviceScaleFactor float64 `json:"deviceScaleFactor,omitempty"`
	IsMobile          bool    `json:"isMobile,omitempty"`
	HasTouch          bool    `json:"hasTouch,omitempty"`
	IsLandscape       bool    `json:"isLandscape,omitempty"`
}

// NavigateStep opens a URL.
type NavigateStep struct {
	BaseStep
	URL string `json:"url"`
}

// EmulateNetworkConditionsStep throttles the network.
type EmulateNetworkConditionsStep struct {
	BaseStep
	Download float64 `json:"download"`
	Upload   float64 `json:"upload"`
	Latency  float64 `json:"latency"`
}

// CloseStep closes the page.
type CloseStep struct {
	BaseStep
}

// ============================================
// Pointer Steps
// ============================================

// Mouse buttons recorded for click steps.
const (
	ButtonPrimary   = "primary"
	ButtonAuxiliary = "auxiliary"
	ButtonSecondary = "secondary"
	ButtonBack      = "back"
	ButtonForward   = "forward"
)

// ClickStep clicks on an element.
type ClickStep struct {
	BaseStep
	Selectors  []Selector `json:"selectors"`
	OffsetX    float64    `json:"offsetX"`
	OffsetY    float64    `json:"offsetY"`
	Button     string     `json:"button,omitempty"`
	DeviceType string     `json:"deviceType,omitempty"` // mouse, pen, touch
	DurationMs float64    `json:"duration,omitempty"`
}

// IsSecondary returns true for a right click.
func (s *ClickStep) IsSecondary() bool { return s.Button == ButtonSecondary }

// DoubleClickStep double clicks on an element.
type DoubleClickStep struct {
	BaseStep
	Selectors  []Selector `json:"selectors"`
	OffsetX    float64    `json:"offsetX"`
	OffsetY    float64    `json:"offsetY"`
	Button     string     `json:"button,omitempty"`
	DeviceType string     `json:"deviceType,omitempty"`
}

// HoverStep moves the pointer over an element.
type HoverStep struct {
	BaseStep
	Selectors []Selector `json:"selectors"`
}

// ScrollStep scrolls the page, or an element into view when selectors are set.
type ScrollStep struct {
	BaseStep
	Selectors []Selector `json:"selectors,omitempty"`
	X         float64    `json:"x,omitempty"`
	Y         float64    `json:"y,omitempty"`
}

// HasSelectors returns true if the scroll targets an element.
func (s *ScrollStep) HasSelectors() bool { return len(s.Selectors) > 0 }

// ============================================
// Input Steps
// ============================================

// ChangeStep sets the value of a form control.
type ChangeStep struct {
	BaseStep
	Selectors []Selector `json:"selectors"`
	Value     string     `json:"value"`
}

// KeyDownStep presses a key.
type KeyDownStep struct {
	BaseStep
	Key string `json:"key"`
}

// KeyUpStep releases a key.
type KeyUpStep struct {
	BaseStep
	Key string `json:"key"`
}

// ============================================
// Wait Steps
// ============================================

// WaitForElementStep waits until an element count condition holds.
type WaitForElementStep struct {
	BaseStep
	Selectors  []Selector        `json:"selectors"`
	Operator   string            `json:"operator,omitempty"` // >=, ==, <=
	Count      *float64          `json:"count,omitempty"`
	Visible    *bool             `json:"visible,omitempty"`
	Properties map[string]any    `json:"properties,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// WaitForExpressionStep waits until a page expression is truthy.
type WaitForExpressionStep struct {
	BaseStep
	Expression string `json:"expression"`
}

// ============================================
// Other Steps
// ============================================

// CustomStep is an extension step recorded by a third-party plugin.
type CustomStep struct {
	BaseStep
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// ============================================
// Selector accessors
// ============================================

// StepSelectors returns the recorded selectors.
func (s *ClickStep) StepSelectors() []Selector { return s.Selectors }

// StepSelectors returns the recorded selectors.
func (s *DoubleClickStep) StepSelectors() []Selector { return s.Selectors }

// StepSelectors returns the recorded selectors.
func (s *HoverStep) StepSelectors() []Selector { return s.Selectors }

// StepSelectors returns the recorded selectors.
func (s *ScrollStep) StepSelectors() []Selector { return s.Selectors }

// StepSelectors returns the recorded selectors.
func (s *ChangeStep) StepSelectors() []Selector { return s.Selectors }

// StepSelectors returns the recorded selectors.
func (s *WaitForElementStep) StepSelectors() []Selector { return s.Selectors }

// ============================================
// Describe() implementations for warnings and logs
// ============================================

// Describe returns a human-readable description of the viewport step.
func (s *SetViewportStep) Describe() string {
	return "setViewport: " + FormatNumber(s.Width) + "x" + FormatNumber(s.Height)
}

// Describe returns a human-readable description of the navigate step.
func (s *NavigateStep) Describe() string {
	return "navigate: " + s.URL
}

// Describe returns a human-readable description of the click step.
func (s *ClickStep) Describe() string {
	if s.IsSecondary() {
		return "click (secondary): " + DescribeSelectors(s.Selectors)
	}
	return "click: " + DescribeSelectors(s.Selectors)
}

// Describe returns a human-readable description of the double click step.
func (s *DoubleClickStep) Describe() string {
	return "doubleClick: " + DescribeSelectors(s.Selectors)
}

// Describe returns a human-readable description of the hover step.
func (s *HoverStep) Describe() string {
	return "hover: " + DescribeSelectors(s.Selectors)
}

// Describe returns a human-readable description of the scroll step.
func (s *ScrollStep) Describe() string {
	if s.HasSelectors() {
		return "scroll: " + DescribeSelectors(s.Selectors)
	}
	return "scroll: " + FormatNumber(s.X) + "," + FormatNumber(s.Y)
}

// Describe returns a human-readable description of the change step.
func (s *ChangeStep) Describe() string {
	return "change: " + DescribeSelectors(s.Selectors) + " = \"" + s.Value + "\""
}

// Describe returns a human-readable description of the key down step.
func (s *KeyDownStep) Describe() string {
	return "keyDown: " + s.Key
}

// Describe returns a human-readable description of the key up step.
func (s *KeyUpStep) Describe() string {
	return "keyUp: " + s.Key
}

// Describe returns a human-readable description of the wait for element step.
func (s *WaitForElementStep) Describe() string {
	var b strings.Builder
	b.WriteString("waitForElement: ")
	b.WriteString(DescribeSelectors(s.Selectors))
	if s.Operator != "" && s.Count != nil {
		b.WriteString(" " + s.Operator + " " + FormatNumber(*s.Count))
	}
	return b.String()
}

// Describe returns a human-readable description of the custom step.
func (s *CustomStep) Describe() string {
	return "customStep: " + s.Name
}

// FormatNumber renders a recorded number the way the recorder wrote it:
// integers without a fraction, other values in shortest form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
