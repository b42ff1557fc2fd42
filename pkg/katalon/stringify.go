// Package katalon renders recordings as Katalon Studio Groovy test scripts.
package katalon

import (
	"fmt"
	"math"

	"github.com/devicelab-dev/katalon-recorder/pkg/core"
	"github.com/devicelab-dev/katalon-recorder/pkg/logger"
	"github.com/devicelab-dev/katalon-recorder/pkg/recording"
)

// DefaultWaitTimeout is the waitForElementVisible timeout, in seconds, used
// when a step records none.
const DefaultWaitTimeout = 3

const imports = `import static com.kms.katalon.core.checkpoint.CheckpointFactory.findCheckpoint
import static com.kms.katalon.core.testcase.TestCaseFactory.findTestCase
import static com.kms.katalon.core.testdata.TestDataFactory.findTestData
import static com.kms.katalon.core.testobject.ObjectRepository.findTestObject
import static com.kms.katalon.core.testobject.ObjectRepository.findWindowsObject
import com.kms.katalon.core.checkpoint.Checkpoint as Checkpoint
import com.kms.katalon.core.cucumber.keyword.CucumberBuiltinKeywords as CucumberKW
import com.kms.katalon.core.mobile.keyword.MobileBuiltInKeywords as Mobile
import com.kms.katalon.core.model.FailureHandling as FailureHandling
import com.kms.katalon.core.testcase.TestCase as TestCase
import com.kms.katalon.core.testdata.TestData as TestData
import com.kms.katalon.core.testng.keyword.TestNGBuiltinKeywords as TestNGKW
import com.kms.katalon.core.testobject.TestObject as TestObject
import com.kms.katalon.core.testobject.ConditionType as ConditionType
import com.kms.katalon.core.webservice.keyword.WSBuiltInKeywords as WS
import com.kms.katalon.core.webui.keyword.WebUiBuiltInKeywords as WebUI
import com.kms.katalon.core.windows.keyword.WindowsBuiltinKeywords as Windows
import internal.GlobalVariable as GlobalVariable
import org.openqa.selenium.Keys as Keys

`

const helpers = `
def to(css) {
  TestObject to = new TestObject(css)
  to.addProperty('css', ConditionType.EQUALS, css)
  return to
}

def tox(xpath) {
  TestObject tox = new TestObject(xpath)
  tox.addProperty('xpath', ConditionType.EQUALS, xpath)
  return tox
}

def setValue(TestObject to, def value) {
  def we = WebUI.findWebElement(to, 3)
  def tagName = we.getTagName()

  if ("select".equals(tagName)) {
    WebUI.selectOptionByValue(to, value, false)
  } else {
    WebUI.setText(to, value)
  }
}
`

// Option configures an Extension.
type Option func(*Extension)

// WithSelectorAttribute overrides the recording's preferred selector attribute.
func WithSelectorAttribute(attr string) Option {
	return func(e *Extension) {
		e.selectorAttribute = attr
	}
}

// WithLogging mirrors every diagnostic to the global logger.
func WithLogging(enabled bool) Option {
	return func(e *Extension) {
		e.logDiagnostics = enabled
	}
}

// Extension turns recording steps into Katalon statements.
//
// The only state it carries is the diagnostics collected so far; each step
// renders from its own fields and the flow alone.
type Extension struct {
	selectorAttribute string
	logDiagnostics    bool
	diagnostics       core.Diagnostics
}

// NewExtension creates a new Extension.
func NewExtension(opts ...Option) *Extension {
	e := &Extension{logDiagnostics: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Diagnostics returns the diagnostics reported since the extension was created.
func (e *Extension) Diagnostics() core.Diagnostics {
	out := make(core.Diagnostics, len(e.diagnostics))
	copy(out, e.diagnostics)
	return out
}

// BeforeAllSteps writes the imports and opens the browser.
func (e *Extension) BeforeAllSteps(w LineWriter, flow *recording.Flow) {
	w.AppendLine(imports)
	w.AppendLine("\nWebUI.comment(" + Quote(flow.Title) + ")\nWebUI.openBrowser('')")
}

// AfterAllSteps writes the helper definitions used by generated statements.
func (e *Extension) AfterAllSteps(w LineWriter, flow *recording.Flow) {
	w.AppendLine(helpers)
}

// StringifyStep writes the statement for one step. Steps that cannot be
// translated write nothing; all but unknown keys are reported as diagnostics.
func (e *Extension) StringifyStep(w LineWriter, step recording.Step, flow *recording.Flow) {
	switch s := step.(type) {
	case *recording.SetViewportStep:
		w.AppendLine(fmt.Sprintf("WebUI.setViewPortSize(%s, %s)",
			recording.FormatNumber(s.Width), recording.FormatNumber(s.Height)))

	case *recording.NavigateStep:
		w.AppendLine("WebUI.navigateToUrl(" + Quote(s.URL) + ")")

	case *recording.ClickStep:
		loc, ok := e.resolve(s, flow)
		if !ok {
			e.report(core.ErrUnresolvableSelector, step, flow,
				fmt.Sprintf("The click on %s was not able to export to Katalon. Please adjust selectors and try again",
					recording.DescribeSelectors(s.Selectors)))
			return
		}
		if s.IsSecondary() {
			// Right clicks take a locator like every other action
			w.AppendLine("WebUI.rightClick(" + loc.Expr() + ")")
			return
		}
		w.AppendLine("WebUI.click(" + loc.Expr() + ")")

	case *recording.ChangeStep:
		loc, ok := e.resolve(s, flow)
		if !ok {
			e.reportUnresolved(step, flow, "change", s.Selectors)
			return
		}
		w.AppendLine("setValue(" + loc.Expr() + ", " + Quote(s.Value) + ")")

	case *recording.KeyDownStep:
		if key, ok := LookupKey(s.Key); ok {
			w.AppendLine("WebUI.sendKeys(tox('//body'), Keys.chord(" + key + "))")
		}

	case *recording.ScrollStep:
		if !s.HasSelectors() {
			w.AppendLine(fmt.Sprintf("WebUI.scrollToPosition(%s, %s)",
				recording.FormatNumber(s.X), recording.FormatNumber(s.Y)))
			return
		}
		loc, ok := e.resolve(s, flow)
		if !ok {
			e.reportUnresolved(step, flow, "scroll", s.Selectors)
			return
		}
		w.AppendLine("WebUI.scrollToElement(" + loc.Expr() + ")")

	case *recording.HoverStep:
		loc, ok := e.resolve(s, flow)
		if !ok {
			e.reportUnresolved(step, flow, "hover", s.Selectors)
			return
		}
		w.AppendLine("WebUI.mouseOver(" + loc.Expr() + ")")

	case *recording.WaitForElementStep:
		loc, ok := e.resolve(s, flow)
		if !ok {
			e.reportUnresolved(step, flow, "waitForElement", s.Selectors)
			return
		}
		w.AppendLine(fmt.Sprintf("WebUI.waitForElementVisible(%s, %d)", loc.Expr(), waitTimeout(s, flow)))

	default:
		e.report(core.ErrUnsupportedStepType, step, flow,
			fmt.Sprintf("Katalon Recorder does not handle migration of types %s.", step.Type()))
	}
}

func (e *Extension) resolve(step recording.SelectorStep, flow *recording.Flow) (Locator, bool) {
	attr := e.selectorAttribute
	if attr == "" {
		attr = flow.SelectorAttribute
	}
	return ResolveSelector(step.StepSelectors(), attr)
}

func (e *Extension) reportUnresolved(step recording.Step, flow *recording.Flow, action string, selectors []recording.Selector) {
	e.report(core.ErrUnresolvableSelector, step, flow,
		fmt.Sprintf("The %s on %s was not able to be exported to Katalon. Please adjust your selectors and try again.",
			action, recording.DescribeSelectors(selectors)))
}

func (e *Extension) report(kind *core.ConversionError, step recording.Step, flow *recording.Flow, message string) {
	index := stepIndex(flow, step)
	e.diagnostics.Add(kind, index, string(step.Type()), message)
	if e.logDiagnostics {
		logger.Warn("%s: step %d (%s): %s", flow.SourcePath, index+1, step.Type(), message)
	}
}

// stepIndex finds the position of step in the flow, or -1 when the step is
// not part of it.
func stepIndex(flow *recording.Flow, step recording.Step) int {
	for i, s := range flow.Steps {
		if s == step {
			return i
		}
	}
	return -1
}

// waitTimeout returns the waitForElementVisible timeout in seconds, the unit
// Katalon expects. Recordings store milliseconds, so the step's timeout (or
// the flow's when the step has none) is rounded up to whole seconds.
func waitTimeout(s *recording.WaitForElementStep, flow *recording.Flow) int {
	ms, ok := s.Timeout()
	if !ok || ms <= 0 {
		ms = flow.TimeoutMs
	}
	if ms <= 0 {
		return DefaultWaitTimeout
	}
	secs := int(math.Ceil(ms / 1000))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Stringify renders a whole flow: preamble, one statement per translatable
// step, then the helper definitions.
func Stringify(flow *recording.Flow, opts ...Option) (string, core.Diagnostics) {
	ext := NewExtension(opts...)
	buf := NewBuffer()

	ext.BeforeAllSteps(buf, flow)
	for _, step := range flow.Steps {
		ext.StringifyStep(buf, step, flow)
	}
	ext.AfterAllSteps(buf, flow)

	return buf.String(), ext.Diagnostics()
}
