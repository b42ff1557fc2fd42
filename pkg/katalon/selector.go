package katalon

import (
	"strings"

	"github.com/devicelab-dev/katalon-recorder/pkg/recording"
)

// Locator helpers defined in the generated script's postamble.
const (
	HelperCSS   = "to"
	HelperXPath = "tox"
)

// Locator is a resolved selector together with the helper that turns it
// into a TestObject.
type Locator struct {
	Value  string
	Helper string
}

// Literal returns the selector as a quoted string literal.
func (l Locator) Literal() string {
	return Quote(l.Value)
}

// Expr returns the TestObject construction expression, e.g. to("#id").
func (l Locator) Expr() string {
	return l.Helper + "(" + l.Literal() + ")"
}

// ResolveSelector picks the selector the generated script should use.
//
// ARIA selectors are never chosen. When preferred is set, the first
// remaining selector whose primary form contains it wins; otherwise the
// first remaining selector in recorded order is used. Only the primary form
// of a fallback chain is kept. It returns false when nothing is left.
func ResolveSelector(selectors []recording.Selector, preferred string) (Locator, bool) {
	var candidates []recording.Selector
	for _, sel := range selectors {
		if len(sel) == 0 || sel.IsARIA() {
			continue
		}
		candidates = append(candidates, sel)
	}
	if len(candidates) == 0 {
		return Locator{}, false
	}

	chosen := candidates[0]
	if preferred != "" {
		for _, sel := range candidates {
			if strings.Contains(sel.Primary(), preferred) {
				chosen = sel
				break
			}
		}
	}

	if chosen.IsXPath() {
		return Locator{
			Value:  strings.TrimPrefix(chosen.Primary(), recording.PrefixXPath),
			Helper: HelperXPath,
		}, true
	}
	return Locator{Value: chosen.Primary(), Helper: HelperCSS}, true
}
