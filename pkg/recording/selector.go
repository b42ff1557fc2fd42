package recording

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Selector prefixes with special handling in generated scripts.
const (
	PrefixARIA  = "aria/"
	PrefixXPath = "xpath/"
)

// Selector is one recorded locator for an element. The recorder writes it
// either as a single string or as a list of strings; a list is a fallback
// chain for the same element, most specific first.
type Selector []string

// UnmarshalJSON allows Selector to be unmarshaled from a string or a list of strings.
func (s *Selector) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = Selector{single}
		return nil
	}

	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("selector must be a string or an array of strings")
	}
	if len(parts) == 0 {
		return fmt.Errorf("selector must not be an empty array")
	}
	*s = parts
	return nil
}

// MarshalJSON writes single-form selectors back as plain strings.
func (s Selector) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// Primary returns the first (most specific) form.
func (s Selector) Primary() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// IsARIA returns true if the primary form is an accessibility-tree locator.
func (s Selector) IsARIA() bool {
	return strings.HasPrefix(s.Primary(), PrefixARIA)
}

// IsXPath returns true if the primary form is an XPath locator.
func (s Selector) IsXPath() bool {
	return strings.HasPrefix(s.Primary(), PrefixXPath)
}

// Describe returns a human-readable description.
func (s Selector) Describe() string {
	return strings.Join(s, ",")
}

// DescribeSelectors renders a selector set the way it appears in warnings.
func DescribeSelectors(selectors []Selector) string {
	parts := make([]string, len(selectors))
	for i, sel := range selectors {
		parts[i] = sel.Describe()
	}
	return strings.Join(parts, ",")
}
