package katalon

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Quote renders s as a double-quoted Groovy string literal.
//
// Escaping follows JSON string rules (quotes, backslashes, control
// characters) with HTML escaping disabled, but the result is not
// byte-for-byte JSON.stringify output: "$" becomes "\$" because Groovy
// interpolates it inside double quotes, U+2028 and U+2029 are written as
// \u escapes, and invalid UTF-8 is replaced with \ufffd.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	quoted := strings.TrimSuffix(buf.String(), "\n")
	return strings.ReplaceAll(quoted, "$", `\$`)
}
