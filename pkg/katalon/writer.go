package katalon

import "strings"

// LineWriter is the output sink the transcoder appends generated lines to.
type LineWriter interface {
	AppendLine(text string)
}

// Buffer is an in-memory LineWriter.
//
// Text passed to AppendLine may span several lines; it is split on "\n" and
// trailing whitespace is trimmed from each resulting line.
type Buffer struct {
	lines []string
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// AppendLine appends text as one or more lines.
func (b *Buffer) AppendLine(text string) {
	for _, line := range strings.Split(text, "\n") {
		b.lines = append(b.lines, strings.TrimRight(line, " \t\r"))
	}
}

// String joins the lines, each terminated by "\n". An empty buffer renders
// as the empty string.
func (b *Buffer) String() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}
