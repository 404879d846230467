package confwriter

import "io"

// TextWriter renders sections as plain text:
//
//	*** Title:
//	body
//	(blank line)
type TextWriter struct {
	base
}

// NewTextWriter returns a plain-text writer over w.
func NewTextWriter(w io.Writer) *TextWriter {
	t := &TextWriter{}
	t.init("text", w, t.raw, t.newline)
	return t
}

func (t *TextWriter) newline() { t.raw("\n") }

// Title writes the "*** title:" header line.
func (t *TextWriter) Title(title string) {
	t.raw("*** ")
	t.raw(title)
	t.raw(":")
	t.newline()
}

// End writes the blank separator line.
func (t *TextWriter) End() { t.newline() }
