package confwriter

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

const lineBreak = "<br/>"

// HTMLWriter passes markup through verbatim outside sections and escapes
// printer output inside them. Title does not emit anything: the title is
// rendered by the surrounding page.
//
// Inside a section, line breaks are written as <br/> rather than newlines
// so that the fragment renders the same whatever white-space rules the
// embedding page applies.
type HTMLWriter struct {
	base
	filtering bool
	prevCR    bool
}

// NewHTMLWriter returns an HTML writer over w.
func NewHTMLWriter(w io.Writer) *HTMLWriter {
	h := &HTMLWriter{}
	h.init("html", w, h.filtered, h.newline)
	return h
}

// Title starts escaping body output.
func (h *HTMLWriter) Title(string) {
	h.filtering = true
	h.prevCR = false
}

// End stops escaping.
func (h *HTMLWriter) End() {
	h.filtering = false
	h.prevCR = false
}

func (h *HTMLWriter) newline() {
	if h.filtering {
		h.raw(lineBreak)
		h.prevCR = false
		return
	}
	h.raw("\n")
}

func (h *HTMLWriter) filtered(s string) {
	if !h.filtering {
		h.raw(s)
		return
	}
	h.raw(h.escape(s))
}

// escape turns \n, \r\n and \r into <br/> and entity-escapes the text
// in between. A \r\n split across two writes still yields a single break.
func (h *HTMLWriter) escape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 16)
	for s != "" {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			sb.WriteString(html.EscapeString(s))
			h.prevCR = false
			break
		}
		if i > 0 {
			sb.WriteString(html.EscapeString(s[:i]))
			h.prevCR = false
		}
		c := s[i]
		if c == '\r' || !h.prevCR {
			sb.WriteString(lineBreak)
		}
		h.prevCR = c == '\r'
		s = s[i+1:]
	}
	return sb.String()
}
