// Package confwriter implements the output channels of the configuration
// status renderer: a plain-text document, an HTML fragment and a zip
// archive. All three share one contract, ConfigurationWriter, and differ
// only in how section boundaries, body text and line breaks are encoded.
//
//	w := confwriter.NewTextWriter(os.Stdout)
//	w.Title("Runtime")
//	w.Println("GOMAXPROCS = 8")
//	w.End()
//	w.Flush()
//
// Writers buffer their output and keep the first error returned by the
// underlying sink; check Flush (or Err) once rendering is done.
package confwriter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hazyhaar/confstatus/printer"
)

// ErrAttachmentsUnsupported is returned by HandleAttachments on writers
// that cannot carry binary attachments (everything but the archive).
var ErrAttachmentsUnsupported = errors.New("confwriter: attachments not supported")

// ConfigurationWriter is the output channel driven by the renderer.
// Title and End delimit one section; printers write the body in between.
type ConfigurationWriter interface {
	printer.Writer

	// Title opens a section.
	Title(title string)
	// End closes the current section.
	End()
	// HandleAttachments stores the binary resources of one printer.
	HandleAttachments(ctx context.Context, title string, urls []*url.URL) error
	// Flush writes buffered data and flushes the underlying sink.
	Flush() error
	// Err returns the first error reported by the underlying sink.
	Err() error
}

// ForMode returns the writer matching mode: text for txt, HTML for web and
// an archive for zip. Callers own the returned archive writer and must
// Close it to finalize the archive.
func ForMode(mode printer.Mode, w io.Writer, opts ...ZipOption) (ConfigurationWriter, error) {
	switch mode {
	case printer.ModeText:
		return NewTextWriter(w), nil
	case printer.ModeWeb:
		return NewHTMLWriter(w), nil
	case printer.ModeZip:
		return NewZipWriter(w, opts...), nil
	}
	return nil, fmt.Errorf("confwriter: unknown mode %q", mode)
}

// base carries the buffering, sticky error and print helpers shared by
// every writer. Concrete writers plug in how body text and line breaks
// are encoded.
type base struct {
	kind string
	sink io.Writer
	bw   *bufio.Writer
	err  error

	text func(s string)
	eol  func()
}

func (b *base) init(kind string, sink io.Writer, text func(string), eol func()) {
	b.kind = kind
	b.sink = sink
	b.bw = bufio.NewWriter(sink)
	b.text = text
	b.eol = eol
}

// raw writes s without any encoding.
func (b *base) raw(s string) {
	if b.err != nil || s == "" {
		return
	}
	_, b.err = b.bw.WriteString(s)
}

func (b *base) Write(p []byte) (int, error) {
	b.text(string(p))
	if b.err != nil {
		return 0, b.err
	}
	return len(p), nil
}

func (b *base) WriteString(s string) (int, error) {
	b.text(s)
	if b.err != nil {
		return 0, b.err
	}
	return len(s), nil
}

func (b *base) Print(a ...any) { b.text(fmt.Sprint(a...)) }

func (b *base) Printf(format string, a ...any) { b.text(fmt.Sprintf(format, a...)) }

// Println follows fmt.Println spacing rules but ends the line with the
// writer's own terminator.
func (b *base) Println(a ...any) {
	if len(a) > 0 {
		s := fmt.Sprintln(a...)
		b.text(s[:len(s)-1])
	}
	b.eol()
}

func (b *base) Err() error { return b.err }

func (b *base) Flush() error {
	if b.err != nil {
		return b.err
	}
	if b.err = b.bw.Flush(); b.err != nil {
		return b.err
	}
	b.err = flushSink(b.sink)
	return b.err
}

func (b *base) HandleAttachments(context.Context, string, []*url.URL) error {
	return fmt.Errorf("%w by the %s writer", ErrAttachmentsUnsupported, b.kind)
}

func flushSink(w io.Writer) error {
	switch f := w.(type) {
	case interface{ Flush() error }:
		return f.Flush()
	case http.Flusher:
		f.Flush()
	}
	return nil
}
