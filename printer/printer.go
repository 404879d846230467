// Package printer defines the contract between configuration printers and
// the configuration status renderer.
//
// A printer contributes one section of diagnostic output. It is registered
// with a transport (see package registry) together with a property map;
// the renderer only ever talks to it through the interfaces below:
//
//	type uptime struct{ start time.Time }
//
//	func (u uptime) Title() string { return "Uptime" }
//
//	func (u uptime) PrintConfiguration(_ context.Context, w printer.Writer) error {
//		printer.InfoLine(w, "", "Started", u.start)
//		return nil
//	}
package printer

import (
	"context"
	"io"
	"net/url"
)

// Registration property keys understood by the registry.
const (
	// PropLabel is the short URL-safe identifier of the printer (string).
	PropLabel = "plugin.label"
	// PropModes restricts the modes a printer participates in
	// (string or list of strings from txt, web, zip).
	PropModes = "modes"
)

// Writer is the output channel handed to printers. Line terminators must go
// through Println: the HTML rendering replaces them with markup.
type Writer interface {
	io.Writer
	io.StringWriter
	Print(a ...any)
	Printf(format string, a ...any)
	Println(a ...any)
}

// Printer contributes one section to the configuration status.
//
// Title may start with '%', in which case the remainder is a key looked up
// in the English resource bundle of the providing module.
type Printer interface {
	Title() string
	PrintConfiguration(ctx context.Context, w Writer) error
}

// ModeAwarePrinter is preferred over Printer.PrintConfiguration when a
// printer wants to render differently per mode.
type ModeAwarePrinter interface {
	Printer
	PrintConfigurationMode(ctx context.Context, w Writer, mode Mode) error
}

// AttachmentProvider is implemented by printers that contribute binary
// files to the archive. Locators are opened lazily while the archive is
// being written.
type AttachmentProvider interface {
	Attachments(mode Mode) []*url.URL
}

// Print renders p into w for the given mode, using the mode-aware entry
// point when p offers one.
func Print(ctx context.Context, w Writer, p Printer, mode Mode) error {
	if mp, ok := p.(ModeAwarePrinter); ok {
		return mp.PrintConfigurationMode(ctx, w, mode)
	}
	return p.PrintConfiguration(ctx, w)
}
