package configrender

import (
	"context"
	"fmt"
	"io"

	"github.com/hazyhaar/confstatus/confwriter"
	"github.com/hazyhaar/confstatus/printer"
)

const (
	nfoHeader = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN"` + "\n" +
		`"http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">` + "\n" +
		`<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en" lang="en">` +
		`<head><title>dummy</title></head><body><div>`
	nfoFooter = `</div></body></html>`
)

// Render writes the complete text or archive document to w.
func (p *Plugin) Render(ctx context.Context, w io.Writer, mode printer.Mode) error {
	ds := p.registry.Printers()
	switch mode {
	case printer.ModeText:
		tw := confwriter.NewTextWriter(w)
		err := p.renderSections(ctx, tw, ds, mode)
		if ferr := tw.Flush(); err == nil {
			err = ferr
		}
		return err

	case printer.ModeZip:
		zw := confwriter.NewZipWriter(w,
			confwriter.WithOpener(p.opener),
			confwriter.WithClock(p.now),
			confwriter.WithLogger(p.logger),
		)
		err := p.renderSections(ctx, zw, ds, mode)
		if err == nil {
			err = zw.Flush()
		}
		if err == nil {
			err = p.renderAttachments(ctx, zw, ds)
		}
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
		if ferr := zw.Flush(); err == nil {
			err = ferr
		}
		return err
	}
	return &ErrUnsupportedMode{Mode: mode.String()}
}

// RenderPrinter writes the web section of the printer labelled label,
// wrapped in a minimal XHTML document.
func (p *Plugin) RenderPrinter(ctx context.Context, w io.Writer, label string) error {
	d := p.lookupWeb(label)
	if d == nil {
		return &ErrUnknownPrinter{Label: label}
	}
	hw := confwriter.NewHTMLWriter(w)
	hw.WriteString(nfoHeader)
	hw.Println()
	p.printSection(ctx, hw, d, printer.ModeWeb)
	hw.WriteString(nfoFooter)
	hw.Println()
	return hw.Flush()
}

// lookupWeb returns the first descriptor labelled label that takes part
// in web rendering.
func (p *Plugin) lookupWeb(label string) *printer.Descriptor {
	for _, d := range p.registry.Printers() {
		if d.Label() == label && d.Match(printer.ModeWeb) {
			return d
		}
	}
	return nil
}

func (p *Plugin) renderSections(ctx context.Context, cw confwriter.ConfigurationWriter, ds []*printer.Descriptor, mode printer.Mode) error {
	for _, d := range ds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Match(mode) {
			continue
		}
		p.printSection(ctx, cw, d, mode)
		if err := cw.Err(); err != nil {
			return err
		}
	}
	return nil
}

// printSection wraps one printer's output in Title/End. A failing printer
// leaves a marker line in its section.
func (p *Plugin) printSection(ctx context.Context, cw confwriter.ConfigurationWriter, d *printer.Descriptor, mode printer.Mode) {
	cw.Title(d.Title())
	if err := printer.Print(ctx, cw, d.Printer(), mode); err != nil {
		p.logger.Warn("configrender: printer failed", "printer", d.Label(), "mode", mode.String(), "error", err)
		cw.Println(fmt.Sprintf("!! %s failed: %v", d.Title(), err))
	}
	cw.End()
}

func (p *Plugin) renderAttachments(ctx context.Context, zw *confwriter.ZipWriter, ds []*printer.Descriptor) error {
	for _, d := range ds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Match(printer.ModeZip) {
			continue
		}
		ap, ok := d.Printer().(printer.AttachmentProvider)
		if !ok {
			continue
		}
		urls := ap.Attachments(printer.ModeZip)
		if len(urls) == 0 {
			continue
		}
		if err := zw.HandleAttachments(ctx, d.Title(), urls); err != nil {
			return err
		}
	}
	return nil
}
