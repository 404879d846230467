package printers

import (
	"context"
	"fmt"

	"github.com/hazyhaar/confstatus/printer"
	"github.com/hazyhaar/confstatus/registry"
)

// Registrations lists the printers of a registry, itself included.
type Registrations struct {
	reg *registry.Registry
}

// NewRegistrations returns a printer over reg.
func NewRegistrations(reg *registry.Registry) *Registrations {
	return &Registrations{reg: reg}
}

func (r *Registrations) Title() string { return "%registrations.title" }

func (r *Registrations) PrintConfiguration(_ context.Context, w printer.Writer) error {
	snap := r.reg.Snapshot()
	printer.InfoLine(w, "", "Tracking count", snap.Count)
	printer.InfoLine(w, "", "Snapshots built", r.reg.Stats())
	printer.InfoLine(w, "", "Printers", len(snap.Descriptors))
	for _, d := range snap.Descriptors {
		w.Println()
		printer.InfoLine(w, "", "Title", d.Title())
		printer.InfoLine(w, "  ", "Label", d.Label())
		var modes any = "all"
		if m := d.Modes(); m != nil {
			modes = m
		}
		printer.InfoLine(w, "  ", "Modes", modes)
		printer.InfoLine(w, "  ", "Type", fmt.Sprintf("%T", d.Printer()))
		_, mode := d.Printer().(printer.ModeAwarePrinter)
		_, attach := d.Printer().(printer.AttachmentProvider)
		printer.InfoLine(w, "  ", "Mode aware", mode)
		printer.InfoLine(w, "  ", "Attachments", attach)
	}
	return nil
}
