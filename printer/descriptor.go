package printer

import "slices"

// Descriptor is the immutable record of one registered printer.
type Descriptor struct {
	printer Printer
	title   string
	label   string
	modes   []Mode // nil admits every mode
}

// NewDescriptor builds a descriptor. title is the resolved display title;
// modes is the raw "modes" registration property (see ParseModes).
func NewDescriptor(p Printer, title, label string, modes any) *Descriptor {
	return &Descriptor{
		printer: p,
		title:   title,
		label:   label,
		modes:   ParseModes(modes),
	}
}

// Printer returns the printer handle.
func (d *Descriptor) Printer() Printer { return d.printer }

// Title returns the display title.
func (d *Descriptor) Title() string { return d.title }

// Label returns the URL label.
func (d *Descriptor) Label() string { return d.label }

// Modes returns a copy of the mode filter, nil when unconstrained.
func (d *Descriptor) Modes() []Mode { return slices.Clone(d.modes) }

// Match reports whether the printer participates in mode.
func (d *Descriptor) Match(mode Mode) bool {
	return d.modes == nil || slices.Contains(d.modes, mode)
}
