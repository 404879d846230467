// Package printers holds the configuration printers shipped with
// confstatus. Their titles are bundle keys of the Provider bundle; load it
// with LoadBundles before building a registry over them.
package printers

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/hazyhaar/confstatus/i18n"
	"github.com/hazyhaar/confstatus/printer"
)

// Provider is the provider name the built-in printers register under.
const Provider = "confstatus"

//go:embed bundles/*.yaml
var bundleFS embed.FS

// LoadBundles adds the built-in printer titles to m.
func LoadBundles(m *i18n.Manager) error {
	sub, err := fs.Sub(bundleFS, "bundles")
	if err != nil {
		return fmt.Errorf("printers: bundles: %w", err)
	}
	return m.LoadFS(sub, Provider)
}

// Named is a printer with the name it is bound under and its default
// registration properties.
type Named struct {
	Name       string
	Printer    printer.Printer
	Properties map[string]any
}
