package printers

import (
	"context"
	"runtime/debug"

	"github.com/hazyhaar/confstatus/printer"
)

// BuildInfo prints the main module, VCS stamp and dependency list embedded
// in the binary.
type BuildInfo struct {
	read func() (*debug.BuildInfo, bool)
}

// NewBuildInfo returns a printer over the running binary's build info.
func NewBuildInfo() *BuildInfo {
	return &BuildInfo{read: debug.ReadBuildInfo}
}

func (b *BuildInfo) Title() string { return "%buildinfo.title" }

func (b *BuildInfo) PrintConfiguration(_ context.Context, w printer.Writer) error {
	info, ok := b.read()
	if !ok {
		w.Println("Build information is not available.")
		return nil
	}
	printer.InfoLine(w, "", "Path", info.Path)
	printer.InfoLine(w, "", "Main module", info.Main.Path+" "+info.Main.Version)
	printer.InfoLine(w, "", "Go version", info.GoVersion)
	for _, s := range info.Settings {
		printer.InfoLine(w, "", s.Key, s.Value)
	}
	if len(info.Deps) == 0 {
		return nil
	}
	w.Println()
	w.Println("Dependencies")
	for _, d := range info.Deps {
		v := d.Version
		if d.Replace != nil {
			v += " => " + d.Replace.Path + " " + d.Replace.Version
		}
		printer.InfoLine(w, "  ", d.Path, v)
	}
	return nil
}
