package printers

import (
	"context"
	"runtime"
	"runtime/pprof"

	"github.com/hazyhaar/confstatus/printer"
)

// Goroutines dumps goroutine stacks. The web tab gets the grouped profile;
// the text and archive documents get every stack.
type Goroutines struct{}

func (Goroutines) Title() string { return "%goroutines.title" }

func (g Goroutines) PrintConfiguration(ctx context.Context, w printer.Writer) error {
	return g.PrintConfigurationMode(ctx, w, printer.ModeText)
}

func (Goroutines) PrintConfigurationMode(_ context.Context, w printer.Writer, mode printer.Mode) error {
	printer.InfoLine(w, "", "Count", runtime.NumGoroutine())
	w.Println()
	debug := 2
	if mode == printer.ModeWeb {
		debug = 1
	}
	return pprof.Lookup("goroutine").WriteTo(w, debug)
}
