package printers

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/hazyhaar/confstatus/printer"
)

const masked = "********"

// sensitive lists name fragments whose values are never printed.
var sensitive = []string{"SECRET", "TOKEN", "PASSWORD", "PASSWD", "KEY", "CREDENTIAL", "AUTH", "COOKIE", "DSN"}

// Environment prints the process environment, sorted by name, with the
// values of sensitive-looking variables masked.
type Environment struct {
	environ func() []string
}

// NewEnvironment returns a printer over os.Environ.
func NewEnvironment() *Environment {
	return &Environment{environ: os.Environ}
}

func (e *Environment) Title() string { return "%environment.title" }

func (e *Environment) PrintConfiguration(_ context.Context, w printer.Writer) error {
	vars := e.environ()
	sort.Strings(vars)
	for _, kv := range vars {
		name, value, _ := strings.Cut(kv, "=")
		if name == "" {
			continue
		}
		if isSensitive(name) && value != "" {
			value = masked
		}
		printer.InfoLine(w, "", name, value)
	}
	return nil
}

func isSensitive(name string) bool {
	upper := strings.ToUpper(name)
	for _, s := range sensitive {
		if strings.Contains(upper, s) {
			return true
		}
	}
	return false
}
