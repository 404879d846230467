package configrender

import "fmt"

// ErrUnknownPrinter is returned when a single-printer rendering names a
// label that no web-enabled printer carries.
type ErrUnknownPrinter struct {
	Label string
}

func (e *ErrUnknownPrinter) Error() string {
	return fmt.Sprintf("Invalid configuration printer: %s", e.Label)
}

// ErrUnsupportedMode is returned by Render for modes it cannot produce as
// a whole document.
type ErrUnsupportedMode struct {
	Mode string
}

func (e *ErrUnsupportedMode) Error() string {
	return fmt.Sprintf("configrender: mode %q cannot be rendered as a document", e.Mode)
}
