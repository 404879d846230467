package printer

import "strings"

// Mode selects one of the three output representations.
type Mode string

const (
	// ModeText is the single flat text document.
	ModeText Mode = "txt"
	// ModeWeb is the single-printer HTML fragment.
	ModeWeb Mode = "web"
	// ModeZip is the archive bundling every section and attachment.
	ModeZip Mode = "zip"
)

// Modes lists the closed universe of modes.
var Modes = []Mode{ModeText, ModeWeb, ModeZip}

// ParseMode converts a mode name, case-insensitively.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeText, ModeWeb, ModeZip:
		return m, true
	}
	return "", false
}

func (m Mode) String() string { return string(m) }

// ParseModes interprets a "modes" registration property. The result is nil,
// meaning every mode is admitted, unless v is a mode name or a non-empty
// list made only of mode names. A declaration that is only partially valid
// collapses to nil.
func ParseModes(v any) []Mode {
	var names []string
	switch t := v.(type) {
	case string:
		names = []string{t}
	case Mode:
		names = []string{string(t)}
	case []string:
		names = t
	case []Mode:
		for _, m := range t {
			names = append(names, string(m))
		}
	case []any:
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil
			}
			names = append(names, s)
		}
	default:
		return nil
	}
	if len(names) == 0 {
		return nil
	}

	modes := make([]Mode, 0, len(names))
	for _, n := range names {
		m, ok := ParseMode(n)
		if !ok {
			return nil
		}
		modes = append(modes, m)
	}
	return modes
}
