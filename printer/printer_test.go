package printer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufWriter struct{ strings.Builder }

func (b *bufWriter) Print(a ...any)                 { fmt.Fprint(&b.Builder, a...) }
func (b *bufWriter) Printf(format string, a ...any) { fmt.Fprintf(&b.Builder, format, a...) }
func (b *bufWriter) Println(a ...any)               { fmt.Fprintln(&b.Builder, a...) }

type plain struct{ called *string }

func (p plain) Title() string { return "Plain" }
func (p plain) PrintConfiguration(_ context.Context, w Writer) error {
	*p.called = "default"
	return nil
}

type aware struct{ plain }

func (a aware) PrintConfigurationMode(_ context.Context, w Writer, mode Mode) error {
	*a.called = "mode:" + string(mode)
	return nil
}

func TestParseModes(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []Mode
	}{
		{"nil", nil, nil},
		{"single", "zip", []Mode{ModeZip}},
		{"single upper", "ZIP", []Mode{ModeZip}},
		{"single invalid", "pdf", nil},
		{"list", []string{"TXT", "web"}, []Mode{ModeText, ModeWeb}},
		{"list empty", []string{}, nil},
		{"list partially valid", []string{"txt", "bogus"}, nil},
		{"any list", []any{"txt", "zip"}, []Mode{ModeText, ModeZip}},
		{"any list with non-string", []any{"txt", 3}, nil},
		{"typed", []Mode{ModeWeb}, []Mode{ModeWeb}},
		{"wrong type", 42, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseModes(tt.in))
		})
	}
}

func TestDescriptor_Match(t *testing.T) {
	all := NewDescriptor(nil, "All", "all", nil)
	for _, m := range Modes {
		assert.True(t, all.Match(m), "unconstrained descriptor must admit %s", m)
	}

	txt := NewDescriptor(nil, "Txt", "txt", "TXT")
	assert.True(t, txt.Match(ModeText))
	assert.False(t, txt.Match(ModeZip))
	assert.False(t, txt.Match(ModeWeb))

	broken := NewDescriptor(nil, "Broken", "b", []string{"txt", "nope"})
	assert.Nil(t, broken.Modes())
	assert.True(t, broken.Match(ModeZip))
}

func TestDescriptor_ModesIsCopy(t *testing.T) {
	d := NewDescriptor(nil, "T", "t", []string{"txt"})
	m := d.Modes()
	m[0] = ModeZip
	assert.Equal(t, []Mode{ModeText}, d.Modes())
}

func TestPrint_PrefersModeAware(t *testing.T) {
	var called string
	w := &bufWriter{}

	require.NoError(t, Print(context.Background(), w, plain{&called}, ModeZip))
	assert.Equal(t, "default", called)

	require.NoError(t, Print(context.Background(), w, aware{plain{&called}}, ModeZip))
	assert.Equal(t, "mode:zip", called)
}

func TestInfoLine(t *testing.T) {
	w := &bufWriter{}
	InfoLine(w, "  ", "Name", "value")
	InfoLine(w, "", "List", []string{"a", "b"})
	InfoLine(w, "", "Missing", nil)
	InfoLine(w, "", "", 7)

	assert.Equal(t, "  Name = value\nList = a, b\nMissing = n/a\n7\n", w.String())
}
