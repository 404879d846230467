package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/hazyhaar/confstatus/printer"
)

type stubPrinter struct{ title string }

func (s stubPrinter) Title() string { return s.title }

func (s stubPrinter) PrintConfiguration(_ context.Context, w printer.Writer) error {
	_, err := w.WriteString(s.title)
	return err
}

// spy counts how often the registry lists registrations.
type spy struct {
	*Local
	lists  int
	opens  int
	closes int
}

func (s *spy) Registrations() []Registration {
	s.lists++
	return s.Local.Registrations()
}

func (s *spy) Open() error  { s.opens++; return nil }
func (s *spy) Close() error { s.closes++; return nil }

func titles(ds []*printer.Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Title()
	}
	return out
}

func labels(ds []*printer.Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Label()
	}
	return out
}

func TestSnapshot_SortedByTitle(t *testing.T) {
	l := NewLocal()
	l.Register("m", stubPrinter{"Zeta"}, nil)
	l.Register("m", stubPrinter{"Alpha"}, nil)
	l.Register("m", stubPrinter{"Mid"}, nil)

	r := New(l)
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, titles(r.Printers()))
}

func TestSnapshot_TrackingCountHit(t *testing.T) {
	s := &spy{Local: NewLocal()}
	s.Register("m", stubPrinter{"A"}, nil)
	r := New(s)

	first := r.Snapshot()
	second := r.Snapshot()
	assert.Same(t, first, second)
	assert.Equal(t, 1, s.lists)
	assert.Equal(t, int64(1), r.Stats())
	assert.Equal(t, 1, s.opens)

	s.Register("m", stubPrinter{"B"}, nil)
	third := r.Snapshot()
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, s.lists)
	assert.Equal(t, []string{"A", "B"}, titles(third.Descriptors))
}

func TestSnapshot_Unregister(t *testing.T) {
	l := NewLocal()
	l.Register("m", stubPrinter{"A"}, nil)
	unreg := l.Register("m", stubPrinter{"B"}, nil)
	r := New(l)
	require.Len(t, r.Printers(), 2)

	unreg()
	unreg()
	assert.Equal(t, []string{"A"}, titles(r.Printers()))
	assert.Equal(t, int64(3), l.TrackingCount())
}

func TestSnapshot_TieBreak(t *testing.T) {
	l := NewLocal()
	l.Register("m", stubPrinter{"X"}, nil)
	l.Register("m", stubPrinter{"X"}, nil)
	l.Register("m", stubPrinter{"X"}, nil)
	l.Register("m", stubPrinter{"W"}, nil)

	r := New(l)
	ds := r.Printers()
	assert.Equal(t, []string{"W", "X", "X", "X"}, titles(ds))
	assert.Equal(t, []string{"W", "X", "X0", "X1"}, labels(ds))

	again := New(l).Printers()
	for i := range ds {
		assert.Equal(t, ds[i].Label(), again[i].Label())
	}
}

func TestSnapshot_TieBreakSkipsTakenKeys(t *testing.T) {
	l := NewLocal()
	l.Register("m", stubPrinter{"X0"}, nil)
	l.Register("m", stubPrinter{"X"}, nil)
	l.Register("m", stubPrinter{"X"}, nil)

	assert.Equal(t, []string{"X", "X0", "X1"}, labels(New(l).Printers()))
}

func TestSnapshot_LabelAndModes(t *testing.T) {
	l := NewLocal()
	l.Register("m", stubPrinter{"Runtime"}, map[string]any{
		printer.PropLabel: "rt",
		printer.PropModes: []any{"TXT", "zip"},
	})
	l.Register("m", stubPrinter{"Bad"}, map[string]any{
		printer.PropLabel: 42,
		printer.PropModes: []string{"txt", "bogus"},
	})

	ds := New(l).Printers()
	require.Len(t, ds, 2)
	assert.Equal(t, "Bad", ds[0].Label())
	assert.Nil(t, ds[0].Modes())
	assert.Equal(t, "rt", ds[1].Label())
	assert.Equal(t, []printer.Mode{printer.ModeText, printer.ModeZip}, ds[1].Modes())
}

func TestSnapshot_SkipsNilPrinter(t *testing.T) {
	l := NewLocal()
	l.Register("m", nil, nil)
	l.Register("m", stubPrinter{"A"}, nil)
	assert.Len(t, New(l).Printers(), 1)
}

type fakeBundles map[string]string

func (f fakeBundles) Localize(provider string, tag language.Tag, key string) string {
	if tag != language.English {
		return "wrong language"
	}
	if v, ok := f[provider+"/"+key]; ok {
		return v
	}
	return key
}

func TestSnapshot_ResolvesPercentTitles(t *testing.T) {
	l := NewLocal()
	l.Register("rt", stubPrinter{"%runtime.title"}, nil)
	l.Register("rt", stubPrinter{"%missing"}, nil)
	l.Register("rt", stubPrinter{"Plain %"}, nil)

	r := New(l, WithBundles(fakeBundles{"rt/runtime.title": "Go Runtime"}))
	assert.Equal(t, []string{"Go Runtime", "Plain %", "missing"}, titles(r.Printers()))

	assert.Equal(t, []string{"Plain %", "missing", "runtime.title"}, titles(New(l).Printers()))
}

func TestLookup(t *testing.T) {
	l := NewLocal()
	l.Register("m", stubPrinter{"A"}, map[string]any{printer.PropLabel: "a"})
	r := New(l)

	d, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "A", d.Title())

	_, ok = r.Lookup("A")
	assert.False(t, ok)
}

func TestClose_Idempotent(t *testing.T) {
	s := &spy{Local: NewLocal()}
	s.Register("m", stubPrinter{"A"}, nil)
	r := New(s)
	require.Len(t, r.Printers(), 1)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, s.closes)
	assert.Empty(t, r.Printers())
}

type failingOpen struct{ *Local }

func (failingOpen) Open() error { return errors.New("boom") }

func TestSnapshot_OpenFailure(t *testing.T) {
	l := NewLocal()
	l.Register("m", stubPrinter{"A"}, nil)
	r := New(failingOpen{l})
	assert.Empty(t, r.Printers())
	assert.Equal(t, int64(0), r.Stats())
}

func TestCombine(t *testing.T) {
	a, b := NewLocal(), NewLocal()
	a.Register("a", stubPrinter{"B"}, nil)
	b.Register("b", stubPrinter{"A"}, nil)
	b.Register("b", stubPrinter{"C"}, nil)

	c := Combine(a, b)
	assert.Equal(t, int64(3), c.TrackingCount())
	assert.Len(t, c.Registrations(), 3)

	r := New(c)
	assert.Equal(t, []string{"A", "B", "C"}, titles(r.Printers()))

	s := &spy{Local: NewLocal()}
	r2 := New(Combine(a, s))
	r2.Printers()
	require.NoError(t, r2.Close())
	assert.Equal(t, 1, s.opens)
	assert.Equal(t, 1, s.closes)
}
