package printers

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/hazyhaar/confstatus/i18n"
	"github.com/hazyhaar/confstatus/printer"
	"github.com/hazyhaar/confstatus/registry"
)

type bufWriter struct{ bytes.Buffer }

func (b *bufWriter) Print(a ...any)                 { fmt.Fprint(&b.Buffer, a...) }
func (b *bufWriter) Printf(format string, a ...any) { fmt.Fprintf(&b.Buffer, format, a...) }
func (b *bufWriter) Println(a ...any)               { fmt.Fprintln(&b.Buffer, a...) }

func render(t *testing.T, p printer.Printer, mode printer.Mode) string {
	t.Helper()
	var w bufWriter
	require.NoError(t, printer.Print(context.Background(), &w, p, mode))
	return w.String()
}

func TestLoadBundles_ResolvesTitles(t *testing.T) {
	m := i18n.NewManager()
	require.NoError(t, LoadBundles(m))

	l := registry.NewLocal()
	l.Register(Provider, NewRuntime(time.Now()), nil)
	l.Register(Provider, Goroutines{}, nil)
	r := registry.New(l, registry.WithBundles(m))

	var titles []string
	for _, d := range r.Printers() {
		titles = append(titles, d.Title())
	}
	assert.Equal(t, []string{"Go Runtime", "Goroutines"}, titles)
	assert.Equal(t, "Variables d'environnement", m.Localize(Provider, language.French, "environment.title"))
}

func TestRuntime(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rt := NewRuntime(start)
	rt.now = func() time.Time { return start.Add(2 * time.Hour) }

	out := render(t, rt, printer.ModeText)
	assert.Contains(t, out, "Go version = go")
	assert.Contains(t, out, "Started = 2024-01-01T00:00:00Z (2 hours ago)")
	assert.Contains(t, out, "  Heap in use = ")
}

func TestBuildInfo(t *testing.T) {
	b := &BuildInfo{read: func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			GoVersion: "go1.25.0",
			Path:      "github.com/hazyhaar/confstatus/cmd/confstatus",
			Main:      debug.Module{Path: "github.com/hazyhaar/confstatus", Version: "v1.2.3"},
			Deps: []*debug.Module{
				{Path: "github.com/go-chi/chi/v5", Version: "v5.2.5"},
				{Path: "example.com/old", Version: "v1.0.0", Replace: &debug.Module{Path: "../old", Version: ""}},
			},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
		}, true
	}}

	out := render(t, b, printer.ModeText)
	assert.Contains(t, out, "Main module = github.com/hazyhaar/confstatus v1.2.3\n")
	assert.Contains(t, out, "vcs.revision = abc123\n")
	assert.Contains(t, out, "  github.com/go-chi/chi/v5 = v5.2.5\n")
	assert.Contains(t, out, "  example.com/old = v1.0.0 => ../old \n")

	none := &BuildInfo{read: func() (*debug.BuildInfo, bool) { return nil, false }}
	assert.Equal(t, "Build information is not available.\n", render(t, none, printer.ModeText))
}

func TestEnvironment_MasksSecrets(t *testing.T) {
	e := &Environment{environ: func() []string {
		return []string{"PATH=/bin", "API_TOKEN=abc", "db_password=hunter2", "EMPTY_SECRET=", "=weird", "HOME=/root"}
	}}

	out := render(t, e, printer.ModeText)
	assert.Equal(t, "API_TOKEN = ********\nEMPTY_SECRET = \nHOME = /root\nPATH = /bin\ndb_password = ********\n", out)
	assert.NotContains(t, out, "hunter2")
}

func TestGoroutines_ModeAware(t *testing.T) {
	text := render(t, Goroutines{}, printer.ModeText)
	assert.Contains(t, text, "Count = ")
	assert.Contains(t, text, "goroutine ")

	web := render(t, Goroutines{}, printer.ModeWeb)
	assert.Contains(t, web, "goroutine profile: total")
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.log"), []byte("bbbb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.log"), []byte("aa"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.log"), 0o755))

	f := NewFiles([]string{filepath.Join(dir, "*.log"), filepath.Join(dir, "a.*"), "[bad"}, nil)

	out := render(t, f, printer.ModeText)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], filepath.Join(dir, "a.log")+" = 2 B, modified "))
	assert.True(t, strings.HasPrefix(lines[1], filepath.Join(dir, "b.log")+" = 4 B, modified "))

	urls := f.Attachments(printer.ModeZip)
	require.Len(t, urls, 2)
	assert.Equal(t, "file", urls[0].Scheme)
	assert.True(t, strings.HasSuffix(urls[0].Path, "/a.log"))
	assert.Nil(t, f.Attachments(printer.ModeText))
}

func TestFiles_NoMatch(t *testing.T) {
	f := NewFiles([]string{filepath.Join(t.TempDir(), "*.none")}, nil)
	out := render(t, f, printer.ModeText)
	assert.Contains(t, out, "No matching files.")
	assert.Empty(t, f.Attachments(printer.ModeZip))
}

func TestRegistrations(t *testing.T) {
	l := registry.NewLocal()
	r := registry.New(l)
	l.Register(Provider, NewRegistrations(r), map[string]any{printer.PropLabel: "registrations"})
	l.Register(Provider, Goroutines{}, map[string]any{printer.PropModes: "txt"})

	out := render(t, NewRegistrations(r), printer.ModeText)
	assert.Contains(t, out, "Printers = 2\n")
	assert.Contains(t, out, "  Label = registrations\n")
	assert.Contains(t, out, "  Modes = all\n")
	assert.Contains(t, out, "  Modes = txt\n")
	assert.Contains(t, out, "  Mode aware = true\n")
}

func TestYAMLConfig(t *testing.T) {
	cfg := struct {
		Listen string   `yaml:"listen"`
		Globs  []string `yaml:"globs"`
	}{Listen: "localhost:8080", Globs: []string{"/var/log/*.log"}}

	out := render(t, NewYAMLConfig(func() any { return cfg }), printer.ModeText)
	assert.Equal(t, "listen: localhost:8080\nglobs:\n    - /var/log/*.log\n", out)
}
