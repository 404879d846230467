// CLAUDE:SUMMARY Configuration status plugin: chi handler dispatching .txt/.zip/.nfo/index, Render for programmatic dumps, once-only deactivation.
//
// Package configrender serves the combined output of every registered
// configuration printer. Mounted under a root such as /config it answers:
//
//	/config                                   index page with one tab per printer
//	/config/configuration-status-<ts>.txt     every printer as plain text
//	/config/configuration-status-<ts>.zip     one archive entry per printer, plus attachments
//	/config/<label>.nfo                       one printer as an HTML fragment
//	/config/res/*                             page assets
//
// Only the suffix matters for the .txt and .zip documents; the time stamp in
// the file name is informative.
package configrender

import (
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/confstatus/confwriter"
	"github.com/hazyhaar/confstatus/i18n"
	"github.com/hazyhaar/confstatus/printer"
	"github.com/hazyhaar/confstatus/registry"
)

// DefaultRoot is the mount path used when Config.Root is empty.
const DefaultRoot = "/config"

// Config holds the settings needed to create a Plugin.
type Config struct {
	Registry *registry.Registry
	// Bundles receives the page strings; nil creates a private manager.
	Bundles *i18n.Manager
	Logger  *slog.Logger
	// Opener opens attachment locators. Default: confwriter.DefaultOpener(nil).
	Opener confwriter.Opener
	Now    func() time.Time
	// Root is the path the handler is mounted at, used to build links.
	Root string
	// Title overrides the localized page title.
	Title string
}

// Plugin renders the configuration status of a registry.
type Plugin struct {
	registry *registry.Registry
	bundles  *i18n.Manager
	logger   *slog.Logger
	opener   confwriter.Opener
	now      func() time.Time
	root     string
	title    string

	deactivate sync.Once
	closeErr   error
}

// New creates a Plugin and loads its page bundles into cfg.Bundles.
func New(cfg Config) (*Plugin, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("configrender: Registry is required")
	}
	p := &Plugin{
		registry: cfg.Registry,
		bundles:  cfg.Bundles,
		logger:   cfg.Logger,
		opener:   cfg.Opener,
		now:      cfg.Now,
		root:     strings.TrimRight(cfg.Root, "/"),
		title:    cfg.Title,
	}
	if p.bundles == nil {
		p.bundles = i18n.NewManager()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.opener == nil {
		p.opener = confwriter.DefaultOpener(nil)
	}
	if p.now == nil {
		p.now = time.Now
	}
	if cfg.Root == "" {
		p.root = DefaultRoot
	}

	sub, err := fs.Sub(bundleFS, "bundles")
	if err != nil {
		return nil, fmt.Errorf("configrender: bundles: %w", err)
	}
	if err := p.bundles.LoadFS(sub, BundleProvider); err != nil {
		return nil, fmt.Errorf("configrender: %w", err)
	}
	return p, nil
}

// Registry returns the registry the plugin renders.
func (p *Plugin) Registry() *registry.Registry { return p.registry }

// Handler returns the chi router serving the plugin. Mount it at the
// configured root:
//
//	r.Mount("/config", plugin.Handler())
func (p *Plugin) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/res/*", p.handleResource)
	r.Get("/*", p.handleDispatch)
	return r
}

// Deactivate releases the registry. Later calls are no-ops.
func (p *Plugin) Deactivate() error {
	p.deactivate.Do(func() {
		p.closeErr = p.registry.Close()
		p.logger.Info("configrender: deactivated")
	})
	return p.closeErr
}

func (p *Plugin) handleDispatch(w http.ResponseWriter, r *http.Request) {
	rest := chi.URLParam(r, "*")
	switch {
	case strings.HasSuffix(rest, ".txt"):
		p.handleText(w, r)
	case strings.HasSuffix(rest, ".zip"):
		p.handleZip(w, r)
	case strings.HasSuffix(rest, ".nfo"):
		p.handleNfo(w, r, rest)
	default:
		p.handleIndex(w, r)
	}
}

func (p *Plugin) handleText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := p.Render(r.Context(), w, printer.ModeText); err != nil {
		p.logger.Warn("configrender: text dump", "error", err)
	}
}

func (p *Plugin) handleZip(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", zipContentType())
	if err := p.Render(r.Context(), w, printer.ModeZip); err != nil {
		p.logger.Warn("configrender: archive dump", "error", err)
	}
}

func (p *Plugin) handleNfo(w http.ResponseWriter, r *http.Request, rest string) {
	label := strings.TrimSuffix(path.Base(rest), ".nfo")
	// chi routes on RawPath when set; Path is already decoded.
	if r.URL.RawPath != "" {
		if u, err := url.PathUnescape(label); err == nil {
			label = u
		}
	}
	setNoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := p.RenderPrinter(r.Context(), w, label)
	if _, unknown := err.(*ErrUnknownPrinter); unknown {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err != nil {
		p.logger.Warn("configrender: printer page", "label", label, "error", err)
	}
}

func (p *Plugin) handleResource(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	data, err := fs.ReadFile(resFS, "res/"+name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

func zipContentType() string {
	if ct := mime.TypeByExtension(".zip"); ct != "" {
		return ct
	}
	return "application/x-zip"
}

func setNoCache(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
