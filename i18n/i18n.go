// Package i18n provides resource bundles for printer titles and page text.
//
// Bundles are grouped by provider (the module that registered a printer)
// and language. They are loaded from YAML or TOML files named after their
// language tag:
//
//	bundles/
//	  default/en.yaml       shared bundle, consulted last
//	  runtime/en.yaml
//	  runtime/fr.toml
//
// Nested keys are flattened with dots, so
//
//	configStatus:
//	  pluginTitle: Configuration Status
//
// defines the key "configStatus.pluginTitle".
package i18n

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// SharedProvider names the bundle every lookup falls back to.
const SharedProvider = "default"

// Manager holds every loaded bundle. It is safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	bundles map[string]map[language.Tag]map[string]string
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used while loading bundle files.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager returns an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		bundles: make(map[string]map[language.Tag]map[string]string),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Add merges entries into the provider's bundle for tag.
func (m *Manager) Add(provider string, tag language.Tag, entries map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byTag, ok := m.bundles[provider]
	if !ok {
		byTag = make(map[language.Tag]map[string]string)
		m.bundles[provider] = byTag
	}
	// Bundles keep references to the inner maps; replace, never mutate.
	dst := make(map[string]string, len(byTag[tag])+len(entries))
	for k, v := range byTag[tag] {
		dst[k] = v
	}
	for k, v := range entries {
		dst[k] = v
	}
	byTag[tag] = dst
}

// LoadFS loads every <lang>.yaml, <lang>.yml and <lang>.toml file at the
// root of fsys into the provider's bundles.
func (m *Manager) LoadFS(fsys fs.FS, provider string) error {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("i18n: read bundles of %s: %w", provider, err)
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := path.Ext(f.Name())
		if ext != ".yaml" && ext != ".yml" && ext != ".toml" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(f.Name(), ext))
		if err != nil {
			m.logger.Warn("i18n: skipping bundle with unknown language", "provider", provider, "file", f.Name())
			continue
		}
		data, err := fs.ReadFile(fsys, f.Name())
		if err != nil {
			return fmt.Errorf("i18n: read %s/%s: %w", provider, f.Name(), err)
		}
		entries, err := decode(ext, data)
		if err != nil {
			return fmt.Errorf("i18n: parse %s/%s: %w", provider, f.Name(), err)
		}
		m.Add(provider, tag, entries)
		m.logger.Debug("i18n: bundle loaded", "provider", provider, "lang", tag.String(), "keys", len(entries))
	}
	return nil
}

// LoadDir loads one provider per subdirectory of dir.
func (m *Manager) LoadDir(dir string) error {
	subs, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("i18n: read %s: %w", dir, err)
	}
	for _, s := range subs {
		if !s.IsDir() {
			continue
		}
		if err := m.LoadFS(os.DirFS(filepath.Join(dir, s.Name())), s.Name()); err != nil {
			return err
		}
	}
	return nil
}

// Providers returns the sorted provider names with at least one bundle.
func (m *Manager) Providers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.bundles))
	for p := range m.bundles {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

// Bundle returns the view of provider's strings for tag: the closest
// language of the provider first, then the closest language of the shared
// bundle.
func (m *Manager) Bundle(provider string, tag language.Tag) *Bundle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b := &Bundle{}
	if e := match(m.bundles[provider], tag); e != nil {
		b.chain = append(b.chain, e)
	}
	if provider != SharedProvider {
		if e := match(m.bundles[SharedProvider], tag); e != nil {
			b.chain = append(b.chain, e)
		}
	}
	return b
}

// Localize returns the value of key in provider's bundle for tag, or key
// itself when no bundle defines it.
func (m *Manager) Localize(provider string, tag language.Tag, key string) string {
	return m.Bundle(provider, tag).String(key)
}

func match(byTag map[language.Tag]map[string]string, tag language.Tag) map[string]string {
	if len(byTag) == 0 {
		return nil
	}
	if e, ok := byTag[tag]; ok {
		return e
	}
	tags := make([]language.Tag, 0, len(byTag))
	for t := range byTag {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].String() < tags[j].String() })
	_, idx, conf := language.NewMatcher(tags).Match(tag)
	if conf == language.No {
		return nil
	}
	return byTag[tags[idx]]
}

// Bundle is a read-only view over a chain of string tables.
type Bundle struct {
	chain []map[string]string
}

// String returns the value of key, or key itself when it is missing.
func (b *Bundle) String(key string) string {
	if v, ok := b.Lookup(key); ok {
		return v
	}
	return key
}

// Lookup returns the value of key and whether any table defines it.
func (b *Bundle) Lookup(key string) (string, bool) {
	for _, e := range b.chain {
		if v, ok := e[key]; ok {
			return v, true
		}
	}
	return "", false
}

func decode(ext string, data []byte) (map[string]string, error) {
	raw := make(map[string]any)
	var err error
	if ext == ".toml" {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten("", raw, out)
	return out, nil
}

func flatten(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, child, out)
		}
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprint(t)
	}
}
