// Package registry tracks live printer registrations and turns them into
// ordered, immutable snapshots.
//
// The registry never subscribes to individual add/remove events. It asks
// its Transport for a tracking count, a number that changes whenever a
// registration comes or goes, and rebuilds its snapshot only when that
// number differs from the one the cached snapshot was built at.
package registry

import (
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/language"

	"github.com/hazyhaar/confstatus/printer"
)

// Registration is one printer as seen by a transport.
type Registration struct {
	// Provider names the module that registered the printer. It selects
	// the resource bundle used for '%' titles.
	Provider   string
	Printer    printer.Printer
	Properties map[string]any
}

// Transport is the source of registrations. TrackingCount must change
// every time the result of Registrations would.
//
// A transport may also implement Open() error, called once before the
// first read, and io.Closer, called by Registry.Close.
type Transport interface {
	TrackingCount() int64
	Registrations() []Registration
}

type opener interface {
	Open() error
}

// Bundles resolves resource bundle keys. *i18n.Manager implements it.
type Bundles interface {
	Localize(provider string, tag language.Tag, key string) string
}

// Snapshot is an ordered view of the live printers at one tracking count.
type Snapshot struct {
	Count       int64
	Descriptors []*printer.Descriptor
}

// Registry builds snapshots from a Transport. It is safe for concurrent
// use; concurrent rebuilds are allowed and the last one wins.
type Registry struct {
	transport Transport
	bundles   Bundles
	logger    *slog.Logger

	openOnce sync.Once
	openErr  error

	current  atomic.Pointer[Snapshot]
	rebuilds atomic.Int64

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

// Option configures a Registry.
type Option func(*Registry)

// WithBundles sets the resource bundles used for '%' titles.
func WithBundles(b Bundles) Option {
	return func(r *Registry) { r.bundles = b }
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// New returns a registry over t. Nothing is read from t until the first
// snapshot is requested.
func New(t Transport, opts ...Option) *Registry {
	r := &Registry{transport: t, logger: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Snapshot returns the current snapshot, rebuilding it if the transport's
// tracking count moved since the cached one was built. A closed registry
// returns an empty snapshot.
func (r *Registry) Snapshot() *Snapshot {
	if r.closed.Load() {
		return &Snapshot{Count: -1}
	}
	r.openOnce.Do(func() {
		if o, ok := r.transport.(opener); ok {
			r.openErr = o.Open()
			if r.openErr != nil {
				r.logger.Error("registry: open transport", "error", r.openErr)
			}
		}
	})
	if r.openErr != nil {
		return &Snapshot{Count: -1}
	}

	count := r.transport.TrackingCount()
	if s := r.current.Load(); s != nil && s.Count == count {
		return s
	}
	s := r.build(count)
	r.current.Store(s)
	r.rebuilds.Add(1)
	r.logger.Debug("registry: snapshot rebuilt", "count", count, "printers", len(s.Descriptors))
	return s
}

// Printers returns the descriptors of the current snapshot.
func (r *Registry) Printers() []*printer.Descriptor {
	return r.Snapshot().Descriptors
}

// Lookup returns the first descriptor of the current snapshot with the
// given label.
func (r *Registry) Lookup(label string) (*printer.Descriptor, bool) {
	for _, d := range r.Printers() {
		if d.Label() == label {
			return d, true
		}
	}
	return nil, false
}

// Stats returns how many snapshots have been built so far.
func (r *Registry) Stats() int64 { return r.rebuilds.Load() }

// Close drops the snapshot and closes the transport if it is an
// io.Closer. Only the first call has any effect.
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		r.closed.Store(true)
		r.current.Store(nil)
		if c, ok := r.transport.(io.Closer); ok {
			r.closeErr = c.Close()
		}
	})
	return r.closeErr
}

type entry struct {
	key string
	d   *printer.Descriptor
}

func (r *Registry) build(count int64) *Snapshot {
	regs := r.transport.Registrations()
	seen := make(map[string]struct{}, len(regs))
	entries := make([]entry, 0, len(regs))
	for _, reg := range regs {
		if reg.Printer == nil {
			continue
		}
		title := r.resolveTitle(reg.Provider, reg.Printer.Title())
		key := sortKey(title, seen)
		seen[key] = struct{}{}

		label, _ := reg.Properties[printer.PropLabel].(string)
		if label == "" {
			label = key
		}
		entries = append(entries, entry{
			key: key,
			d:   printer.NewDescriptor(reg.Printer, title, label, reg.Properties[printer.PropModes]),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	s := &Snapshot{Count: count, Descriptors: make([]*printer.Descriptor, len(entries))}
	for i, e := range entries {
		s.Descriptors[i] = e.d
	}
	return s
}

// sortKey is title, or title followed by the first integer from 0 up that
// yields an unused key.
func sortKey(title string, seen map[string]struct{}) string {
	key := title
	for i := 0; ; i++ {
		if _, dup := seen[key]; !dup {
			return key
		}
		key = title + strconv.Itoa(i)
	}
}

func (r *Registry) resolveTitle(provider, raw string) string {
	key, ok := strings.CutPrefix(raw, "%")
	if !ok {
		return raw
	}
	if r.bundles == nil {
		return key
	}
	return r.bundles.Localize(provider, language.English, key)
}
