// CLAUDE:SUMMARY SQLite-backed printer transport: config_printers rows decide which bound printers are exposed, with which label and modes, hot-reloaded via PRAGMA data_version.
//
// Package dbregistry is a registry.Transport whose registrations are
// steered by a SQLite table. Printers are bound in code by name; the
// config_printers table can then hide them, relabel them or restrict their
// modes without a restart:
//
//	store := dbregistry.New(db)
//	store.Bind("runtime", "confstatus", printers.NewRuntime(start), nil)
//	go store.Watch(ctx, time.Second)
//	reg := registry.New(store)
//
// A bound printer without a row is exposed with the properties it was bound
// with. A row's label and modes override them. A row without a bound
// printer is kept but ignored.
package dbregistry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hazyhaar/pkg/watch"

	"github.com/hazyhaar/confstatus/printer"
	"github.com/hazyhaar/confstatus/registry"
)

// Schema creates the config_printers table.
const Schema = `
CREATE TABLE IF NOT EXISTS config_printers (
	name       TEXT PRIMARY KEY,
	label      TEXT NOT NULL DEFAULT '',
	modes      TEXT NOT NULL DEFAULT '',
	enabled    INTEGER NOT NULL DEFAULT 1 CHECK(enabled IN (0, 1)),
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
`

// ErrNotFound is returned when no row exists for a printer name.
var ErrNotFound = errors.New("dbregistry: printer not found")

// Row is one config_printers entry. An empty Label keeps the default
// label; empty Modes admits every mode.
type Row struct {
	Name      string    `json:"name" yaml:"name"`
	Label     string    `json:"label,omitempty" yaml:"label,omitempty"`
	Modes     []string  `json:"modes,omitempty" yaml:"modes,omitempty"`
	Enabled   bool      `json:"enabled" yaml:"enabled"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

func (r Row) equal(o Row) bool {
	return r.Name == o.Name && r.Label == o.Label && r.Enabled == o.Enabled &&
		slices.Equal(r.Modes, o.Modes)
}

type binding struct {
	name     string
	provider string
	printer  printer.Printer
	props    map[string]any
}

// Store implements registry.Transport over a *sql.DB.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu       sync.RWMutex
	bindings []binding
	rows     map[string]Row
	count    atomic.Int64

	watcher atomic.Pointer[watch.Watcher]
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns a store over db. Call Init (or let the registry call Open)
// before use.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, logger: slog.Default(), rows: make(map[string]Row)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Init creates the schema.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("dbregistry: init schema: %w", err)
	}
	return nil
}

// Open creates the schema and loads the table. The registry calls it
// before the first snapshot.
func (s *Store) Open() error {
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		return err
	}
	return s.Reload(ctx)
}

// Bind makes p available under name with default registration
// properties. Binding an existing name replaces its printer.
func (s *Store) Bind(name, provider string, p printer.Printer, props map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := binding{name: name, provider: provider, printer: p, props: maps.Clone(props)}
	if i := slices.IndexFunc(s.bindings, func(b binding) bool { return b.name == name }); i >= 0 {
		s.bindings[i] = b
	} else {
		s.bindings = append(s.bindings, b)
	}
	s.count.Add(1)
}

// Unbind removes the printer bound under name.
func (s *Store) Unbind(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.bindings, func(b binding) bool { return b.name == name })
	if i < 0 {
		return
	}
	s.bindings = slices.Delete(s.bindings, i, i+1)
	s.count.Add(1)
}

// Bound returns the bound printer names in binding order.
func (s *Store) Bound() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.bindings))
	for i, b := range s.bindings {
		names[i] = b.name
	}
	return names
}

// TrackingCount advances on every bind, unbind and effective table change.
func (s *Store) TrackingCount() int64 { return s.count.Load() }

// Registrations returns the bound printers that are not disabled by a row,
// in binding order.
func (s *Store) Registrations() []registry.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]registry.Registration, 0, len(s.bindings))
	for _, b := range s.bindings {
		props := maps.Clone(b.props)
		if props == nil {
			props = map[string]any{}
		}
		if row, ok := s.rows[b.name]; ok {
			if !row.Enabled {
				continue
			}
			if row.Label != "" {
				props[printer.PropLabel] = row.Label
			}
			if len(row.Modes) > 0 {
				props[printer.PropModes] = slices.Clone(row.Modes)
			}
		}
		out = append(out, registry.Registration{
			Provider:   b.provider,
			Printer:    b.printer,
			Properties: props,
		})
	}
	return out
}

// Reload reads the table and advances the tracking count if its content
// changed.
func (s *Store) Reload(ctx context.Context) error {
	rows, err := s.List(ctx)
	if err != nil {
		return err
	}
	next := make(map[string]Row, len(rows))
	for _, r := range rows {
		next[r.Name] = r
	}

	s.mu.Lock()
	changed := !maps.EqualFunc(s.rows, next, Row.equal)
	if changed {
		s.rows = next
		s.count.Add(1)
	}
	s.mu.Unlock()

	if changed {
		s.logger.Info("dbregistry: printers reloaded", "rows", len(next))
	}
	return nil
}

// Watch reloads the table whenever another connection writes to the
// database. It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	w := watch.New(s.db, watch.Options{
		Interval: interval,
		Debounce: interval / 2,
		Detector: watch.PragmaDataVersion,
		Logger:   s.logger,
	})
	s.watcher.Store(w)
	w.OnChange(ctx, func() error {
		return s.Reload(ctx)
	})
}

// WatchStats returns the watcher counters, zero before Watch is called.
func (s *Store) WatchStats() watch.Stats {
	if w := s.watcher.Load(); w != nil {
		return w.Stats()
	}
	return watch.Stats{}
}

// List returns every row ordered by name.
func (s *Store) List(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, label, modes, enabled, updated_at
		FROM config_printers
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("dbregistry: list: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns the row for name.
func (s *Store) Get(ctx context.Context, name string) (Row, error) {
	r, err := scanRow(s.db.QueryRowContext(ctx, `
		SELECT name, label, modes, enabled, updated_at
		FROM config_printers WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	return r, err
}

// Upsert inserts or replaces the row for r.Name, then reloads.
func (s *Store) Upsert(ctx context.Context, r Row) error {
	if r.Name == "" {
		return fmt.Errorf("dbregistry: upsert: empty name")
	}
	modes, err := joinModes(r.Modes)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO config_printers (name, label, modes, enabled, updated_at)
		VALUES (?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(name) DO UPDATE SET
			label = excluded.label,
			modes = excluded.modes,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`,
		r.Name, r.Label, modes, boolInt(r.Enabled))
	if err != nil {
		return fmt.Errorf("dbregistry: upsert %s: %w", r.Name, err)
	}
	return s.Reload(ctx)
}

// SetEnabled toggles an existing row, then reloads.
func (s *Store) SetEnabled(ctx context.Context, name string, enabled bool) error {
	return s.update(ctx, name, `UPDATE config_printers SET enabled = ?, updated_at = strftime('%s', 'now') WHERE name = ?`,
		boolInt(enabled), name)
}

// Delete removes the row for name, then reloads.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.update(ctx, name, `DELETE FROM config_printers WHERE name = ?`, name)
}

func (s *Store) update(ctx context.Context, name, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("dbregistry: update %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return s.Reload(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner) (Row, error) {
	var r Row
	var modes string
	var enabled int
	var updated int64
	if err := sc.Scan(&r.Name, &r.Label, &modes, &enabled, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Row{}, err
		}
		return Row{}, fmt.Errorf("dbregistry: scan: %w", err)
	}
	r.Modes = splitModes(modes)
	r.Enabled = enabled != 0
	r.UpdatedAt = time.Unix(updated, 0).UTC()
	return r, nil
}

func joinModes(modes []string) (string, error) {
	out := make([]string, 0, len(modes))
	for _, m := range modes {
		pm, ok := printer.ParseMode(m)
		if !ok {
			return "", fmt.Errorf("dbregistry: invalid mode %q", m)
		}
		out = append(out, pm.String())
	}
	return strings.Join(out, ","), nil
}

func splitModes(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
