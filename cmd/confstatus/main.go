// CLAUDE:SUMMARY confstatus binary: cobra root, slog setup, and the wiring shared by serve, dump and printers.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/pkg/dbopen"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/confstatus/configrender"
	"github.com/hazyhaar/confstatus/dbregistry"
	"github.com/hazyhaar/confstatus/i18n"
	"github.com/hazyhaar/confstatus/internal/config"
	"github.com/hazyhaar/confstatus/printer"
	"github.com/hazyhaar/confstatus/printers"
	"github.com/hazyhaar/confstatus/registry"
)

var started = time.Now()

type rootFlags struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("confstatus", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "confstatus",
		Short:         "Configuration status of a running service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/confstatus/config.yaml)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newServeCmd(f))
	root.AddCommand(newDumpCmd(f))
	root.AddCommand(newPrintersCmd(f))
	return root
}

// load reads the configuration and installs the JSON logger on out.
func (f *rootFlags) load(out io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// app is the registry stack over the printers table.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	store    *dbregistry.Store
	registry *registry.Registry
	plugin   *configrender.Plugin
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, *dbregistry.Store, error) {
	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll())
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.DBPath, err)
	}
	store := dbregistry.New(db, dbregistry.WithLogger(logger))
	if err := store.Init(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, store, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	bundles := i18n.NewManager(i18n.WithLogger(logger))
	if err := printers.LoadBundles(bundles); err != nil {
		db.Close()
		return nil, err
	}
	if cfg.BundlesDir != "" {
		if err := bundles.LoadDir(cfg.BundlesDir); err != nil {
			db.Close()
			return nil, err
		}
	}

	reg := registry.New(store, registry.WithBundles(bundles), registry.WithLogger(logger))
	for _, n := range builtinPrinters(cfg, reg, logger) {
		store.Bind(n.Name, printers.Provider, n.Printer, n.Properties)
	}

	plugin, err := configrender.New(configrender.Config{
		Registry: reg,
		Bundles:  bundles,
		Logger:   logger,
		Root:     cfg.MountPath,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, db: db, store: store, registry: reg, plugin: plugin}, nil
}

func (a *app) Close() error {
	if err := a.plugin.Deactivate(); err != nil {
		a.logger.Warn("deactivate", "error", err)
	}
	return a.db.Close()
}

func builtinPrinters(cfg *config.Config, reg *registry.Registry, logger *slog.Logger) []printers.Named {
	props := func(name string, modes any) map[string]any {
		p := map[string]any{printer.PropLabel: name}
		if modes != nil {
			p[printer.PropModes] = modes
		}
		return p
	}
	return []printers.Named{
		{Name: "runtime", Printer: printers.NewRuntime(started), Properties: props("runtime", nil)},
		{Name: "buildinfo", Printer: printers.NewBuildInfo(), Properties: props("buildinfo", nil)},
		{Name: "environment", Printer: printers.NewEnvironment(), Properties: props("environment", cfg.EnvModes)},
		{Name: "goroutines", Printer: printers.Goroutines{}, Properties: props("goroutines", nil)},
		{Name: "files", Printer: printers.NewFiles(cfg.AttachFiles, logger), Properties: props("files", nil)},
		{Name: "registrations", Printer: printers.NewRegistrations(reg), Properties: props("registrations", nil)},
		{Name: "config", Printer: printers.NewYAMLConfig(func() any { return cfg }), Properties: props("config", nil)},
	}
}
