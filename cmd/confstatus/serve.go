package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hazyhaar/pkg/connectivity"
	"github.com/hazyhaar/pkg/shield"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newServeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the configuration status pages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := f.load(os.Stdout)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			go a.store.Watch(ctx, cfg.WatchInterval)

			router := connectivity.New(connectivity.WithLogger(logger))
			defer router.Close()
			a.plugin.RegisterConnectivity(router)

			srv := &http.Server{
				Addr:              cfg.Listen,
				Handler:           a.routes(router),
				ReadHeaderTimeout: 10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				logger.Info("server starting", "addr", cfg.Listen, "mount", cfg.MountPath, "mcp", cfg.MCP)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}
			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown", "error", err)
			}
			logger.Info("server stopped")
			return nil
		},
	}
}

func (a *app) routes(router *connectivity.Router) http.Handler {
	r := chi.NewRouter()
	for _, mw := range shield.DefaultBOStack() {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		snap := a.registry.Snapshot()
		status := map[string]any{"status": "ok", "printers": len(snap.Descriptors), "tracking_count": snap.Count}
		code := http.StatusOK
		if snap.Count < 0 {
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	})

	// Connectivity services over HTTP: POST /rpc/{service} with a JSON body.
	r.Post("/rpc/{service}", func(w http.ResponseWriter, req *http.Request) {
		var payload json.RawMessage
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		out, err := router.Call(req.Context(), chi.URLParam(req, "service"), payload)
		if err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(out)
	})

	if a.cfg.MCP {
		mcpSrv := mcp.NewServer(&mcp.Implementation{Name: "confstatus", Version: "1.0.0"}, nil)
		a.plugin.RegisterMCP(mcpSrv)
		r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpSrv }, nil))
	}

	r.Mount(a.cfg.MountPath, a.plugin.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
