package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/hazyhaar/pkg/connectivity"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/confstatus/dbregistry"
	"github.com/hazyhaar/confstatus/internal/config"
)

func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "db_path: " + filepath.Join(dir, "confstatus.db") + "\nlog_level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()))
	return out.String()
}

func TestDump_Text(t *testing.T) {
	cfg := testConfig(t)
	out := run(t, "--config", cfg, "dump")

	assert.Contains(t, out, "*** Go Runtime:")
	assert.Contains(t, out, "*** Environment:")
	assert.Contains(t, out, "*** Goroutines:")
}

func TestDump_RejectsWebMode(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"--config", testConfig(t), "dump", "--mode", "web"})
	assert.ErrorContains(t, root.ExecuteContext(context.Background()), "mode must be txt or zip")
}

func TestDump_ZipFile(t *testing.T) {
	cfg := testConfig(t)
	out := filepath.Join(t.TempDir(), "status.zip")
	run(t, "--config", cfg, "dump", "--mode", "zip", "--out", out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestPrinters_SteerDump(t *testing.T) {
	cfg := testConfig(t)

	run(t, "--config", cfg, "printers", "disable", "environment")
	run(t, "--config", cfg, "printers", "label", "goroutines", "stacks")
	run(t, "--config", cfg, "printers", "modes", "runtime", "zip")

	list := run(t, "--config", cfg, "printers", "list")
	lines := strings.Split(strings.TrimSpace(list), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Regexp(t, `environment\s+true\s+false\s+-\s+all`, list)
	assert.Regexp(t, `goroutines\s+true\s+true\s+stacks\s+all`, list)
	assert.Regexp(t, `runtime\s+true\s+true\s+-\s+zip`, list)

	dump := run(t, "--config", cfg, "dump")
	assert.NotContains(t, dump, "*** Environment:")
	assert.NotContains(t, dump, "*** Go Runtime:")

	run(t, "--config", cfg, "printers", "reset", "environment")
	run(t, "--config", cfg, "printers", "modes", "runtime")
	dump = run(t, "--config", cfg, "dump")
	assert.Contains(t, dump, "*** Environment:")
	assert.Contains(t, dump, "*** Go Runtime:")
}

func TestPrinters_ListYAML(t *testing.T) {
	cfg := testConfig(t)
	run(t, "--config", cfg, "printers", "disable", "orphan")

	out := run(t, "--config", cfg, "printers", "list", "--format", "yaml")
	var got []listing
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 8)
	assert.Contains(t, got, listing{Name: "orphan", Enabled: false, Row: true})
	assert.Contains(t, got, listing{Name: "runtime", Bound: true, Enabled: true})
}

func TestPrinters_BadMode(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"--config", testConfig(t), "printers", "modes", "runtime", "pdf"})
	assert.Error(t, root.ExecuteContext(context.Background()))
}

func TestMergeListing(t *testing.T) {
	got := mergeListing([]string{"b", "a"}, []dbregistry.Row{
		{Name: "c", Label: "C", Enabled: true},
		{Name: "a", Modes: []string{"txt"}},
	})
	require.Len(t, got, 3)
	assert.Equal(t, listing{Name: "a", Bound: true, Modes: []string{"txt"}, Row: true}, got[0])
	assert.Equal(t, listing{Name: "b", Bound: true, Enabled: true}, got[1])
	assert.Equal(t, listing{Name: "c", Label: "C", Enabled: true, Row: true}, got[2])
}

func TestServeRoutes(t *testing.T) {
	cfg, err := config.Load(testConfig(t))
	require.NoError(t, err)
	cfg.MCP = true
	a, err := newApp(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	defer a.Close()

	router := connectivity.New()
	defer router.Close()
	a.plugin.RegisterConnectivity(router)
	srv := httptest.NewServer(a.routes(router))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 7, health["printers"])

	resp, err = http.Get(srv.URL + "/config/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `href="/config/runtime.nfo"`)

	resp, err = http.Post(srv.URL+"/rpc/configstatus_printers", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	var infos []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	resp.Body.Close()
	assert.Len(t, infos, 7)

	resp, err = http.Post(srv.URL+"/rpc/nope", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
