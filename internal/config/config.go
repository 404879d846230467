// CLAUDE:SUMMARY Confstatus configuration: YAML file, defaults, CONFSTATUS_ env overrides, XDG lookup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONFSTATUS_"

// Config holds the confstatus binary configuration.
type Config struct {
	Listen        string        `yaml:"listen"`
	MountPath     string        `yaml:"mount_path"`
	DBPath        string        `yaml:"db_path"`
	WatchInterval time.Duration `yaml:"watch_interval"`
	BundlesDir    string        `yaml:"bundles_dir"`
	LogLevel      string        `yaml:"log_level"`
	AttachFiles   []string      `yaml:"attach_files"`
	EnvModes      []string      `yaml:"env_modes"`
	MCP           bool          `yaml:"mcp"`
}

func (c *Config) defaults() {
	if c.Listen == "" {
		c.Listen = ":8090"
	}
	if c.MountPath == "" {
		c.MountPath = "/config"
	}
	if !strings.HasPrefix(c.MountPath, "/") {
		c.MountPath = "/" + c.MountPath
	}
	if len(c.MountPath) > 1 {
		c.MountPath = strings.TrimRight(c.MountPath, "/")
	}
	if c.DBPath == "" {
		c.DBPath = "confstatus.db"
	}
	if c.WatchInterval <= 0 {
		c.WatchInterval = 2 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.EnvModes == nil {
		c.EnvModes = []string{"txt", "zip"}
	}
}

// LoadConfigFile reads a YAML config file. Defaults are not applied.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	p, err := xdg.SearchConfigFile("confstatus/config.yaml")
	if err == nil {
		return p
	}
	p, err = xdg.ConfigFile("confstatus/config.yaml")
	if err != nil {
		return "confstatus.yaml"
	}
	return p
}

// Load reads path, applies environment overrides, then defaults. An empty
// path means DefaultPath, which may be missing.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	cfg, err := LoadConfigFile(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = &Config{}
	default:
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.defaults()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = splitList(v)
		}
	}
	str("LISTEN", &c.Listen)
	str("MOUNT_PATH", &c.MountPath)
	str("DB_PATH", &c.DBPath)
	str("BUNDLES_DIR", &c.BundlesDir)
	str("LOG_LEVEL", &c.LogLevel)
	list("ATTACH_FILES", &c.AttachFiles)
	list("ENV_MODES", &c.EnvModes)

	if v, ok := lookup(EnvPrefix + "WATCH_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %sWATCH_INTERVAL: %w", EnvPrefix, err)
		}
		c.WatchInterval = d
	}
	if v, ok := lookup(EnvPrefix + "MCP"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sMCP: %w", EnvPrefix, err)
		}
		c.MCP = b
	}
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
