// Package config provides configuration management for focusforge.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const (
	// DefaultHost is the interface the worker binds to.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the worker's HTTP port.
	DefaultPort = 37790
	// DefaultMaxConns caps open database connections.
	DefaultMaxConns = 4
	// DefaultTopPages is the number of recent pages in a summary.
	DefaultTopPages = 5

	DefaultTailOpenSec = 30
	DefaultTailMinSec  = 10
	DefaultTailMaxSec  = 60

	// DefaultIdleTimeoutMin auto-ends running sessions after this much
	// inactivity. Zero disables auto-ending.
	DefaultIdleTimeoutMin = 30
)

// Setting keys, shared by settings.json and the environment.
const (
	KeyHost            = "FOCUSFORGE_HOST"
	KeyPort            = "FOCUSFORGE_PORT"
	KeyDatabaseDSN     = "FOCUSFORGE_DATABASE_DSN"
	KeyTaxonomyPath    = "FOCUSFORGE_TAXONOMY_PATH"
	KeyInternalDomains = "FOCUSFORGE_INTERNAL_DOMAINS"
	KeyTopPages        = "FOCUSFORGE_TOP_PAGES"
	KeyTailOpenSec     = "FOCUSFORGE_TAIL_OPEN_SEC"
	KeyTailMinSec      = "FOCUSFORGE_TAIL_MIN_SEC"
	KeyTailMaxSec      = "FOCUSFORGE_TAIL_MAX_SEC"
	KeyMaxConns        = "FOCUSFORGE_MAX_CONNS"
	KeyIdleTimeoutMin  = "FOCUSFORGE_IDLE_TIMEOUT_MIN"
)

// Config holds the runtime settings.
type Config struct {
	Host            string
	DatabaseDSN     string // empty selects the SQLite file at DBPath()
	TaxonomyPath    string // empty selects the embedded taxonomy
	InternalDomains []string
	Port            int
	TopPages        int
	TailOpenSec     int
	TailMinSec      int
	TailMaxSec      int
	MaxConns        int
	IdleTimeoutMin  int
}

var (
	globalMu sync.RWMutex
	global   *Config
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		InternalDomains: []string{},
		TopPages:        DefaultTopPages,
		TailOpenSec:     DefaultTailOpenSec,
		TailMinSec:      DefaultTailMinSec,
		TailMaxSec:      DefaultTailMaxSec,
		MaxConns:        DefaultMaxConns,
		IdleTimeoutMin:  DefaultIdleTimeoutMin,
	}
}

// DataDir returns the focusforge data directory.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".focusforge")
}

// DBPath returns the default SQLite database path.
func DBPath() string {
	return filepath.Join(DataDir(), "focusforge.db")
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.json")
}

// EnsureDataDir creates the data directory if needed.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0750)
}

// EnsureSettings writes a settings file with default values if none exists.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	d := Default()
	data, err := json.MarshalIndent(map[string]any{
		KeyHost:            d.Host,
		KeyPort:            d.Port,
		KeyDatabaseDSN:     d.DatabaseDSN,
		KeyTaxonomyPath:    d.TaxonomyPath,
		KeyInternalDomains: "",
		KeyTopPages:        d.TopPages,
		KeyTailOpenSec:     d.TailOpenSec,
		KeyTailMinSec:      d.TailMinSec,
		KeyTailMaxSec:      d.TailMaxSec,
		KeyMaxConns:        d.MaxConns,
		KeyIdleTimeoutMin:  d.IdleTimeoutMin,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default settings: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureAll creates the data directory and the default settings file.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

// Load reads settings.json and applies environment overrides.
// A missing or unparseable settings file leaves the defaults in place.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err == nil {
		var settings map[string]any
		if json.Unmarshal(data, &settings) == nil {
			cfg.apply(func(key string) (string, bool) {
				v, ok := settings[key]
				if !ok || v == nil {
					return "", false
				}
				return settingString(v), true
			})
		}
	}

	cfg.apply(os.LookupEnv)
	cfg.normalize()
	return cfg, nil
}

// Get returns the process-wide configuration, loading it on first use.
func Get() *Config {
	globalMu.RLock()
	cfg := global
	globalMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		loaded, err := Load()
		if err != nil {
			loaded = Default()
		}
		global = loaded
	}
	return global
}

// GetPort returns the worker port, preferring a valid FOCUSFORGE_PORT.
func GetPort() int {
	if v := os.Getenv(KeyPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			return port
		}
	}
	return Get().Port
}

// Addr returns the host:port the worker listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IdleTimeout returns the auto-end threshold, or 0 when disabled.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMin) * time.Minute
}

// DSN returns the configured database DSN or the default SQLite path.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	return DBPath()
}

func (c *Config) apply(lookup func(string) (string, bool)) {
	if v, ok := lookup(KeyHost); ok && v != "" {
		c.Host = v
	}
	if v, ok := lookup(KeyDatabaseDSN); ok {
		c.DatabaseDSN = v
	}
	if v, ok := lookup(KeyTaxonomyPath); ok {
		c.TaxonomyPath = v
	}
	if v, ok := lookup(KeyInternalDomains); ok {
		c.InternalDomains = splitTrim(v)
	}
	for key, dst := range map[string]*int{
		KeyPort:           &c.Port,
		KeyTopPages:       &c.TopPages,
		KeyTailOpenSec:    &c.TailOpenSec,
		KeyTailMinSec:     &c.TailMinSec,
		KeyTailMaxSec:     &c.TailMaxSec,
		KeyMaxConns:       &c.MaxConns,
		KeyIdleTimeoutMin: &c.IdleTimeoutMin,
	} {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	d := Default()
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = d.Port
	}
	if c.TopPages <= 0 {
		c.TopPages = d.TopPages
	}
	if c.TailOpenSec < 0 {
		c.TailOpenSec = d.TailOpenSec
	}
	if c.TailMinSec < 0 || c.TailMaxSec <= 0 || c.TailMinSec > c.TailMaxSec {
		c.TailMinSec, c.TailMaxSec = d.TailMinSec, d.TailMaxSec
	}
	if c.MaxConns <= 0 {
		c.MaxConns = d.MaxConns
	}
	if c.IdleTimeoutMin < 0 {
		c.IdleTimeoutMin = 0
	}
}

// settingString renders a decoded JSON value the way it would appear in
// the environment.
func settingString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, settingString(p))
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

// splitTrim splits a comma-separated list and drops blank entries.
func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
