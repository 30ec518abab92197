// Package config provides configuration management for focusforge.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigSuite is a test suite for config operations.
type ConfigSuite struct {
	suite.Suite
	tempDir string
}

func (s *ConfigSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
	s.T().Setenv("HOME", s.tempDir)
	for _, key := range []string{
		KeyHost, KeyPort, KeyDatabaseDSN, KeyTaxonomyPath, KeyInternalDomains,
		KeyTopPages, KeyTailOpenSec, KeyTailMinSec, KeyTailMaxSec, KeyMaxConns,
		KeyIdleTimeoutMin,
	} {
		s.T().Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) writeSettings(content string) {
	s.Require().NoError(os.MkdirAll(filepath.Join(s.tempDir, ".focusforge"), 0750))
	s.Require().NoError(os.WriteFile(filepath.Join(s.tempDir, ".focusforge", "settings.json"), []byte(content), 0600))
}

// TestDefault tests default configuration values.
func (s *ConfigSuite) TestDefault() {
	cfg := Default()

	s.Equal(DefaultHost, cfg.Host)
	s.Equal(DefaultPort, cfg.Port)
	s.Equal(4, cfg.MaxConns)
	s.Equal(5, cfg.TopPages)
	s.Equal(30, cfg.TailOpenSec)
	s.Equal(10, cfg.TailMinSec)
	s.Equal(60, cfg.TailMaxSec)
	s.Equal(30*time.Minute, cfg.IdleTimeout())
	s.Empty(cfg.DatabaseDSN)
	s.Empty(cfg.TaxonomyPath)
	s.Empty(cfg.InternalDomains)
}

// TestPaths tests the data directory layout.
func (s *ConfigSuite) TestPaths() {
	s.Equal(filepath.Join(s.tempDir, ".focusforge"), DataDir())
	s.Equal(filepath.Join(s.tempDir, ".focusforge", "focusforge.db"), DBPath())
	s.Equal(filepath.Join(s.tempDir, ".focusforge", "settings.json"), SettingsPath())
}

// TestEnsureAll tests full initialization.
func (s *ConfigSuite) TestEnsureAll() {
	s.NoError(EnsureAll())

	info, err := os.Stat(DataDir())
	s.Require().NoError(err)
	s.True(info.IsDir())
	_, err = os.Stat(SettingsPath())
	s.NoError(err)

	// Second call keeps the existing file.
	s.writeSettings(`{"FOCUSFORGE_PORT": 41000}`)
	s.NoError(EnsureSettings())
	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(41000, cfg.Port)
}

// TestEnsureSettingsRoundTrip tests that the generated file loads as defaults.
func (s *ConfigSuite) TestEnsureSettingsRoundTrip() {
	s.Require().NoError(EnsureAll())

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(Default(), cfg)
}

// TestLoad_TableDriven tests configuration loading with various scenarios.
func (s *ConfigSuite) TestLoad_TableDriven() {
	tests := []struct {
		name         string
		settingsJSON string
		expectedHost string
		expectedPort int
		expectedTop  int
	}{
		{
			name:         "no settings file",
			expectedHost: DefaultHost,
			expectedPort: DefaultPort,
			expectedTop:  DefaultTopPages,
		},
		{
			name:         "custom port",
			settingsJSON: `{"FOCUSFORGE_PORT": 38888}`,
			expectedHost: DefaultHost,
			expectedPort: 38888,
			expectedTop:  DefaultTopPages,
		},
		{
			name:         "port as string",
			settingsJSON: `{"FOCUSFORGE_PORT": "38889"}`,
			expectedHost: DefaultHost,
			expectedPort: 38889,
			expectedTop:  DefaultTopPages,
		},
		{
			name:         "multiple settings",
			settingsJSON: `{"FOCUSFORGE_HOST": "0.0.0.0", "FOCUSFORGE_PORT": 39999, "FOCUSFORGE_TOP_PAGES": 8}`,
			expectedHost: "0.0.0.0",
			expectedPort: 39999,
			expectedTop:  8,
		},
		{
			name:         "out of range values fall back",
			settingsJSON: `{"FOCUSFORGE_PORT": 70000, "FOCUSFORGE_TOP_PAGES": 0}`,
			expectedHost: DefaultHost,
			expectedPort: DefaultPort,
			expectedTop:  DefaultTopPages,
		},
		{
			name:         "invalid JSON returns defaults",
			settingsJSON: `{invalid}`,
			expectedHost: DefaultHost,
			expectedPort: DefaultPort,
			expectedTop:  DefaultTopPages,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			os.Remove(SettingsPath())
			if tt.settingsJSON != "" {
				s.writeSettings(tt.settingsJSON)
			}

			cfg, err := Load()
			s.NoError(err)
			s.Require().NotNil(cfg)
			s.Equal(tt.expectedHost, cfg.Host)
			s.Equal(tt.expectedPort, cfg.Port)
			s.Equal(tt.expectedTop, cfg.TopPages)
		})
	}
}

// TestLoad_Lists tests list settings given as strings or arrays.
func (s *ConfigSuite) TestLoad_Lists() {
	s.writeSettings(`{"FOCUSFORGE_INTERNAL_DOMAINS": "staging.example, ,preview.example"}`)
	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal([]string{"staging.example", "preview.example"}, cfg.InternalDomains)

	s.writeSettings(`{"FOCUSFORGE_INTERNAL_DOMAINS": ["a.example", "b.example"]}`)
	cfg, err = Load()
	s.Require().NoError(err)
	s.Equal([]string{"a.example", "b.example"}, cfg.InternalDomains)
}

// TestLoad_EnvOverridesFile tests that the environment beats settings.json.
func (s *ConfigSuite) TestLoad_EnvOverridesFile() {
	s.writeSettings(`{
		"FOCUSFORGE_PORT": 38000,
		"FOCUSFORGE_DATABASE_DSN": "/tmp/from-file.db",
		"FOCUSFORGE_TAIL_MIN_SEC": 5,
		"FOCUSFORGE_TAIL_MAX_SEC": 90
	}`)
	s.T().Setenv(KeyPort, "38001")
	s.T().Setenv(KeyDatabaseDSN, "postgres://u:p@localhost/focus")
	s.T().Setenv(KeyTaxonomyPath, "/etc/focusforge/taxonomy.yaml")
	s.T().Setenv(KeyMaxConns, "not-a-number")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(38001, cfg.Port)
	s.Equal("postgres://u:p@localhost/focus", cfg.DatabaseDSN)
	s.Equal("postgres://u:p@localhost/focus", cfg.DSN())
	s.Equal("/etc/focusforge/taxonomy.yaml", cfg.TaxonomyPath)
	s.Equal(5, cfg.TailMinSec)
	s.Equal(90, cfg.TailMaxSec)
	s.Equal(DefaultMaxConns, cfg.MaxConns)
}

// TestLoad_InvertedTailClamp tests that an inverted clamp reverts to defaults.
func (s *ConfigSuite) TestLoad_InvertedTailClamp() {
	s.writeSettings(`{"FOCUSFORGE_TAIL_MIN_SEC": 90, "FOCUSFORGE_TAIL_MAX_SEC": 30}`)

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(DefaultTailMinSec, cfg.TailMinSec)
	s.Equal(DefaultTailMaxSec, cfg.TailMaxSec)
}

// TestLoad_IdleTimeout tests that auto-ending can be disabled but not inverted.
func (s *ConfigSuite) TestLoad_IdleTimeout() {
	s.T().Setenv(KeyIdleTimeoutMin, "0")
	cfg, err := Load()
	s.Require().NoError(err)
	s.Zero(cfg.IdleTimeout())

	s.T().Setenv(KeyIdleTimeoutMin, "-5")
	cfg, err = Load()
	s.Require().NoError(err)
	s.Zero(cfg.IdleTimeoutMin)

	s.T().Setenv(KeyIdleTimeoutMin, "45")
	cfg, err = Load()
	s.Require().NoError(err)
	s.Equal(45*time.Minute, cfg.IdleTimeout())
}

// TestDSNDefault tests the SQLite fallback DSN.
func (s *ConfigSuite) TestDSNDefault() {
	s.Equal(DBPath(), Default().DSN())
}

// TestAddr tests host:port formatting.
func (s *ConfigSuite) TestAddr() {
	cfg := Default()
	cfg.Host = "::1"
	cfg.Port = 9000
	s.Equal("[::1]:9000", cfg.Addr())
}

// TestSplitTrim tests the splitTrim helper function.
func TestSplitTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: []string{},
		},
		{
			name:     "single value",
			input:    "localhost",
			expected: []string{"localhost"},
		},
		{
			name:     "values with spaces",
			input:    " a.example , b.example ",
			expected: []string{"a.example", "b.example"},
		},
		{
			name:     "empty values filtered",
			input:    "a.example,,b.example,,",
			expected: []string{"a.example", "b.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitTrim(tt.input))
		})
	}
}

// TestGetPort_WithEnv tests GetPort with environment variable.
func TestGetPort_WithEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Setenv(KeyPort, "45678")
	assert.Equal(t, 45678, GetPort())

	t.Setenv(KeyPort, "not-a-number")
	assert.Greater(t, GetPort(), 0)

	t.Setenv(KeyPort, "0")
	assert.Greater(t, GetPort(), 0)
}

// TestGet tests the global config getter.
func TestGet(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Get()
	require.NotNil(t, cfg)
	assert.Greater(t, cfg.Port, 0)
	assert.Same(t, cfg, Get())
}
