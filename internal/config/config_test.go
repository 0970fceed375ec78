package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warden.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "modules", cfg.Modules.Root)
	assert.True(t, cfg.Modules.Watch)
	assert.Equal(t, 250*time.Millisecond, cfg.Modules.Debounce)
	assert.Equal(t, 0, cfg.Health.Port, "health server is off unless asked for")
	assert.Equal(t, "/metrics", cfg.Health.MetricsPath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 4096, cfg.Middleware.Cooldown.Capacity)
	assert.Equal(t, time.Hour, cfg.Middleware.Cooldown.IdleTTL)
	assert.Equal(t, 3*time.Second, cfg.Middleware.Resource.Wait)
	assert.Equal(t, 10*time.Second, cfg.Shutdown.Grace)
	assert.Equal(t, 5*time.Second, cfg.Shutdown.HookTimeout)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
modules:
  root: /srv/warden/modules
  debounce: 500ms
health:
  port: 8090
logging:
  level: debug
middleware:
  cooldown:
    idle_ttl: 2h
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/warden/modules", cfg.Modules.Root)
	assert.Equal(t, 500*time.Millisecond, cfg.Modules.Debounce)
	assert.Equal(t, 8090, cfg.Health.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2*time.Hour, cfg.Middleware.Cooldown.IdleTTL)

	// Untouched sections keep their defaults.
	assert.True(t, cfg.Modules.Watch)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 3*time.Second, cfg.Middleware.Resource.Wait)
}

func TestLoad_WatchCanBeTurnedOff(t *testing.T) {
	path := writeConfig(t, `
modules:
  watch: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Modules.Watch)
}

func TestLoad_ExpandsEnvReferences(t *testing.T) {
	t.Setenv("WARDEN_TEST_MODULE_DIR", "/opt/bot/modules")
	path := writeConfig(t, `
modules:
  root: ${WARDEN_TEST_MODULE_DIR}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/bot/modules", cfg.Modules.Root)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("WARDEN_MODULES_ROOT", "/env/modules")
	t.Setenv("WARDEN_HEALTH_PORT", "9100")
	t.Setenv("WARDEN_LOG_FORMAT", "json")
	path := writeConfig(t, `
modules:
  root: /file/modules
health:
  port: 8090
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/modules", cfg.Modules.Root)
	assert.Equal(t, 9100, cfg.Health.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "modules: [broken")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "parse config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "read config")
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("existing file is loaded", func(t *testing.T) {
		path := writeConfig(t, "logging:\n  level: warn\n")
		cfg, err := LoadOrDefault(path)
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty modules root",
			mutate:  func(c *Config) { c.Modules.Root = "" },
			wantErr: "modules.root",
		},
		{
			name:    "zero debounce",
			mutate:  func(c *Config) { c.Modules.Debounce = 0 },
			wantErr: "modules.debounce",
		},
		{
			name:    "negative health port",
			mutate:  func(c *Config) { c.Health.Port = -1 },
			wantErr: "health.port",
		},
		{
			name:    "health port too large",
			mutate:  func(c *Config) { c.Health.Port = 70000 },
			wantErr: "health.port",
		},
		{
			name:    "metrics path without slash",
			mutate:  func(c *Config) { c.Health.MetricsPath = "metrics" },
			wantErr: "health.metrics_path",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "console" },
			wantErr: "logging.format",
		},
		{
			name:    "negative cooldown capacity",
			mutate:  func(c *Config) { c.Middleware.Cooldown.Capacity = -1 },
			wantErr: "middleware.cooldown.capacity",
		},
		{
			name:    "zero cooldown ttl",
			mutate:  func(c *Config) { c.Middleware.Cooldown.IdleTTL = 0 },
			wantErr: "middleware.cooldown.idle_ttl",
		},
		{
			name:    "zero resource wait",
			mutate:  func(c *Config) { c.Middleware.Resource.Wait = 0 },
			wantErr: "middleware.resource.wait",
		},
		{
			name:    "zero shutdown grace",
			mutate:  func(c *Config) { c.Shutdown.Grace = 0 },
			wantErr: "shutdown.grace",
		},
		{
			name:    "zero hook timeout",
			mutate:  func(c *Config) { c.Shutdown.HookTimeout = 0 },
			wantErr: "shutdown.hook_timeout",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := validate(cfg)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
