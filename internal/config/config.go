package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the bot process settings.
type Config struct {
	Modules    Modules    `yaml:"modules"`
	Health     Health     `yaml:"health"`
	Logging    Logging    `yaml:"logging"`
	Middleware Middleware `yaml:"middleware"`
	Shutdown   Shutdown   `yaml:"shutdown"`
}

// Modules configures the module loader and its watcher.
type Modules struct {
	// Root is the directory whose subdirectories are the modules.
	Root string `yaml:"root"`
	// Watch enables hot reload on file changes under Root.
	Watch bool `yaml:"watch"`
	// Debounce is how long the watcher coalesces change bursts before
	// reloading a module.
	Debounce time.Duration `yaml:"debounce"`
}

// Health configures the HTTP diagnostics server.
type Health struct {
	// Port serves /health and /metrics. 0 disables the server.
	Port int `yaml:"port"`
	// MetricsPath is where the Prometheus handler mounts.
	MetricsPath string `yaml:"metrics_path"`
}

// Logging configures the process logger.
type Logging struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text" or "json"
}

// Middleware holds process-wide defaults for the stock middleware. The
// per-route knobs (cooldown windows, permission lists, concurrency caps)
// live in the modules' route files; these settings size the shared
// machinery behind them.
type Middleware struct {
	Cooldown CooldownDefaults `yaml:"cooldown"`
	Resource ResourceDefaults `yaml:"resource"`
}

// CooldownDefaults sizes the per-user limiter cache.
type CooldownDefaults struct {
	// Capacity bounds how many (route, user) limiters are kept.
	Capacity int `yaml:"capacity"`
	// IdleTTL evicts limiters untouched for this long. It must exceed
	// the longest route cooldown or an eviction forgets a live cooldown.
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

// ResourceDefaults tunes the named resource mutex.
type ResourceDefaults struct {
	// Wait bounds how long a dispatch queues for a busy resource before
	// it is turned away.
	Wait time.Duration `yaml:"wait"`
}

// Shutdown tunes the stop sequence.
type Shutdown struct {
	// Grace is the shared deadline for the whole shutdown.
	Grace time.Duration `yaml:"grace"`
	// HookTimeout is the per-hook time box inside Grace.
	HookTimeout time.Duration `yaml:"hook_timeout"`
}

// Default returns the settings the bot runs with when no file and no
// environment overrides are present.
func Default() *Config {
	return &Config{
		Modules: Modules{
			Root:     "modules",
			Watch:    true,
			Debounce: 250 * time.Millisecond,
		},
		Health: Health{
			Port:        0,
			MetricsPath: "/metrics",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Middleware: Middleware{
			Cooldown: CooldownDefaults{
				Capacity: 4096,
				IdleTTL:  time.Hour,
			},
			Resource: ResourceDefaults{
				Wait: 3 * time.Second,
			},
		},
		Shutdown: Shutdown{
			Grace:       10 * time.Second,
			HookTimeout: 5 * time.Second,
		},
	}
}

// Load reads settings from a YAML file. Values absent from the file keep
// their defaults; ${VAR} references in the file are expanded and WARDEN_*
// environment variables override the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads the file when it exists and otherwise falls back to
// defaults plus environment overrides. The config file is optional; a
// path that was explicitly given but is unreadable still fails.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	cfg := Default()
	applyEnvOverrides(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies WARDEN_* environment variables. They always
// win over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WARDEN_MODULES_ROOT"); v != "" {
		cfg.Modules.Root = v
	}
	if v := os.Getenv("WARDEN_MODULES_WATCH"); v != "" {
		cfg.Modules.Watch = parseBool(v)
	}
	if v := os.Getenv("WARDEN_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Health.Port = port
		}
	}
	if v := os.Getenv("WARDEN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WARDEN_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func validate(cfg *Config) error {
	if cfg.Modules.Root == "" {
		return fmt.Errorf("modules.root is required")
	}
	if cfg.Modules.Debounce <= 0 {
		return fmt.Errorf("modules.debounce must be positive, got %s", cfg.Modules.Debounce)
	}

	if cfg.Health.Port < 0 || cfg.Health.Port > 65535 {
		return fmt.Errorf("health.port must be within 0-65535, got %d", cfg.Health.Port)
	}
	if !strings.HasPrefix(cfg.Health.MetricsPath, "/") {
		return fmt.Errorf("health.metrics_path must start with '/', got %q", cfg.Health.MetricsPath)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Middleware.Cooldown.Capacity < 0 {
		return fmt.Errorf("middleware.cooldown.capacity cannot be negative, got %d", cfg.Middleware.Cooldown.Capacity)
	}
	if cfg.Middleware.Cooldown.IdleTTL <= 0 {
		return fmt.Errorf("middleware.cooldown.idle_ttl must be positive, got %s", cfg.Middleware.Cooldown.IdleTTL)
	}
	if cfg.Middleware.Resource.Wait <= 0 {
		return fmt.Errorf("middleware.resource.wait must be positive, got %s", cfg.Middleware.Resource.Wait)
	}

	if cfg.Shutdown.Grace <= 0 {
		return fmt.Errorf("shutdown.grace must be positive, got %s", cfg.Shutdown.Grace)
	}
	if cfg.Shutdown.HookTimeout <= 0 {
		return fmt.Errorf("shutdown.hook_timeout must be positive, got %s", cfg.Shutdown.HookTimeout)
	}

	return nil
}
