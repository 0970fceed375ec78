// Package config loads the bot's process settings: where the modules
// live, whether the watcher runs, the diagnostics port, logging, and the
// sizing knobs for the stock middleware.
//
// Settings come from an optional YAML file with WARDEN_* environment
// variables layered on top. Module route configuration is a separate
// concern: that is HCL, owned by the module loader.
package config
