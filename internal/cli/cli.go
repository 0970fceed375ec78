package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/wardengo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns populated Options,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Options, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("warden", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Warden - a community-moderation bot kernel with hot-reloadable modules.

Usage:
  warden [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to the YAML settings file. Optional; defaults apply without one.")
	cFlag := flagSet.String("c", "", "Path to the YAML settings file (shorthand).")
	modulesFlag := flagSet.String("modules-path", "", "Path to the directory containing bot modules. Overrides the config file.")
	healthPortFlag := flagSet.Int("healthcheck-port", -1, "Port for the HTTP diagnostics server. 0 disables it, -1 keeps the config value.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	noWatchFlag := flagSet.Bool("no-watch", false, "Disable hot reload of module route files.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected argument: %s", flagSet.Arg(0))}
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = *cFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "" && logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *healthPortFlag < -1 || *healthPortFlag > 65535 {
		return nil, false, &ExitError{Code: 2, Message: "invalid healthcheck-port: must be within 0-65535"}
	}
	slog.Debug("CLI parameter validation complete.")

	opts := &app.Options{
		ConfigPath:  configPath,
		ModulesRoot: *modulesFlag,
		HealthPort:  *healthPortFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
		NoWatch:     *noWatchFlag,
	}

	slog.Debug("CLI parser finished successfully.")
	return opts, false, nil
}
