package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vk/wardengo/internal/config"
	"github.com/vk/wardengo/internal/container"
	"github.com/vk/wardengo/internal/dispatch"
	"github.com/vk/wardengo/internal/handler"
	"github.com/vk/wardengo/internal/lifecycle"
	"github.com/vk/wardengo/internal/metrics"
	"github.com/vk/wardengo/internal/middleware"
	"github.com/vk/wardengo/internal/module"
	"github.com/vk/wardengo/internal/pipeline"
	"github.com/vk/wardengo/internal/platform"
	"github.com/vk/wardengo/internal/registry"
	"github.com/vk/wardengo/internal/schedule"
)

// Options carries the command-line choices into the application. Zero
// values defer to the config file; set flags win over file and
// environment.
type Options struct {
	ConfigPath  string
	ModulesRoot string
	// HealthPort overrides the diagnostics port; -1 keeps the config
	// value, 0 disables the server.
	HealthPort int
	LogLevel   string
	LogFormat  string
	NoWatch    bool
}

// App encapsulates the kernel's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	cfg    *config.Config

	services    *container.Container
	handlers    *handler.Registry
	routes      *registry.Registry
	middlewares *middleware.Registry
	prom        *prometheus.Registry
	collector   *metrics.Collector
	loader      *module.Loader
	dispatcher  *dispatch.Dispatcher
	scheduler   *schedule.Runner
	hooks       *lifecycle.Hooks

	session platform.Session
	source  platform.Source

	httpServer *http.Server
}

// New wires a fully initialized App with its own isolated logger,
// container, and metrics registry. The session and source are the
// platform boundary; mods defaults to the compiled-in feature modules.
func New(outW io.Writer, opts Options, session platform.Session, source platform.Source, mods ...handler.Module) (*App, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyOptions(cfg, opts)

	logger := newLogger(cfg.Logging, outW)
	logger.Debug("Logger configured successfully.")

	services := container.New()
	handlers := handler.New()

	if len(mods) == 0 {
		mods = coreModules
	}
	for _, mod := range mods {
		mod.Register(handlers)
		if sp, ok := mod.(handler.ServiceProvider); ok {
			if err := sp.RegisterServices(services); err != nil {
				return nil, fmt.Errorf("module %q services: %w", mod.Name(), err)
			}
		}
	}
	logger.Debug("All feature modules registered.", "modules", len(mods), "handlers", handlers.Count())

	// Resolve every service now: broken wiring surfaces here instead of
	// mid-dispatch, and clean resolutions are warmed for the hot path.
	if issues := services.ValidateAll(); len(issues) > 0 {
		for _, issue := range issues {
			logger.Error("Service failed validation.", "service", issue.Service, "error", issue.Err)
		}
		return nil, fmt.Errorf("container validation failed for %d service(s)", len(issues))
	}
	logger.Debug("Container validation passed.", "services", len(services.Names()))

	middlewares := middleware.NewRegistry()
	middlewares.Register(middleware.NameAudit, middleware.Audit())

	prom := prometheus.NewRegistry()
	collector := metrics.NewWithRegistry(prom)

	routes := registry.New()
	loader := module.New(cfg.Modules.Root, routes, handlers,
		module.WithMiddlewares(middlewares),
		module.WithDebounce(cfg.Modules.Debounce),
	)

	cooldown := middleware.NewCooldown(cfg.Middleware.Cooldown.Capacity, cfg.Middleware.Cooldown.IdleTTL)
	throttle := middleware.NewThrottle()
	resource := middleware.NewResource(cfg.Middleware.Resource.Wait)
	base := pipeline.New(middleware.Stock(cooldown, throttle, resource)...)

	dispatcher := dispatch.New(session, routes, handlers, services,
		dispatch.WithPipeline(base),
		dispatch.WithExtras(middlewares),
		dispatch.WithSettings(loader.Settings),
		dispatch.WithMetrics(collector),
	)

	return &App{
		outW:        outW,
		logger:      logger,
		cfg:         cfg,
		services:    services,
		handlers:    handlers,
		routes:      routes,
		middlewares: middlewares,
		prom:        prom,
		collector:   collector,
		loader:      loader,
		dispatcher:  dispatcher,
		scheduler:   schedule.New(routes, dispatcher),
		hooks:       lifecycle.New(lifecycle.WithHookTimeout(cfg.Shutdown.HookTimeout)),
		session:     session,
		source:      source,
	}, nil
}

// applyOptions layers explicit command-line choices over the loaded
// config.
func applyOptions(cfg *config.Config, opts Options) {
	if opts.ModulesRoot != "" {
		cfg.Modules.Root = opts.ModulesRoot
	}
	if opts.HealthPort >= 0 {
		cfg.Health.Port = opts.HealthPort
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Logging.Format = opts.LogFormat
	}
	if opts.NoWatch {
		cfg.Modules.Watch = false
	}
}

// Routes returns the route registry, primarily for testing.
func (a *App) Routes() *registry.Registry {
	return a.routes
}

// Services returns the service container, primarily for testing.
func (a *App) Services() *container.Container {
	return a.services
}

// Loader returns the module loader, primarily for testing.
func (a *App) Loader() *module.Loader {
	return a.loader
}

// Hooks returns the shutdown hook set so callers can add their own.
func (a *App) Hooks() *lifecycle.Hooks {
	return a.hooks
}

// Gatherer exposes the app's metrics registry for scraping in tests.
func (a *App) Gatherer() prometheus.Gatherer {
	return a.prom
}
