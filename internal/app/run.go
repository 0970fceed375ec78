package app

import (
	"context"
	"fmt"

	"github.com/vk/wardengo/internal/ctxlog"
)

// Run brings the kernel up and blocks until ctx is canceled or the event
// source closes, then walks the shutdown sequence.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	// Reload bookkeeping must be wired before the watcher can fire.
	a.loader.OnReload(func(name string) {
		a.collector.ModuleReloads.Inc()
		a.collector.LastReload.SetToCurrentTime()
		a.scheduler.Sync()
		a.refreshGauges()
	})

	loaded, err := a.loader.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading modules: %w", err)
	}
	a.refreshGauges()

	if a.cfg.Modules.Watch {
		if err := a.loader.Watch(ctx); err != nil {
			a.logger.Warn("Module watcher unavailable; hot reload is off.", "error", err)
		}
	}

	a.scheduler.Start(ctx)
	a.startDiagnosticsServer()
	a.hooks.Register("gateway", 20, a.source.Close)

	a.logger.Info("🚀 Warden is up.", "modules", len(loaded), "handlers", a.handlers.Count(), "routes", a.routeTotal())

	a.pump(ctx)

	return a.shutdown()
}

// pump feeds gateway events into the dispatcher. Dispatches run under a
// context that survives the stop signal, so in-flight handlers get the
// grace period instead of an instant cancellation.
func (a *App) pump(ctx context.Context) {
	dispatchCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Stop signal received.")
			return
		case ev, ok := <-a.source.Events():
			if !ok {
				a.logger.Info("Event source closed.")
				return
			}
			a.dispatcher.Submit(dispatchCtx, ev)
		}
	}
}

// shutdown stops intake, drains in-flight work, then runs the hooks, all
// under the configured grace period.
func (a *App) shutdown() error {
	a.logger.Info("Shutting down.", "grace", a.cfg.Shutdown.Grace)

	shCtx, cancel := context.WithTimeout(ctxlog.WithLogger(context.Background(), a.logger), a.cfg.Shutdown.Grace)
	defer cancel()

	a.scheduler.Stop()

	drained := make(chan struct{})
	go func() {
		a.dispatcher.Drain()
		close(drained)
	}()
	select {
	case <-drained:
		a.logger.Debug("In-flight dispatches drained.")
	case <-shCtx.Done():
		a.logger.Warn("Shutdown grace expired with dispatches still in flight.")
	}

	if errs := a.hooks.Shutdown(shCtx); len(errs) > 0 {
		for _, err := range errs {
			a.logger.Warn("Shutdown hook reported an error.", "error", err)
		}
	}

	a.logger.Info("🏁 Warden stopped.")
	return nil
}

// refreshGauges republishes the module and route gauges after any load
// state change.
func (a *App) refreshGauges() {
	loaded := 0
	for _, rec := range a.loader.Records() {
		if rec.Loaded {
			loaded++
		}
	}
	a.collector.ModulesLoaded.Set(float64(loaded))
	for kind, n := range a.routes.Counts() {
		a.collector.RoutesLive.WithLabelValues(string(kind)).Set(float64(n))
	}
}

func (a *App) routeTotal() int {
	total := 0
	for _, n := range a.routes.Counts() {
		total += n
	}
	return total
}
