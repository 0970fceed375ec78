package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// startDiagnosticsServer serves /health and the Prometheus endpoint.
// Port 0 keeps it off.
func (a *App) startDiagnosticsServer() {
	if a.cfg.Health.Port <= 0 {
		a.logger.Debug("Diagnostics server not started: disabled.")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.Handle(a.cfg.Health.MetricsPath, promhttp.HandlerFor(a.prom, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf(":%d", a.cfg.Health.Port)
	a.httpServer = &http.Server{Addr: addr, Handler: mux}

	go func() {
		a.logger.Info("🩺 Diagnostics server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown; only
		// other errors are real failures.
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Diagnostics server failed unexpectedly", "error", err)
		}
	}()

	a.hooks.Register("diagnostics", 10, func(ctx context.Context) error {
		a.logger.Info("🩺 Shutting down diagnostics server...")
		return a.httpServer.Shutdown(ctx)
	})
}
