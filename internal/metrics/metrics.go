// Package metrics exposes the kernel's Prometheus instrumentation. One
// Collector is built at wiring time and handed to the dispatcher, the
// scheduler and the app's reload plumbing; tests build theirs against a
// private registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "warden"

// Collector holds every metric the kernel emits.
type Collector struct {
	// Dispatch metrics.
	DispatchesTotal    *prometheus.CounterVec
	DispatchDuration   *prometheus.HistogramVec
	DispatchesInFlight prometheus.Gauge
	HandlerPanics      *prometheus.CounterVec
	RouteMisses        *prometheus.CounterVec

	// Module metrics.
	ModuleReloads prometheus.Counter
	LastReload    prometheus.Gauge
	ModulesLoaded prometheus.Gauge
	RoutesLive    *prometheus.GaugeVec

	// Task metrics.
	TaskRuns *prometheus.CounterVec
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered on reg. Tests use this to
// avoid the global registry's duplicate-registration panics.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		DispatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Dispatches processed, by route kind, owning module and outcome",
			},
			[]string{"kind", "module", "outcome"},
		),
		DispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Wall time of one dispatch through pipeline and handler",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind", "module"},
		),
		DispatchesInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dispatches_in_flight",
				Help:      "Dispatches currently executing",
			},
		),
		HandlerPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_panics_total",
				Help:      "Panics recovered at the dispatch boundary",
			},
			[]string{"module"},
		),
		RouteMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "route_misses_total",
				Help:      "Inbound events that matched no registered route",
			},
			[]string{"kind"},
		),
		ModuleReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "module_reloads_total",
				Help:      "Successful module hot reloads",
			},
		),
		LastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "module_last_reload_timestamp",
				Help:      "Unix timestamp of the last successful module reload",
			},
		),
		ModulesLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "modules_loaded",
				Help:      "Modules currently loaded",
			},
		),
		RoutesLive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "routes_live",
				Help:      "Routes currently registered, by kind",
			},
			[]string{"kind"},
		),
		TaskRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "task_runs_total",
				Help:      "Scheduled task ticks submitted, by task and outcome",
			},
			[]string{"task", "outcome"},
		),
	}
}

// Outcome label values for DispatchesTotal and TaskRuns.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
