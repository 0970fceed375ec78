package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherNames(t *testing.T, reg *prometheus.Registry) map[string]int {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]int, len(families))
	for _, f := range families {
		out[f.GetName()] = len(f.GetMetric())
	}
	return out
}

func TestCollector_RegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.DispatchesTotal.WithLabelValues("command", "moderation", OutcomeOK).Inc()
	m.DispatchDuration.WithLabelValues("command", "moderation").Observe(0.02)
	m.DispatchesInFlight.Inc()
	m.HandlerPanics.WithLabelValues("moderation").Inc()
	m.RouteMisses.WithLabelValues("component").Inc()
	m.ModuleReloads.Inc()
	m.LastReload.SetToCurrentTime()
	m.ModulesLoaded.Set(3)
	m.RoutesLive.WithLabelValues("command").Set(7)
	m.TaskRuns.WithLabelValues("sweep_expired", OutcomeError).Inc()

	names := gatherNames(t, reg)
	for _, want := range []string{
		"warden_dispatches_total",
		"warden_dispatch_duration_seconds",
		"warden_dispatches_in_flight",
		"warden_handler_panics_total",
		"warden_route_misses_total",
		"warden_module_reloads_total",
		"warden_module_last_reload_timestamp",
		"warden_modules_loaded",
		"warden_routes_live",
		"warden_task_runs_total",
	} {
		assert.Contains(t, names, want)
	}
}

func TestCollector_CountsSeriesPerLabelSet(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.DispatchesTotal.WithLabelValues("command", "moderation", OutcomeOK).Inc()
	m.DispatchesTotal.WithLabelValues("command", "moderation", OutcomeError).Inc()
	m.DispatchesTotal.WithLabelValues("event", "welcome", OutcomeOK).Add(4)

	names := gatherNames(t, reg)
	assert.Equal(t, 3, names["warden_dispatches_total"])
}

func TestCollector_SeparateRegistriesAreIndependent(t *testing.T) {
	regA := prometheus.NewRegistry()
	regB := prometheus.NewRegistry()
	a := NewWithRegistry(regA)
	NewWithRegistry(regB)

	a.ModuleReloads.Inc()
	a.ModuleReloads.Inc()

	families, err := regB.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "warden_module_reloads_total" {
			assert.Zero(t, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
}
