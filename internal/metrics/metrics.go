// Package metrics provides Prometheus instrumentation for the awqat daemon.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's Prometheus collectors. A nil *Metrics is valid
// and records nothing, which keeps instrumentation optional in tests.
type Metrics struct {
	registry *prometheus.Registry

	syncRuns          *prometheus.CounterVec
	alarmsArmed       prometheus.Counter
	alarmsCancelled   prometheus.Counter
	alarmsFired       prometheus.Counter
	remoteFetches     *prometheus.CounterVec
	locationRefreshes *prometheus.CounterVec
}

// New creates and registers the daemon's metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "awqat_sync_runs_total",
			Help: "Daily sync job runs by outcome.",
		}, []string{"outcome"}),
		alarmsArmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "awqat_alarms_armed_total",
			Help: "Exact alarms registered.",
		}),
		alarmsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "awqat_alarms_cancelled_total",
			Help: "Exact alarm cancellations issued.",
		}),
		alarmsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "awqat_alarms_fired_total",
			Help: "Exact alarms delivered.",
		}),
		remoteFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "awqat_remote_fetches_total",
			Help: "Remote provider fetches by kind and outcome.",
		}, []string{"kind", "outcome"}),
		locationRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "awqat_location_refreshes_total",
			Help: "Location refresh ticks by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.syncRuns,
		m.alarmsArmed,
		m.alarmsCancelled,
		m.alarmsFired,
		m.remoteFetches,
		m.locationRefreshes,
	)

	return m
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SyncRun records one daily sync run with the given outcome
// ("ok", "degraded", "error").
func (m *Metrics) SyncRun(outcome string) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(outcome).Inc()
}

// AlarmArmed records one successful alarm registration.
func (m *Metrics) AlarmArmed() {
	if m == nil {
		return
	}
	m.alarmsArmed.Inc()
}

// AlarmCancelled records one cancellation.
func (m *Metrics) AlarmCancelled() {
	if m == nil {
		return
	}
	m.alarmsCancelled.Inc()
}

// AlarmFired records one delivered alarm.
func (m *Metrics) AlarmFired() {
	if m == nil {
		return
	}
	m.alarmsFired.Inc()
}

// RemoteFetch records one provider fetch.
func (m *Metrics) RemoteFetch(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.remoteFetches.WithLabelValues(kind, outcome).Inc()
}

// LocationRefresh records one refresh tick with the given outcome
// ("changed", "unchanged", "denied", "error").
func (m *Metrics) LocationRefresh(outcome string) {
	if m == nil {
		return
	}
	m.locationRefreshes.WithLabelValues(outcome).Inc()
}
