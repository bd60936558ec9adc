package screening

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the screening daemon.
type Metrics struct {
	callsScreened     *prometheus.CounterVec
	screeningDuration *prometheus.HistogramVec

	filterRuns     *prometheus.CounterVec
	filterDuration *prometheus.HistogramVec

	configReloads *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics instance with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		callsScreened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callwarden_calls_screened_total",
				Help: "Total number of screened calls by outcome and timeout",
			},
			[]string{"outcome", "timed_out"},
		),

		screeningDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "callwarden_screening_duration_seconds",
				Help:    "Wall time from filtering start to final verdict",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),

		filterRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callwarden_filter_runs_total",
				Help: "Total number of filter executions by filter and status",
			},
			[]string{"filter", "status"},
		),

		filterDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "callwarden_filter_duration_seconds",
				Help:    "Filter execution latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"filter"},
		),

		configReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callwarden_config_reloads_total",
				Help: "Total number of configuration snapshot applications by status",
			},
			[]string{"status"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.callsScreened,
		m.screeningDuration,
		m.filterRuns,
		m.filterDuration,
		m.configReloads,
	)

	return m
}

// RecordCallScreened records one finished screening session.
func (m *Metrics) RecordCallScreened(outcome string, timedOut bool, duration time.Duration) {
	m.callsScreened.WithLabelValues(outcome, strconv.FormatBool(timedOut)).Inc()
	m.screeningDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordFilterRun records one filter execution.
func (m *Metrics) RecordFilterRun(filter string, failed bool, duration time.Duration) {
	status := "ok"
	if failed {
		status = "error"
	}
	m.filterRuns.WithLabelValues(filter, status).Inc()
	m.filterDuration.WithLabelValues(filter).Observe(duration.Seconds())
}

// RecordConfigReload records a configuration snapshot application.
func (m *Metrics) RecordConfigReload(status string) {
	m.configReloads.WithLabelValues(status).Inc()
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
