package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the dashboard.
type Metrics struct {
	ProfileLoads    *prometheus.CounterVec
	SettingsSaves   *prometheus.CounterVec
	CalendarActions *prometheus.CounterVec
	LogExports      *prometheus.CounterVec
	LogsGate        *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			ProfileLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "profile_loads_total",
				Help:      "Profile loads by the session provider by outcome (found, created, error).",
			}, []string{"outcome"}),
			SettingsSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settings_saves_total",
				Help:      "Settings page saves by page and status.",
			}, []string{"page", "status"}),
			CalendarActions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calendar_actions_total",
				Help:      "Calendar connect/disconnect requests by status.",
			}, []string{"action", "status"}),
			LogExports: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_exports_total",
				Help:      "Log exports by format and status.",
			}, []string{"format", "status"}),
			LogsGate: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logs_gate_attempts_total",
				Help:      "Log viewer password attempts by result.",
			}, []string{"result"}),
			BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Latency distribution for RigBot backend calls.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"endpoint", "status"}),
		}

		prometheus.MustRegister(
			metricsInstance.ProfileLoads,
			metricsInstance.SettingsSaves,
			metricsInstance.CalendarActions,
			metricsInstance.LogExports,
			metricsInstance.LogsGate,
			metricsInstance.BackendLatency,
		)
	})
	return metricsInstance
}
