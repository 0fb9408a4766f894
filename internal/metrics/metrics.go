package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors for the service. It owns a
// private registry so tests can create as many instances as they need
// without collector name collisions.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec

	SchedulerRunsTotal prometheus.Counter
	ExecutionsTotal    *prometheus.CounterVec
	AlertsRaisedTotal  prometheus.Counter

	NotificationsTotal *prometheus.CounterVec

	PrunedRowsTotal *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		SchedulerRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_runs_total",
			Help: "Total scheduler ticks executed.",
		}),
		ExecutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "indicator_executions_total",
			Help: "Total indicator executions by result.",
		}, []string{"result"}),
		AlertsRaisedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alerts_raised_total",
			Help: "Total alerts raised by the scheduler.",
		}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total webhook notification deliveries by result.",
		}, []string{"result"}),
		PrunedRowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pruned_rows_total",
			Help: "Total rows removed by the retention pruner by table.",
		}, []string{"table"}),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPDuration,
		m.SchedulerRunsTotal,
		m.ExecutionsTotal,
		m.AlertsRaisedTotal,
		m.NotificationsTotal,
		m.PrunedRowsTotal,
	)

	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gather exposes the underlying registry for tests.
func (m *Metrics) Gather() prometheus.Gatherer {
	return m.registry
}
