// Package metrics holds the Prometheus collectors of the web server and the
// mirror worker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kamai"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics is one registry plus the collectors registered on it. Each
// process (and each test) builds its own.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	Calculations        prometheus.Counter
	ReportsGenerated    *prometheus.CounterVec
	DirectoryOps        *prometheus.CounterVec
	EventsPublished     *prometheus.CounterVec
	MirrorRuns          *prometheus.CounterVec
	MirrorRows          prometheus.Gauge
	ActiveSessions      prometheus.GaugeFunc
	RateLimited         prometheus.Counter
	SuspiciousRequests  prometheus.Counter
}

// New builds the collectors. sessions, when non-nil, is sampled for the
// active sessions gauge.
func New(sessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"route"}),
		Calculations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Earnings calculations served.",
		}),
		ReportsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "PDF reports rendered, by result.",
		}, []string{"result"}),
		DirectoryOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_operations_total",
			Help:      "Directory store calls by operation and result.",
		}, []string{"op", "result"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_events_published_total",
			Help:      "Directory events handed to the broker, by type and result.",
		}, []string{"type", "result"}),
		MirrorRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheet_mirror_runs_total",
			Help:      "Sheet mirror rewrites by trigger and result.",
		}, []string{"trigger", "result"}),
		MirrorRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sheet_mirror_rows",
			Help:      "Rows written by the last successful mirror run.",
		}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
		SuspiciousRequests: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspicious_requests_total",
			Help:      "Requests matching a known probing pattern.",
		}),
	}
	if sessions != nil {
		m.ActiveSessions = f.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory.",
		}, func() float64 { return float64(sessions()) })
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Result maps an error onto the result label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
