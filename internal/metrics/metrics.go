package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry. All methods are safe on a nil receiver.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	candidates      prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	sessionEvents   *prometheus.CounterVec
	payments        *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
	wsConnections   prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Recommendation requests by outcome",
		}, []string{"outcome"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recommendation_candidate_pool_size",
			Help:    "Number of eligible mentors considered per recommendation request",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by cache name and result",
		}, []string{"cache", "result"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Session status transitions",
		}, []string{"status"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment events by status",
		}, []string{"status"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduled_job_runs_total",
			Help: "Scheduled job runs by job and result",
		}, []string{"job", "result"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Open notification websocket connections",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal, m.recommendations, m.candidates,
		m.cacheLookups, m.sessionEvents, m.payments, m.jobRuns, m.wsConnections, goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

func (m *Metrics) ObserveRecommendation(outcome string, poolSize int) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(outcome).Inc()
	if poolSize >= 0 {
		m.candidates.Observe(float64(poolSize))
	}
}

func (m *Metrics) RecordCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) RecordSessionTransition(status string) {
	if m == nil {
		return
	}
	m.sessionEvents.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordPayment(status string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordJobRun(job string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
}

func (m *Metrics) AddWebsocketConnections(delta float64) {
	if m == nil {
		return
	}
	m.wsConnections.Add(delta)
}
