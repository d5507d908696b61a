// Package metrics exposes Prometheus instrumentation for the highscore service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultInvalid = "invalid"
)

// Metrics owns a private registry and every collector the service reports.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	repoOps             *prometheus.CounterVec
	repoOpDuration      *prometheus.HistogramVec
	players             prometheus.Gauge
	backupRuns          *prometheus.CounterVec
	kafkaMessages       *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route pattern, method and status code",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		repoOps: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "repository_operations_total",
			Help: "Repository operations by name and result",
		}, []string{"op", "result"}),
		repoOpDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "repository_operation_duration_seconds",
			Help:    "Repository operation latency including the document round trip",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		players: auto.NewGauge(prometheus.GaugeOpts{
			Name: "players_total",
			Help: "Number of records in the highscore document at the last snapshot",
		}),
		backupRuns: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "backup_runs_total",
			Help: "Backup worker runs by result",
		}, []string{"result"}),
		kafkaMessages: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_messages_total",
			Help: "Consumed highscore submissions by result",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(route, method string, status int, seconds float64) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(seconds)
}

// ObserveOperation records the outcome of a repository operation
func (m *Metrics) ObserveOperation(op string, err error, seconds float64) {
	m.repoOps.WithLabelValues(op, result(err)).Inc()
	m.repoOpDuration.WithLabelValues(op).Observe(seconds)
}

// SetPlayers updates the collection size gauge
func (m *Metrics) SetPlayers(n int) {
	m.players.Set(float64(n))
}

// BackupRun records one backup attempt
func (m *Metrics) BackupRun(err error) {
	m.backupRuns.WithLabelValues(result(err)).Inc()
}

// KafkaMessage records one consumed message with the given result label
func (m *Metrics) KafkaMessage(result string) {
	m.kafkaMessages.WithLabelValues(result).Inc()
}

// Middleware records request count and latency keyed by the matched chi route
// pattern, so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.ObserveHTTP(route, r.Method, status, time.Since(start).Seconds())
	})
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
