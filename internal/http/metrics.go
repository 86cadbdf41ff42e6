package http

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	tokensIssuedTotal  prometheus.Counter
	tokensRevokedTotal prometheus.Counter
	authzDecisions     *prometheus.CounterVec
)

// MetricsConfig groups what the /metrics endpoint needs.
type MetricsConfig struct {
	Registry prometheus.Registerer
	Pool     *pgxpool.Pool
}

// RegisterMetrics initialises the HTTP and domain metrics, optionally
// registers a pool-stats collector, and returns the /metrics handler.
func RegisterMetrics(cfg MetricsConfig) http.Handler {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		tokensIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oauth_tokens_issued_total",
			Help: "Tokens issued through the credential boundary",
		})

		tokensRevokedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oauth_tokens_revoked_total",
			Help: "Tokens revoked through the credential boundary",
		})

		authzDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization decisions by outcome",
		}, []string{"outcome"})

		registry.MustRegister(
			httpRequestsTotal, httpRequestDuration,
			tokensIssuedTotal, tokensRevokedTotal, authzDecisions,
		)
		if cfg.Pool != nil {
			registry.MustRegister(newPoolCollector(cfg.Pool))
		}
	})

	return promhttp.Handler()
}

// WithMetrics records counters and latency per request.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httpRequestsTotal == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &metricsRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type metricsRecorder struct {
	http.ResponseWriter
	status int
}

func (m *metricsRecorder) WriteHeader(code int) {
	m.status = code
	m.ResponseWriter.WriteHeader(code)
}

// poolCollector exposes pgxpool stats.
type poolCollector struct {
	pool *pgxpool.Pool

	acquired *prometheus.Desc
	idle     *prometheus.Desc
	total    *prometheus.Desc
}

func newPoolCollector(pool *pgxpool.Pool) *poolCollector {
	return &poolCollector{
		pool:     pool,
		acquired: prometheus.NewDesc("pgx_pool_acquired_conns", "Connections currently acquired", nil, nil),
		idle:     prometheus.NewDesc("pgx_pool_idle_conns", "Idle connections", nil, nil),
		total:    prometheus.NewDesc("pgx_pool_total_conns", "Total connections", nil, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(st.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(st.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(st.TotalConns()))
}

// CountTokenIssued bumps the issuance counter. Safe before RegisterMetrics.
func CountTokenIssued() {
	if tokensIssuedTotal != nil {
		tokensIssuedTotal.Inc()
	}
}

// CountTokenRevoked bumps the revocation counter.
func CountTokenRevoked() {
	if tokensRevokedTotal != nil {
		tokensRevokedTotal.Inc()
	}
}

// CountAuthzDecision records an allow/deny outcome.
func CountAuthzDecision(allowed bool) {
	if authzDecisions == nil {
		return
	}
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	authzDecisions.WithLabelValues(outcome).Inc()
}
