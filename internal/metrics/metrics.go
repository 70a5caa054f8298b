// ABOUTME: Prometheus counters for HTTP traffic, auth failures, and the cache
// ABOUTME: A nil *Metrics is valid and turns all recording into no-ops

package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its own registry so tests can run several instances without
// duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	authFailures *prometheus.CounterVec
	logins       *prometheus.CounterVec
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

// New creates and registers the forum's metric set.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forum_http_requests_total",
			Help: "HTTP requests served, by method, path, and status.",
		}, []string{"method", "path", "status"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forum_auth_failures_total",
			Help: "Bearer-token authentication failures, by reason.",
		}, []string{"reason"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forum_logins_total",
			Help: "Login attempts, by outcome.",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forum_topic_list_cache_hits_total",
			Help: "Topic list requests served from cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forum_topic_list_cache_misses_total",
			Help: "Topic list requests that went to the database.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.authFailures,
		m.logins,
		m.cacheHits,
		m.cacheMisses,
	)
	return m
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(method, path string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// AuthFailure records a bearer-token authentication failure.
func (m *Metrics) AuthFailure(reason string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(reason).Inc()
}

// Login records a login attempt outcome ("success" or "failure").
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// CacheHit records a topic list served from cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss records a topic list that went to the database.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// Handler serves the registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
