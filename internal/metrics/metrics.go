package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query statuses recorded for store operations.
const (
	StatusSuccess  = "success"
	StatusConflict = "conflict"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	QueryDuration *prometheus.HistogramVec
	QueryTotal    *prometheus.CounterVec
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	Events        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of short link store operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		QueryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_query_total",
			Help: "Short link store operations by outcome",
		}, []string{"operation", "status"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hit_count",
			Help: "The number of short link cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_miss_count",
			Help: "The number of short link cache misses",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Link events received by consumers by outcome",
		}, []string{"topic", "outcome"}),
	}

	reg.MustRegister(
		m.QueryDuration,
		m.QueryTotal,
		m.CacheHits,
		m.CacheMisses,
		m.HTTPRequests,
		m.HTTPDuration,
		m.Events,
	)

	return m
}

// ObserveQuery records one store operation.
func (m *Metrics) ObserveQuery(operation, status string, d time.Duration) {
	m.QueryDuration.WithLabelValues(operation).Observe(d.Seconds())
	m.QueryTotal.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) CacheHit() {
	m.CacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	m.CacheMisses.Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveEvent records how a consumer dealt with one event.
func (m *Metrics) ObserveEvent(topic, outcome string) {
	m.Events.WithLabelValues(topic, outcome).Inc()
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
