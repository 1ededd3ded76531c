// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// Prometheus instrumentation for HTTP traffic. Label values stay bounded:
// "path" is the registered route pattern (/api/v1/queues/:id/next), never
// the raw URL, and requests that matched nothing share the "unmatched"
// label. Domain counters such as ingested files and selections are
// registered by package services.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const unmatchedPath = "unmatched"

// Upload bodies range from a single thumbnail to a full batch.
var requestSizeBuckets = prometheus.ExponentialBuckets(1<<10, 4, 10) // 1KiB..256MiB

// JSON payloads: small envelopes up to large group listings.
var responseSizeBuckets = prometheus.ExponentialBuckets(256, 4, 8) // 256B..4MiB

type httpCollectors struct {
	requests *prometheus.CounterVec   // method, path, status
	latency  *prometheus.HistogramVec // method, path
	inflight prometheus.Gauge
	reqSize  *prometheus.HistogramVec // method, path
	respSize *prometheus.HistogramVec // method, path
}

func newHTTPCollectors() *httpCollectors {
	routeLabels := []string{"method", "path"}
	return &httpCollectors{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, routeLabels),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Requests currently being served.",
		}),
		reqSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "Declared request body size by method and route.",
			Buckets: requestSizeBuckets,
		}, routeLabels),
		respSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Response body size by method and route.",
			Buckets: responseSizeBuckets,
		}, routeLabels),
	}
}

func (m *httpCollectors) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.latency, m.inflight, m.reqSize, m.respSize}
}

// observe records one finished request.
func (m *httpCollectors) observe(c *gin.Context, elapsed time.Duration) {
	path := c.FullPath()
	if path == "" {
		path = unmatchedPath
	}
	method := c.Request.Method

	m.requests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
	m.latency.WithLabelValues(method, path).Observe(elapsed.Seconds())
	if n := c.Request.ContentLength; n > 0 {
		m.reqSize.WithLabelValues(method, path).Observe(float64(n))
	}
	if n := c.Writer.Size(); n >= 0 { // -1 before any write
		m.respSize.WithLabelValues(method, path).Observe(float64(n))
	}
}

var httpMetrics = newHTTPCollectors()

func init() {
	prometheus.MustRegister(append(httpMetrics.collectors(), rateLimited)...)
}

// Metrics instruments every request; serve promhttp.Handler() on /metrics
// to expose the result.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpMetrics.inflight.Inc()
		defer httpMetrics.inflight.Dec()

		c.Next()
		httpMetrics.observe(c, time.Since(start))
	}
}
