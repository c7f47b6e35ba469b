package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Lifecycle metrics
	RequestTransitions *prometheus.CounterVec
	SessionTransitions *prometheus.CounterVec
	ReviewsCreated     *prometheus.CounterVec
	RequestsExpired    prometheus.Counter

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Notification delivery
	NotificationsDelivered *prometheus.CounterVec
}

var (
	metrics *Metrics
	once    sync.Once
)

// Init initializes all Prometheus metrics
func Init() *Metrics {
	once.Do(func() {
		metrics = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path"},
			),
			HTTPRequestsInFlight: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "http_requests_in_flight",
					Help: "Number of HTTP requests currently being processed",
				},
			),

			RequestTransitions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "skillswap_request_transitions_total",
					Help: "Swap request status changes",
				},
				[]string{"status"},
			),
			SessionTransitions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "skillswap_session_transitions_total",
					Help: "Swap session status changes",
				},
				[]string{"status"},
			),
			ReviewsCreated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "skillswap_reviews_created_total",
					Help: "Reviews created by reviewer role",
				},
				[]string{"role"},
			),
			RequestsExpired: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "skillswap_requests_expired_total",
					Help: "Pending requests moved to expired by the sweep",
				},
			),

			CacheHits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache_type"},
			),
			CacheMisses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache_type"},
			),

			NotificationsDelivered: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "skillswap_notifications_delivered_total",
					Help: "Notification delivery attempts by channel and result",
				},
				[]string{"channel", "result"},
			),
		}
	})

	return metrics
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Init()
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// GinHandler returns a Gin-compatible handler for Prometheus metrics
func GinHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// MetricsMiddleware is a Gin middleware for collecting HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	m := Get()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordRequestTransition records a swap request reaching status
func RecordRequestTransition(status string) {
	Get().RequestTransitions.WithLabelValues(status).Inc()
}

// RecordSessionTransition records a swap session reaching status
func RecordSessionTransition(status string) {
	Get().SessionTransitions.WithLabelValues(status).Inc()
}

func RecordReviewCreated(role string) {
	Get().ReviewsCreated.WithLabelValues(role).Inc()
}

// RecordRequestsExpired adds n requests closed by the expiry sweep
func RecordRequestsExpired(n int64) {
	Get().RequestsExpired.Add(float64(n))
}

// RecordCacheHit records a cache hit
func RecordCacheHit(cacheType string) {
	Get().CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(cacheType string) {
	Get().CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordNotificationDelivery records one delivery attempt
func RecordNotificationDelivery(channel, result string) {
	Get().NotificationsDelivered.WithLabelValues(channel, result).Inc()
}
