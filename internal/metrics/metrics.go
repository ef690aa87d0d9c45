// Package metrics exposes Prometheus instrumentation for the daemon.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests by method, path and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_http_requests_total",
			Help: "HTTP requests handled, by method, path and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration observes request latency by path.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifier_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// NotificationsTotal counts verified video notifications received.
	NotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_notifications_total",
			Help: "Verified video notifications received from the hub.",
		},
	)

	// IntentVerificationsTotal counts completed hub handshakes by mode.
	IntentVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_intent_verifications_total",
			Help: "Completed hub intent verifications, by mode.",
		},
		[]string{"mode"},
	)

	// RelayErrorsTotal counts failures delivering notifications to sinks.
	RelayErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_relay_errors_total",
			Help: "Failures delivering notifications to a sink, by sink.",
		},
		[]string{"sink"},
	)
)

// Middleware records request counts and latency for every route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		RequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus exposition endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
