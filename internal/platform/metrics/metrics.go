// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResultOK is the result label of a successful account operation.
const ResultOK = "OK"

var (
	// AccountOperationsTotal counts account operations by operation name and result.
	AccountOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_operations_total",
			Help: "Total number of account operations by result",
		},
		[]string{"operation", "result"},
	)

	// HTTPRequestsInFlight is the number of requests being served.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// HTTPRequestDurationSeconds observes request latency by method, route and status.
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// UserCacheLookupsTotal counts user cache lookups by hit, miss or corrupt.
	UserCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_cache_lookups_total",
			Help: "Total number of user cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveOperation records the outcome of one account operation.
// result is ResultOK or an error kind code.
func ObserveOperation(operation, result string) {
	AccountOperationsTotal.WithLabelValues(operation, result).Inc()
}

// Middleware records in-flight requests and request duration.
// The path label uses the matched route so that unknown paths do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestDurationSeconds.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
