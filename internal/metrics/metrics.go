package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheetview_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// OperationsTotal counts pipeline operations (load, filter, plot) by outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheetview_operations_total",
			Help: "Total number of pipeline operations",
		},
		[]string{"operation", "status"},
	)
	// ActiveSessions is the number of live sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sheetview_active_sessions",
			Help: "Number of sessions held in memory",
		},
	)
	// LoadedRows is the row count of uploaded tables.
	LoadedRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sheetview_loaded_rows",
			Help:    "Rows per uploaded spreadsheet",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)
)

// Operation names
const (
	OpLoad   = "load"
	OpFilter = "filter"
	OpPlot   = "plot"
	OpExport = "export"
)

// Outcome labels
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusError    = "error"
	StatusNoData   = "no_data"
)

// ObserveOperation increments the counter for one pipeline step
func ObserveOperation(operation, status string) {
	OperationsTotal.WithLabelValues(operation, status).Inc()
}

// Middleware records request counts and latency per route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RequestTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
