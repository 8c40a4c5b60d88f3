package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOriginal  = "original"
	ResultDuplicate = "duplicate"
	ResultRejected  = "rejected"
	ResultFailed    = "failed"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filevault_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filevault_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

var (
	// IngestTotal counts finished ingests by outcome.
	IngestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filevault_ingest_total",
			Help: "Ingest attempts by result",
		},
		[]string{"result"},
	)

	// IngestConflicts counts ingests that lost a race and were retried.
	IngestConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filevault_ingest_conflicts_total",
			Help: "Ingests retried after a concurrent conflict on the content hash",
		},
	)

	BrokenReferences = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filevault_broken_references_total",
			Help: "Content resolutions that found a dangling or inconsistent reference",
		},
	)
)

// Middleware records request count and latency per route template, so
// /api/files/:id is one series no matter how many IDs are requested.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
