package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_http_requests_total",
		Help: "HTTP requests handled, by service, method, route and status.",
	}, []string{"service", "method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "registrar_http_request_duration_seconds",
		Help:    "HTTP request latency, by service, method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method", "route"})

	recordsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_records_created_total",
		Help: "Records inserted, by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpDuration, recordsCreated)
}

// Metrics records request counts and latency for the named service.
func Metrics(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(service, method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(service, method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordCreated counts one inserted record of kind.
func RecordCreated(kind string) {
	recordsCreated.WithLabelValues(kind).Inc()
}
