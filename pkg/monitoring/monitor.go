package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "endpoint"},
	)

	// SubmissionCounter counts evaluated answers by outcome.
	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_answer_submissions_total",
			Help: "Answer submissions by outcome",
		},
		[]string{"outcome"},
	)

	HintUnlockCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_hint_unlocks_total",
			Help: "Hint unlock requests by result",
		},
		[]string{"result"},
	)

	// TxRetryCounter counts evaluation transactions that were retried after
	// a version conflict or deadlock.
	TxRetryCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_tx_retries_total",
			Help: "Retried progress transactions",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			SubmissionCounter,
			HintUnlockCounter,
			TxRetryCounter,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
