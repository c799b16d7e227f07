package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "app_builder",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "app_builder",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "app_builder",
			Subsystem: "submissions",
			Name:      "total",
			Help:      "App submissions by outcome.",
		},
		[]string{"result"},
	)

	payments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "app_builder",
			Subsystem: "payments",
			Name:      "total",
			Help:      "Payment operations by stage and outcome.",
		},
		[]string{"stage", "result"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "app_builder",
			Subsystem: "notifications",
			Name:      "total",
			Help:      "Email notifications by outcome.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		submissions,
		payments,
		notifications,
	)
}

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one handled request
func RecordHTTPRequest(method, path string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordSubmission records the outcome of a submit call
func RecordSubmission(result string) {
	submissions.WithLabelValues(result).Inc()
}

// RecordPayment records the outcome of an order or verify call
func RecordPayment(stage, result string) {
	payments.WithLabelValues(stage, result).Inc()
}

// RecordNotification records the final outcome of an email dispatch
func RecordNotification(result string) {
	notifications.WithLabelValues(result).Inc()
}
