package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	emailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total number of outreach emails handed to the transport",
		},
		[]string{"channel", "status"},
	)

	bulkSendBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bulk_send_batches_total",
			Help: "Total number of bulk send batches run",
		},
	)

	progressionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progression_events_total",
			Help: "Total number of progression events consumed",
		},
		[]string{"result"},
	)

	scheduledDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_emails_dispatched_total",
			Help: "Total number of scheduled emails dispatched",
		},
		[]string{"status"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps ids out of the label set.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func RecordEmailsSent(channel, status string, n int) {
	emailsSent.WithLabelValues(channel, status).Add(float64(n))
}

func RecordBulkBatch() {
	bulkSendBatches.Inc()
}

func RecordProgression(result string) {
	progressionEvents.WithLabelValues(result).Inc()
}

func RecordScheduledDispatch(status string, n int) {
	scheduledDispatched.WithLabelValues(status).Add(float64(n))
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
