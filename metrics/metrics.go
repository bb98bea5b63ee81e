package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "promo",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo",
			Subsystem: "forms",
			Name:      "submissions_total",
			Help:      "Form submissions by outcome.",
		},
		[]string{"result"},
	)

	reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo",
			Subsystem: "inventory",
			Name:      "reconciliations_total",
			Help:      "Stock recomputations by trigger.",
		},
		[]string{"trigger"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "promo",
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Notification deliveries by outcome.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		submissions,
		reconciliations,
		notifications,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Submission counts a submission outcome: "recorded", "invalid" or "failed".
func Submission(result string) {
	submissions.WithLabelValues(result).Inc()
}

// Reconciliation counts a stock recomputation; trigger is the voucher
// mutation that caused it ("issue", "delete", "consume", "manual").
func Reconciliation(trigger string) {
	reconciliations.WithLabelValues(trigger).Inc()
}

// Notification counts a delivery outcome: "sent", "failed" or "dropped".
func Notification(result string) {
	notifications.WithLabelValues(result).Inc()
}

// Instrument records request counts and latencies labeled by chi route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
