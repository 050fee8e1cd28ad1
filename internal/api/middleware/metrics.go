package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrcode_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrcode_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qrcode_registrations_total",
			Help: "Total number of accounts created",
		},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrcode_logins_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	codesRenderedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qrcode_codes_rendered_total",
			Help: "Total number of QR codes rendered",
		},
	)

	codesSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qrcode_codes_saved_total",
			Help: "Total number of QR codes saved to a history",
		},
	)

	codesDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qrcode_codes_deleted_total",
			Help: "Total number of QR codes deleted from a history",
		},
	)
)

// Metrics records request counts and latencies by chi route pattern.
func Metrics() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			path := routePattern(r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// routePattern avoids one label per artifact id.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return "unmatched"
}

func IncrementRegistrations() {
	registrationsTotal.Inc()
}

func IncrementLogins(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

func IncrementCodesRendered() {
	codesRenderedTotal.Inc()
}

func IncrementCodesSaved() {
	codesSavedTotal.Inc()
}

func IncrementCodesDeleted() {
	codesDeletedTotal.Inc()
}
