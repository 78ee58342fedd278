// Package metrics provides Prometheus instrumentation for the junket engine.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SharingCalculations counts profit-sharing computations by caller.
	SharingCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "junket_sharing_calculations_total",
		Help: "Total number of trip sharing calculations",
	}, []string{"source"})

	// FinancialValidations counts validation runs partitioned by outcome
	// ("valid" or "invalid").
	FinancialValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "junket_financial_validations_total",
		Help: "Total number of trip financial validations",
	}, []string{"outcome"})

	// ValidationWarnings counts advisory warnings raised by validation.
	ValidationWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "junket_validation_warnings_total",
		Help: "Warnings emitted by trip financial validation",
	})

	// PermissionDenials counts requests rejected by the role matrix.
	PermissionDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "junket_permission_denials_total",
		Help: "Requests rejected for lack of a capability",
	}, []string{"capability"})

	// ActiveTrips tracks trips currently in the active status.
	ActiveTrips = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "junket_active_trips",
		Help: "Number of trips in active status",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "junket_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "junket_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "junket_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "junket_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := routePattern(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern returns the matched chi route ("/api/v1/trips/{tripID}")
// so IDs do not explode label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so WebSocket upgrades
// work behind the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
