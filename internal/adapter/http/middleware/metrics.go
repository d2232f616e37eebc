package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// HTTPRecorder receives request metrics. *metrics.Metrics satisfies it.
type HTTPRecorder interface {
	RequestStarted()
	RequestFinished(method, path string, status int, seconds float64)
}

// MetricsMiddleware records HTTP metrics.
type MetricsMiddleware struct {
	recorder HTTPRecorder
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(recorder HTTPRecorder) *MetricsMiddleware {
	return &MetricsMiddleware{recorder: recorder}
}

// Wrap wraps an http.Handler with request metrics.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.recorder.RequestStarted()

		// Wrap response writer to capture status code
		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		m.recorder.RequestFinished(r.Method, routeLabel(r), wrapped.statusCode, time.Since(start).Seconds())
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// routeLabel prefers the matched chi pattern, which is only known once the
// request has been routed.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return normalizePath(r.URL.Path)
}

// normalizePath replaces identifiers in URL paths to avoid high cardinality.
//
//	/api/v1/comandas/01ABC/validate -> /api/v1/comandas/{id}/validate
//	/api/v1/cash-boxes/petty/summary stays as is
func normalizePath(path string) string {
	parts := strings.Split(path, "/")

	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}

		switch parts[i-1] {
		case "comandas", "transfers":
			if i >= 2 && parts[i-2] == "v1" {
				parts[i] = "{id}"
			}
		case "cash-boxes":
			// cash boxes are a closed set; anything else collapses
			if parts[i] != "petty" && parts[i] != "main" {
				parts[i] = "{box}"
			}
		}
	}

	return strings.Join(parts, "/")
}
