package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ramyatawia/docflow-orchestrator/internal/metrics"
	"github.com/ramyatawia/docflow-orchestrator/internal/tracing"
)

// responseWriter wraps http.ResponseWriter to capture the status code
// for metrics/tracing.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// observability adds tracing and Prometheus metrics around every
// request, using chi's RouteContext to get the matched route pattern
// with no regex matching.
func observability(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			tracer := tracing.Tracer("orchestrator.http")
			ctx, span := tracer.Start(r.Context(), "http.request", trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.path", r.URL.Path),
			))
			defer span.End()
			r = r.WithContext(ctx)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			if wrapped.statusCode >= 500 {
				span.SetStatus(codes.Error, http.StatusText(wrapped.statusCode))
			} else {
				span.SetStatus(codes.Ok, "")
			}
			span.SetAttributes(attribute.Int("http.status_code", wrapped.statusCode))

			route := routePattern(r)
			statusClass := statusClassOf(wrapped.statusCode)
			if m != nil {
				m.RecordHTTPRequest(route, statusClass, duration)
			}
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

func statusClassOf(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
