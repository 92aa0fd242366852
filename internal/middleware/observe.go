package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"superstore-dashboard/internal/observability"
)

// Tracing starts a server span per request, continuing any trace context the
// caller propagated. Spans are named after the route, not the raw path.
func Tracing() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeLabel(r.URL.Path)
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := observability.Tracer().Start(ctx, r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRoute(route),
					semconv.URLPath(r.URL.Path),
					semconv.URLQuery(r.URL.RawQuery),
					semconv.UserAgentOriginal(r.UserAgent()),
					attribute.String("request_id", observability.GetRequestID(r.Context())),
				),
			)
			defer span.End()

			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			span.SetAttributes(
				semconv.HTTPResponseStatusCode(wrapped.statusCode),
				semconv.HTTPResponseBodySize(int(wrapped.written)),
			)
			if wrapped.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(wrapped.statusCode))
			}
		})
	}
}

// RequestObserver records finished requests.
type RequestObserver interface {
	ObserveRequest(method, path string, status int, duration time.Duration)
}

// Metrics reports every request to observer under its route label.
func Metrics(observer RequestObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			observer.ObserveRequest(r.Method, routeLabel(r.URL.Path), wrapped.statusCode, time.Since(start))
		})
	}
}

// routeLabel folds parameterised paths into their route pattern and unknown
// paths into "other" so metric labels stay bounded.
func routeLabel(path string) string {
	switch {
	case strings.HasPrefix(path, "/charts/"):
		return "/charts/{chart}"
	case strings.HasPrefix(path, "/api/breakdown/"):
		return "/api/breakdown/{dimension}"
	case strings.HasPrefix(path, "/api/"), strings.HasPrefix(path, "/sse/"),
		path == "/", path == "/health", path == "/metrics", path == "/admin/stats":
		return path
	default:
		return "other"
	}
}
