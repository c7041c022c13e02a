package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/metrics"
	"github.com/ccdaniele/name-finder/internal/observability"
)

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.written += int64(n)
	return n, err
}

// Flush lets streamed exports pass through the recorder.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// fixedPatterns maps concrete paths to themselves so label values stay bounded.
var fixedPatterns = map[string]string{
	"/":               "/",
	"/health":         "/health/*",
	"/health/live":    "/health/*",
	"/health/ready":   "/health/*",
	"/health/startup": "/health/*",
	"/version":        "/version",
	"/metrics":        "/metrics",
	"/admin/signal":   "/admin/signal",
	"/v1/validate":    "/v1/validate",
	"/v1/runs":        "/v1/runs",
	"/v1/export/csv":  "/v1/export/csv",
}

// clearanceOperations names the /v1 endpoints by what they do.
var clearanceOperations = map[string]string{
	"POST /v1/validate":          "validate",
	"POST /v1/runs":              "start_run",
	"GET /v1/runs/{id}":          "get_run",
	"POST /v1/runs/{id}/replace": "replace_row",
	"GET /v1/runs/{id}/export":   "export_run",
	"POST /v1/export/csv":        "export_csv",
}

// EndpointPattern returns the chi route pattern, or a bounded pattern
// derived from the path when routing did not record one.
func EndpointPattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return pathPattern(r.URL.Path)
}

func pathPattern(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if pattern, ok := fixedPatterns[path]; ok {
		return pattern
	}

	// /v1/runs/<id>[/replace|/export]
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segments) < 3 || segments[0] != "v1" || segments[1] != "runs" || segments[2] == "" {
		return "/unknown"
	}
	switch {
	case len(segments) == 3:
		return "/v1/runs/{id}"
	case len(segments) == 4 && (segments[3] == "replace" || segments[3] == "export"):
		return "/v1/runs/{id}/" + segments[3]
	}
	return "/unknown"
}

// clearanceOperation returns the operation label for a /v1 request, or ""
// for anything outside the clearance API.
func clearanceOperation(method, pattern string) string {
	return clearanceOperations[method+" "+pattern]
}

// RequestMetrics records request counters and latency by route pattern, plus
// a per-operation series for the clearance API.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if observability.TelemetrySystem == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		endpoint := EndpointPattern(r)
		status := strconv.Itoa(rec.status)
		labels := map[string]string{
			"method":   r.Method,
			"endpoint": endpoint,
			"status":   status,
		}
		_ = observability.TelemetrySystem.Counter("http_requests_total", 1, labels)
		_ = observability.TelemetrySystem.Histogram("http_request_duration_ms", duration, labels)
		_ = observability.TelemetrySystem.Gauge("http_response_size_bytes", float64(rec.written), map[string]string{
			"method":   r.Method,
			"endpoint": endpoint,
		})
		if rec.status >= 400 {
			errorType := "client_error"
			if rec.status >= 500 {
				errorType = "server_error"
			}
			_ = observability.TelemetrySystem.Counter("http_errors_total", 1, map[string]string{
				"method":     r.Method,
				"endpoint":   endpoint,
				"status":     status,
				"error_type": errorType,
			})
		}

		operation := clearanceOperation(r.Method, endpoint)
		if operation != "" {
			metrics.RecordAPIRequest(operation, rec.status, duration)
		}

		if logger := observability.ServerLogger; logger != nil {
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("endpoint", endpoint),
				zap.Int("status", rec.status),
				zap.Duration("duration", duration),
				zap.Int64("response_size", rec.written),
				zap.String("request_id", GetRequestID(r.Context())),
			}
			if operation != "" {
				fields = append(fields, zap.String("operation", operation))
			}
			logger.Info("HTTP request completed", fields...)
		}
	})
}
