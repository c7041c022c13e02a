package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccdaniele/name-finder/internal/metrics"
	"github.com/ccdaniele/name-finder/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })

	return collector
}

func clearanceRoutes(status int) http.Handler {
	h := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(status) }
	r := chi.NewRouter()
	r.Use(RequestID, RequestMetrics)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", h)
		r.Get("/runs/{id}", h)
		r.Post("/runs/{id}/replace", h)
	})
	r.Get("/version", h)
	return r
}

func TestRequestMetricsUsesRoutePattern(t *testing.T) {
	collector := setupTelemetry(t)

	rec := httptest.NewRecorder()
	clearanceRoutes(http.StatusOK).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs/run-42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	requests := collector.GetMetricsByName("http_requests_total")
	require.Len(t, requests, 1)
	assert.Equal(t, "/v1/runs/{id}", requests[0].Tags["endpoint"])
	assert.Equal(t, "200", requests[0].Tags["status"])
	assert.Greater(t, collector.CountMetricsByName("http_request_duration_ms"), 0)
}

func TestRequestMetricsRecordsClearanceOperation(t *testing.T) {
	collector := setupTelemetry(t)

	rec := httptest.NewRecorder()
	clearanceRoutes(http.StatusBadRequest).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/validate", nil))

	calls := collector.GetMetricsByName(metrics.APIRequestsTotal)
	require.Len(t, calls, 1)
	assert.Equal(t, "validate", calls[0].Tags["operation"])
	assert.Equal(t, "rejected", calls[0].Tags["outcome"])
	assert.Equal(t, 1, collector.CountMetricsByName("http_errors_total"))
}

func TestRequestMetricsSkipsOperationOutsideAPI(t *testing.T) {
	collector := setupTelemetry(t)

	rec := httptest.NewRecorder()
	clearanceRoutes(http.StatusOK).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	assert.Equal(t, 1, collector.CountMetricsByName("http_requests_total"))
	assert.Zero(t, collector.CountMetricsByName(metrics.APIRequestsTotal))
}

func TestRequestMetricsWithTelemetryDisabled(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = original })

	rec := httptest.NewRecorder()
	clearanceRoutes(http.StatusOK).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/runs/abc/replace", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestMetricsKeepsRequestID(t *testing.T) {
	setupTelemetry(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/validate", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	rec := httptest.NewRecorder()
	clearanceRoutes(http.StatusOK).ServeHTTP(rec, req)

	assert.Equal(t, "req-7", rec.Header().Get(RequestIDHeader))
}

func TestPathPattern(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/", "/"},
		{"/health", "/health/*"},
		{"/health/ready", "/health/*"},
		{"/version", "/version"},
		{"/metrics", "/metrics"},
		{"/v1/validate", "/v1/validate"},
		{"/v1/runs", "/v1/runs"},
		{"/v1/runs/", "/v1/runs"},
		{"/v1/runs/3f2a", "/v1/runs/{id}"},
		{"/v1/runs/3f2a/replace", "/v1/runs/{id}/replace"},
		{"/v1/runs/3f2a/export", "/v1/runs/{id}/export"},
		{"/v1/runs/3f2a/delete", "/unknown"},
		{"/v1/export/csv", "/v1/export/csv"},
		{"/v2/runs/3f2a", "/unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathPattern(tt.path))
		})
	}
}

func TestClearanceOperation(t *testing.T) {
	assert.Equal(t, "start_run", clearanceOperation(http.MethodPost, "/v1/runs"))
	assert.Equal(t, "export_run", clearanceOperation(http.MethodGet, "/v1/runs/{id}/export"))
	assert.Equal(t, "export_csv", clearanceOperation(http.MethodPost, "/v1/export/csv"))
	assert.Empty(t, clearanceOperation(http.MethodGet, "/v1/validate"))
	assert.Empty(t, clearanceOperation(http.MethodGet, "/health/*"))
}
