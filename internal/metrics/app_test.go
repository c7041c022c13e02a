package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/require"

	"github.com/ccdaniele/name-finder/internal/observability"
)

func withCollector(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()
	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = original })
	return collector
}

func TestRecordAPIRequestOutcome(t *testing.T) {
	collector := withCollector(t)

	RecordAPIRequest("validate", http.StatusOK, time.Millisecond)
	RecordAPIRequest("start_run", http.StatusUnprocessableEntity, time.Millisecond)
	RecordAPIRequest("replace_row", http.StatusBadGateway, time.Millisecond)

	calls := collector.GetMetricsByName(APIRequestsTotal)
	require.Len(t, calls, 3)
	require.Equal(t, "ok", calls[0].Tags["outcome"])
	require.Equal(t, "rejected", calls[1].Tags["outcome"])
	require.Equal(t, "failed", calls[2].Tags["outcome"])
	require.Equal(t, "replace_row", calls[2].Tags["operation"])
	require.Equal(t, 3, collector.CountMetricsByName(APIRequestLatency))
}

func TestRecordErrorUsesEndpointPattern(t *testing.T) {
	collector := withCollector(t)

	RecordError("NOT_FOUND", http.StatusNotFound, "/v1/runs/{id}")

	calls := collector.GetMetricsByName(ErrorsTotal)
	require.Len(t, calls, 1)
	require.Equal(t, "/v1/runs/{id}", calls[0].Tags["endpoint"])
	require.Equal(t, "404", calls[0].Tags["http_status"])
}

func TestRecordersWithoutTelemetry(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = original })

	RecordAPIRequest("validate", http.StatusOK, time.Millisecond)
	RecordError("INTERNAL_ERROR", http.StatusInternalServerError, "/v1/validate")
	RecordPanic()
	RecordCheck("domain", "pass", time.Millisecond)
}
