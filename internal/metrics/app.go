package metrics

import (
	"strconv"
	"time"

	"github.com/ccdaniele/name-finder/internal/observability"
)

// Clearance metrics following Prometheus conventions
const (
	ChecksTotal       = "namefinder_checks_total"
	CheckDuration     = "namefinder_check_duration_ms"
	DegradedTotal     = "namefinder_degraded_checks_total"
	CandidatesTotal   = "namefinder_candidates_total"
	ReplacementsTotal = "namefinder_replacements_total"
	RunsTotal         = "namefinder_runs_total"
	CompletionsTotal  = "namefinder_llm_completions_total"
	CompletionLatency = "namefinder_llm_completion_duration_ms"
	APIRequestsTotal  = "namefinder_api_requests_total"
	APIRequestLatency = "namefinder_api_request_duration_ms"
	ErrorsTotal       = "namefinder_errors_total"
	PanicsTotal       = "namefinder_panics_total"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
)

// RecordCheck records one clearance check and how long it took.
// Outcome is a short label such as pass, conflict, cached or degraded.
func RecordCheck(checkType string, outcome string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ChecksTotal, 1, map[string]string{
		"check":   checkType,
		"outcome": outcome,
	})
	_ = observability.TelemetrySystem.Histogram(CheckDuration, duration, map[string]string{
		"check": checkType,
	})
}

// RecordCompletion records one LLM completion by prompt and result code.
func RecordCompletion(slug string, provider string, code string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(CompletionsTotal, 1, map[string]string{
		"prompt":   slug,
		"provider": provider,
		"code":     code,
	})
	_ = observability.TelemetrySystem.Histogram(CompletionLatency, duration, map[string]string{
		"prompt": slug,
	})
}

// RecordDegraded records a check whose upstream failed and whose result came
// from its failure policy instead.
func RecordDegraded(checkType string, policy string, provider string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(DegradedTotal, 1, map[string]string{
			"check":    checkType,
			"policy":   policy,
			"provider": provider,
		})
	}
}

// RecordCandidate records the final outcome of a validated candidate.
func RecordCandidate(passed bool, failureStep string) {
	if observability.TelemetrySystem == nil {
		return
	}
	status := "passed"
	if !passed {
		status = "failed"
	}
	_ = observability.TelemetrySystem.Counter(CandidatesTotal, 1, map[string]string{
		"status": status,
		"step":   failureStep,
	})
}

// RecordReplacementRound records how many replacements a round asked for and received.
func RecordReplacementRound(round int, requested int, received int) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ReplacementsTotal, float64(received), map[string]string{
		"round":     strconv.Itoa(round),
		"requested": strconv.Itoa(requested),
	})
}

// RecordRun records a finished run by status (complete, short, cancelled, error).
func RecordRun(status string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(RunsTotal, 1, map[string]string{"status": status})
	}
}

// RecordAPIRequest records one clearance API call by operation and outcome.
// Outcome is ok, rejected (4xx) or failed (5xx).
func RecordAPIRequest(operation string, status int, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	outcome := "ok"
	switch {
	case status >= 500:
		outcome = "failed"
	case status >= 400:
		outcome = "rejected"
	}
	_ = observability.TelemetrySystem.Counter(APIRequestsTotal, 1, map[string]string{
		"operation": operation,
		"outcome":   outcome,
	})
	_ = observability.TelemetrySystem.Histogram(APIRequestLatency, duration, map[string]string{
		"operation": operation,
	})
}

// RecordError records an error response by code, status and route pattern.
func RecordError(code string, status int, endpoint string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ErrorsTotal, 1, map[string]string{
		"error_code":  code,
		"http_status": strconv.Itoa(status),
		"endpoint":    endpoint,
	})
}

// RecordPanic records a recovered handler panic.
func RecordPanic() {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(PanicsTotal, 1, nil)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
