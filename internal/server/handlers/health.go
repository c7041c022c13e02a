package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/fulmenhq/gofulmen/errors"

	apperrors "github.com/ccdaniele/name-finder/internal/errors"
	"github.com/ccdaniele/name-finder/internal/metrics"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
	statusTimeout   = "timeout"
)

// HealthResponse is the body of a passing health or readiness check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthChecker reports whether a dependency can serve clearance requests.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

type registeredChecker struct {
	checker  HealthChecker
	required bool
}

// HealthManager runs dependency checks for the health endpoints. A failing
// required checker (the run store) makes the service unhealthy; a failing
// optional one (telemetry) only degrades it.
type HealthManager struct {
	checkers map[string]registeredChecker
	version  string
}

func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		checkers: make(map[string]registeredChecker),
		version:  version,
	}
}

// RegisterChecker adds a required checker.
func (hm *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	hm.checkers[name] = registeredChecker{checker: checker, required: true}
}

// RegisterOptionalChecker adds a checker whose failure only degrades health.
func (hm *HealthManager) RegisterOptionalChecker(name string, checker HealthChecker) {
	hm.checkers[name] = registeredChecker{checker: checker}
}

func (hm *HealthManager) runHealthChecks(ctx context.Context) map[string]string {
	names := make([]string, 0, len(hm.checkers))
	for name := range hm.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			checks[name] = statusTimeout
			continue
		}
		entry := hm.checkers[name]
		start := time.Now()
		err := entry.checker.CheckHealth(ctx)
		metrics.RecordHealthCheck(name, err == nil, time.Since(start))
		switch {
		case err == nil:
			checks[name] = statusHealthy
		case entry.required:
			checks[name] = statusUnhealthy
		default:
			checks[name] = statusDegraded
		}
	}
	return checks
}

func (hm *HealthManager) determineOverallStatus(checks map[string]string) string {
	status := statusHealthy
	for _, result := range checks {
		switch result {
		case statusUnhealthy:
			return statusUnhealthy
		case statusDegraded, statusTimeout:
			status = statusDegraded
		}
	}
	return status
}

// HealthHandler serves GET /health with the version and every check result.
func (hm *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	hm.serveChecks(w, r, "", 5*time.Second, true)
}

// LivenessHandler serves GET /health/live. It reports the process only and
// never consults dependencies.
func (hm *HealthManager) LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessHandler serves GET /health/ready.
func (hm *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	hm.serveChecks(w, r, "ready", 5*time.Second, false)
}

// StartupHandler serves GET /health/startup.
func (hm *HealthManager) StartupHandler(w http.ResponseWriter, r *http.Request) {
	hm.serveChecks(w, r, "startup", 3*time.Second, false)
}

func (hm *HealthManager) serveChecks(w http.ResponseWriter, r *http.Request, endpoint string, timeout time.Duration, verbose bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	checks := hm.runHealthChecks(ctx)
	status := hm.determineOverallStatus(checks)
	if status == statusUnhealthy {
		respondWithError(w, r, unhealthyEnvelope(endpoint, checks))
		return
	}

	resp := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	if verbose {
		resp.Version = hm.version
	}
	writeHealth(w, resp)
}

func writeHealth(w http.ResponseWriter, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func unhealthyEnvelope(endpoint string, checks map[string]string) *errors.ErrorEnvelope {
	message := "health check failed"
	if endpoint != "" {
		message = endpoint + " check failed"
	}

	var failing []string
	for name, result := range checks {
		if result != statusHealthy {
			failing = append(failing, name)
		}
	}
	sort.Strings(failing)

	details := map[string]interface{}{"status": statusUnhealthy, "checks": checks}
	if endpoint != "" {
		details["endpoint"] = endpoint
	}
	envelope := apperrors.NewServiceUnavailableError(message).WithDetails(details)
	envelope, _ = envelope.WithContext(map[string]interface{}{"failing_checks": failing})
	return envelope
}
