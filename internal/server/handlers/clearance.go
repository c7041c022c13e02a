package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/core/engine"
	apperrors "github.com/ccdaniele/name-finder/internal/errors"
	"github.com/ccdaniele/name-finder/internal/generator"
	"github.com/ccdaniele/name-finder/internal/observability"
	"github.com/ccdaniele/name-finder/internal/output"
)

const (
	maxRequestBytes = 1 << 20
	maxLiveRuns     = 64
	maxRunCount     = 50
)

var respondWithError = apperrors.RespondWithError

// ProfileAnalyzer turns a free-text description into a preference profile.
type ProfileAnalyzer interface {
	Analyze(ctx context.Context, description, document string) (core.PreferenceSummary, error)
}

// RunStore persists run snapshots.
type RunStore interface {
	SaveRun(ctx context.Context, industry string, run core.RunResult) error
	GetRun(ctx context.Context, id string) (*core.RunResult, error)
}

// Clearance serves the name validation API. Runs started through the API stay
// live in memory so single rows can be replaced; older runs are read from the
// store.
type Clearance struct {
	Validator engine.Validator
	Runner    *engine.Runner
	Replacer  *engine.RowReplacer
	Analyzer  ProfileAnalyzer
	Runs      RunStore

	mu    sync.Mutex
	live  map[string]*engine.Run
	order []string
}

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	Name                    string                       `json:"name"`
	Rationale               string                       `json:"rationale,omitempty"`
	DistinctivenessCategory core.DistinctivenessCategory `json:"distinctiveness_category,omitempty"`
	Profile                 core.PreferenceSummary       `json:"profile"`
}

// OutcomeResponse reports the verdict on one name.
type OutcomeResponse struct {
	Passed    bool                `json:"passed"`
	Validated *core.ValidatedName `json:"validated,omitempty"`
	Failed    *core.FailedName    `json:"failed,omitempty"`
}

// RunRequest is the body of POST /v1/runs. Either Profile or Description is
// required; a description is analyzed into a profile first.
type RunRequest struct {
	Description   string                  `json:"description,omitempty"`
	Profile       *core.PreferenceSummary `json:"profile,omitempty"`
	Insights      string                  `json:"insights,omitempty"`
	Count         int                     `json:"count"`
	ExcludedNames []string                `json:"excluded_names,omitempty"`
}

// ReplaceRequest is the body of POST /v1/runs/{id}/replace.
type ReplaceRequest struct {
	Name string `json:"name"`
}

// ReplaceResponse carries the replacement verdict and the updated run.
type ReplaceResponse struct {
	Replaced    string          `json:"replaced"`
	Replacement OutcomeResponse `json:"replacement"`
	Run         core.RunResult  `json:"run"`
}

// ExportRequest is the body of POST /v1/export/csv.
type ExportRequest struct {
	Passed []core.ValidatedName `json:"passed"`
}

// Validate runs one name through the clearance pipeline.
func (c *Clearance) Validate(w http.ResponseWriter, r *http.Request) {
	if c.Validator == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("validation is not configured"))
		return
	}

	var req ValidateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("name is required"))
		return
	}
	category, err := core.ParseDistinctivenessCategory(string(req.DistinctivenessCategory))
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	outcome, err := c.Validator.Validate(r.Context(), core.GeneratedName{
		Name:                    name,
		Rationale:               req.Rationale,
		DistinctivenessCategory: category,
	}, req.Profile, nil)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcomeResponse(outcome))
}

// StartRun generates and validates a batch of names. The request blocks
// until the run finishes or the client goes away.
func (c *Clearance) StartRun(w http.ResponseWriter, r *http.Request) {
	if c.Runner == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("name generation is not configured"))
		return
	}

	var req RunRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Count <= 0 || req.Count > maxRunCount {
		respondWithError(w, r, apperrors.NewInvalidInputError(fmt.Sprintf("count must be between 1 and %d", maxRunCount)))
		return
	}

	ctx := r.Context()
	var profile core.PreferenceSummary
	switch {
	case req.Profile != nil:
		profile = *req.Profile
	case strings.TrimSpace(req.Description) != "":
		if c.Analyzer == nil {
			respondWithError(w, r, apperrors.NewServiceUnavailableError("preference analysis is not configured"))
			return
		}
		analyzed, err := c.Analyzer.Analyze(ctx, req.Description, "")
		if err != nil {
			respondWithError(w, r, err)
			return
		}
		profile = analyzed
	default:
		respondWithError(w, r, apperrors.NewInvalidInputError("profile or description is required"))
		return
	}

	run, err := c.Runner.Run(ctx, engine.RunRequest{
		Profile:       profile,
		Insights:      req.Insights,
		Count:         req.Count,
		ExcludedNames: req.ExcludedNames,
	})
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	c.remember(run)
	snapshot := run.Snapshot()
	c.persist(ctx, profile.Industry, snapshot)
	writeJSON(w, http.StatusCreated, snapshot)
}

// GetRun returns a run snapshot by id.
func (c *Clearance) GetRun(w http.ResponseWriter, r *http.Request) {
	result, ok := c.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ReplaceRow swaps one name of a live run for a freshly validated candidate.
func (c *Clearance) ReplaceRow(w http.ResponseWriter, r *http.Request) {
	if c.Replacer == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("replacement is not configured"))
		return
	}

	id := chi.URLParam(r, "id")
	run := c.liveRun(id)
	if run == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("run is not active: "+id))
		return
	}

	var req ReplaceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("name is required"))
		return
	}

	outcome, err := c.Replacer.Replace(r.Context(), run, name)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	snapshot := run.Snapshot()
	c.persist(r.Context(), run.Profile().Industry, snapshot)
	writeJSON(w, http.StatusOK, ReplaceResponse{
		Replaced:    name,
		Replacement: outcomeResponse(outcome),
		Run:         snapshot,
	})
}

// ExportRun renders a run in the format named by the format query parameter.
func (c *Clearance) ExportRun(w http.ResponseWriter, r *http.Request) {
	format, err := output.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}
	result, ok := c.lookup(w, r)
	if !ok {
		return
	}

	rendered, err := output.NewFormatter(format).FormatRun(result)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, rendered)
}

// ExportCSV renders the posted names as CSV.
func (c *Clearance) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !decodeBody(w, r, &req) {
		return
	}
	w.Header().Set("Content-Type", contentType(output.FormatCSV))
	w.Header().Set("Content-Disposition", `attachment; filename="names.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, output.ExportCSV(req.Passed))
}

func (c *Clearance) lookup(w http.ResponseWriter, r *http.Request) (*core.RunResult, bool) {
	id := chi.URLParam(r, "id")
	if run := c.liveRun(id); run != nil {
		snapshot := run.Snapshot()
		return &snapshot, true
	}
	if c.Runs != nil {
		result, err := c.Runs.GetRun(r.Context(), id)
		if err != nil {
			respondWithError(w, r, err)
			return nil, false
		}
		if result != nil {
			return result, true
		}
	}
	respondWithError(w, r, apperrors.NewNotFoundError("run not found: "+id))
	return nil, false
}

func (c *Clearance) remember(run *engine.Run) {
	id := run.Snapshot().RunID
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == nil {
		c.live = make(map[string]*engine.Run)
	}
	if _, ok := c.live[id]; !ok {
		c.order = append(c.order, id)
	}
	c.live[id] = run
	for len(c.order) > maxLiveRuns {
		delete(c.live, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *Clearance) liveRun(id string) *engine.Run {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live[id]
}

func (c *Clearance) persist(ctx context.Context, industry string, result core.RunResult) {
	if c.Runs == nil {
		return
	}
	if err := c.Runs.SaveRun(context.WithoutCancel(ctx), industry, result); err != nil {
		if logger := observability.ServerLogger; logger != nil {
			logger.Warn("Failed to save run", zap.String("run_id", result.RunID), zap.Error(err))
		}
	}
}

func outcomeResponse(o engine.Outcome) OutcomeResponse {
	return OutcomeResponse{Passed: o.Passed(), Validated: o.Validated, Failed: o.Failed}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, r, apperrors.NewInvalidInputError("request body too large"))
			return false
		}
		respondWithError(w, r, apperrors.NewInvalidInputError("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func contentType(format output.Format) string {
	switch format {
	case output.FormatJSON:
		return "application/json"
	case output.FormatCSV:
		return "text/csv; charset=utf-8"
	case output.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

var _ ProfileAnalyzer = (*generator.Analyzer)(nil)
