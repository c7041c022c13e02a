package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/metrics"
	"github.com/ccdaniele/name-finder/internal/observability"
)

// DefaultMaxRounds bounds the replacement rounds of a run.
const DefaultMaxRounds = 3

// UserReplacementReason is the feedback sent when a user replaces a row.
const UserReplacementReason = "User requested replacement"

var (
	// ErrNoCandidates is returned when the generator yields no usable names.
	ErrNoCandidates = errors.New("no candidate names generated")
	// ErrReplacementBusy is returned when a row replacement is already in flight.
	ErrReplacementBusy = errors.New("a replacement is already in progress")
	// ErrRowNotFound is returned when the name to replace is not part of the run.
	ErrRowNotFound = errors.New("name not found in run")
)

// Generator produces candidate names.
type Generator interface {
	Generate(ctx context.Context, req core.GenerateRequest) ([]core.GeneratedName, error)
}

// RunRequest describes a generation and validation run.
type RunRequest struct {
	Profile       core.PreferenceSummary
	Insights      string
	Count         int
	ExcludedNames []string
}

// Runner generates candidates, validates them, and refills rejected ones in
// bounded replacement rounds.
type Runner struct {
	Generator   Generator
	Validator   Validator
	MaxRounds   int
	Concurrency int
	// OnProgress receives stage transitions one at a time, including when
	// Concurrency is above one.
	OnProgress  func(core.Progress)
	NewID       func() string
}

// Run executes a full run. Only a failed initial generation is an error;
// cancellation returns the partial run marked Cancelled.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*Run, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Count <= 0 {
		return nil, fmt.Errorf("count must be positive")
	}

	run := newRun(r.newID(), req)
	logger := observability.Logger()

	names, err := r.Generator.Generate(ctx, core.GenerateRequest{
		Profile:       req.Profile,
		Insights:      req.Insights,
		Count:         req.Count,
		ExcludedNames: run.exclusions(),
	})
	if err != nil {
		metrics.RecordRun("error")
		return nil, fmt.Errorf("generate names: %w", err)
	}
	names = run.admit(names, req.Count)
	if len(names) == 0 {
		metrics.RecordRun("error")
		return nil, ErrNoCandidates
	}

	initialFailed, cancelled := r.validateAll(ctx, run, names, 0)

	var lastFailed []core.FailedName
	current := initialFailed
	maxRounds := r.maxRounds()
	for round := 1; !cancelled && len(current) > 0 && round <= maxRounds; round++ {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		feedback := make([]core.FailedFeedback, 0, len(current))
		for _, f := range current {
			feedback = append(feedback, core.FailedFeedback{Name: f.Generated.Name, Reason: f.FailureReason})
		}

		replacements, err := r.Generator.Generate(ctx, core.GenerateRequest{
			Profile:        req.Profile,
			Insights:       req.Insights,
			Count:          len(current),
			IsReplacement:  true,
			FailedFeedback: feedback,
			ExcludedNames:  run.exclusions(),
		})
		if err != nil {
			if ctx.Err() != nil {
				cancelled = true
				break
			}
			if logger != nil {
				logger.Warn("Replacement generation failed", zap.Int("round", round), zap.Error(err))
			}
			break
		}

		replacements = run.admit(replacements, len(current))
		run.setRounds(round)
		metrics.RecordReplacementRound(round, len(current), len(replacements))
		if logger != nil {
			logger.Info("Replacement round",
				zap.Int("round", round),
				zap.Int("requested", len(current)),
				zap.Int("received", len(replacements)))
		}
		if len(replacements) == 0 {
			lastFailed = nil
			break
		}

		var roundFailed []core.FailedName
		roundFailed, cancelled = r.validateAll(ctx, run, replacements, round)
		lastFailed = roundFailed
		current = roundFailed
	}

	run.finish(initialFailed, lastFailed, cancelled)
	if cancelled {
		metrics.RecordRun("cancelled")
	} else {
		metrics.RecordRun("completed")
	}
	return run, nil
}

func (r *Runner) maxRounds() int {
	if r.MaxRounds < 0 {
		return 0
	}
	if r.MaxRounds == 0 {
		return DefaultMaxRounds
	}
	return r.MaxRounds
}

func (r *Runner) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

// RowReplacer swaps a single name in a finished run for a fresh candidate.
// Only one replacement runs at a time.
type RowReplacer struct {
	Runner *Runner

	busy atomic.Bool
}

// Replace generates and validates one replacement for name. On any error the
// run keeps its original entry.
func (rr *RowReplacer) Replace(ctx context.Context, run *Run, name string) (Outcome, error) {
	if !rr.busy.CompareAndSwap(false, true) {
		return Outcome{}, ErrReplacementBusy
	}
	defer rr.busy.Store(false)

	if ctx == nil {
		ctx = context.Background()
	}
	if !run.contains(name) {
		return Outcome{}, fmt.Errorf("%q: %w", name, ErrRowNotFound)
	}

	names, err := rr.Runner.Generator.Generate(ctx, core.GenerateRequest{
		Profile:        run.profile,
		Insights:       run.insights,
		Count:          1,
		IsReplacement:  true,
		FailedFeedback: []core.FailedFeedback{{Name: name, Reason: UserReplacementReason}},
		ExcludedNames:  run.exclusions(),
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("generate replacement: %w", err)
	}
	names = run.admit(names, 1)
	if len(names) == 0 {
		return Outcome{}, ErrNoCandidates
	}

	outcome, err := rr.Runner.Validator.Validate(ctx, names[0], run.profile, nil)
	if err != nil {
		return Outcome{}, err
	}

	run.swap(name, outcome)
	return outcome, nil
}

// Run holds the mutable state of a run. Readers take snapshots.
type Run struct {
	mu       sync.RWMutex
	emitMu   sync.Mutex
	result   core.RunResult
	profile  core.PreferenceSummary
	insights string
	excluded []string
	seen     map[string]struct{}
	order    []string
	progress core.Progress
}

func newRun(id string, req RunRequest) *Run {
	run := &Run{
		result: core.RunResult{
			RunID:     id,
			Passed:    []core.ValidatedName{},
			Failed:    []core.FailedName{},
			Requested: req.Count,
		},
		profile:  req.Profile,
		insights: req.Insights,
		seen:     make(map[string]struct{}),
	}
	for _, name := range req.ExcludedNames {
		if key := nameKey(name); key != "" {
			if _, ok := run.seen[key]; !ok {
				run.seen[key] = struct{}{}
				run.excluded = append(run.excluded, strings.TrimSpace(name))
			}
		}
	}
	return run
}

// Snapshot returns a copy of the current result.
func (r *Run) Snapshot() core.RunResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.result
	out.Passed = append([]core.ValidatedName(nil), r.result.Passed...)
	out.Failed = append([]core.FailedName(nil), r.result.Failed...)
	return out
}

// Profile returns the preference profile the run was generated for.
func (r *Run) Profile() core.PreferenceSummary {
	return r.profile
}

// SeenNames returns every name generated during the run, in order.
func (r *Run) SeenNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Run) exclusions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.excluded)+len(r.order))
	out = append(out, r.order...)
	out = append(out, r.excluded...)
	return out
}

// admit drops blank, excluded and repeated names, caps the batch at limit,
// and records the survivors as seen.
func (r *Run) admit(names []core.GeneratedName, limit int) []core.GeneratedName {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.GeneratedName, 0, len(names))
	for _, n := range names {
		if len(out) == limit {
			break
		}
		key := nameKey(n.Name)
		if key == "" {
			continue
		}
		if _, ok := r.seen[key]; ok {
			continue
		}
		r.seen[key] = struct{}{}
		r.order = append(r.order, n.Name)
		out = append(out, n)
	}
	return out
}

func (r *Run) record(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.Validated != nil {
		r.result.Passed = append(r.result.Passed, *o.Validated)
	} else if o.Failed != nil {
		r.result.Failed = append(r.result.Failed, *o.Failed)
	}
}

func (r *Run) setRounds(round int) {
	r.mu.Lock()
	r.result.Rounds = round
	r.mu.Unlock()
}

// finish keeps the initial failures plus the last round's failures.
func (r *Run) finish(initial, last []core.FailedName, cancelled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	failed := make([]core.FailedName, 0, len(initial)+len(last))
	failed = append(failed, initial...)
	failed = append(failed, last...)
	r.result.Failed = failed
	r.result.Cancelled = cancelled
}

func (r *Run) contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.result.Passed {
		if v.Generated.Name == name {
			return true
		}
	}
	for _, f := range r.result.Failed {
		if f.Generated.Name == name {
			return true
		}
	}
	return false
}

// swap removes every entry named old and appends the replacement to the
// list matching its verdict.
func (r *Run) swap(old string, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	passed := r.result.Passed[:0:0]
	for _, v := range r.result.Passed {
		if v.Generated.Name != old {
			passed = append(passed, v)
		}
	}
	failed := r.result.Failed[:0:0]
	for _, f := range r.result.Failed {
		if f.Generated.Name != old {
			failed = append(failed, f)
		}
	}

	if o.Validated != nil {
		passed = append(passed, *o.Validated)
	} else if o.Failed != nil {
		failed = append(failed, *o.Failed)
	}
	r.result.Passed = passed
	r.result.Failed = failed
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
