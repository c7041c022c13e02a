package engine

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/ccdaniele/name-finder/internal/core"
)

// validateAll validates a batch and records each outcome on the run. With
// Concurrency above one, candidates run on a bounded pool and outcomes are
// recorded in input order once the batch settles. It returns the batch's
// failures and whether ctx was cancelled before every candidate completed.
func (r *Runner) validateAll(ctx context.Context, run *Run, names []core.GeneratedName, round int) ([]core.FailedName, bool) {
	run.beginBatch(len(names), round)

	if r.Concurrency <= 1 {
		failed := make([]core.FailedName, 0)
		for _, generated := range names {
			if ctx.Err() != nil {
				return failed, true
			}
			outcome, err := r.validateOne(ctx, run, generated)
			if err != nil {
				return failed, true
			}
			run.record(outcome)
			if outcome.Failed != nil {
				failed = append(failed, *outcome.Failed)
			}
		}
		return failed, false
	}

	outcomes := make([]Outcome, len(names))
	done := make([]bool, len(names))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(r.Concurrency)
	for i, generated := range names {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			outcome, err := r.validateOne(ctx, run, generated)
			if err != nil {
				return
			}
			mu.Lock()
			outcomes[i] = outcome
			done[i] = true
			mu.Unlock()
		})
	}
	p.Wait()

	failed := make([]core.FailedName, 0)
	cancelled := false
	for i, outcome := range outcomes {
		if !done[i] {
			cancelled = true
			continue
		}
		run.record(outcome)
		if outcome.Failed != nil {
			failed = append(failed, *outcome.Failed)
		}
	}
	return failed, cancelled
}

func (r *Runner) validateOne(ctx context.Context, run *Run, generated core.GeneratedName) (Outcome, error) {
	r.emit(run, func() core.Progress { return run.stepProgress(generated.Name, core.StepWebSearch) })
	outcome, err := r.Validator.Validate(ctx, generated, run.profile, func(step core.ValidationStep) {
		r.emit(run, func() core.Progress { return run.stepProgress(generated.Name, step) })
	})
	if err != nil {
		return Outcome{}, err
	}
	r.emit(run, func() core.Progress { return run.completeProgress(generated.Name, outcome) })
	return outcome, nil
}

// emit applies a progress transition and delivers it while holding the run's
// emit lock, so OnProgress sees one event at a time in counter order even
// when pool workers report together.
func (r *Runner) emit(run *Run, next func() core.Progress) {
	run.emitMu.Lock()
	defer run.emitMu.Unlock()
	p := next()
	if r.OnProgress != nil {
		r.OnProgress(p)
	}
}

func (r *Run) beginBatch(size, round int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.TotalNames += size
	r.progress.ReplacementRound = round
}

func (r *Run) stepProgress(name string, step core.ValidationStep) core.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.CurrentName = name
	r.progress.CurrentStep = step
	return r.progress
}

func (r *Run) completeProgress(name string, o Outcome) core.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.CurrentName = name
	r.progress.CurrentStep = core.StepComplete
	r.progress.ProcessedCount++
	if o.Passed() {
		r.progress.PassedCount++
	} else {
		r.progress.FailedCount++
	}
	return r.progress
}
