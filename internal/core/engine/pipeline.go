package engine

import (
	"context"
	"fmt"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/core/scoring"
	"github.com/ccdaniele/name-finder/internal/metrics"
)

// WebCheck reports whether businesses already use a name.
type WebCheck interface {
	CheckWeb(ctx context.Context, name, industry string) core.WebSearchResult
}

// DomainCheck reports domain availability across TLDs.
type DomainCheck interface {
	CheckDomain(ctx context.Context, name string, tlds []string) core.DomainResult
}

// TrademarkCheck reports registered marks that conflict with a name.
type TrademarkCheck interface {
	CheckTrademark(ctx context.Context, name string, classes []int) core.TrademarkResult
}

// Scorer computes the composite score of a surviving candidate.
type Scorer interface {
	Score(ctx context.Context, in scoring.Input) core.TrademarkabilityScore
}

// Validator runs one candidate through the clearance stages.
type Validator interface {
	Validate(ctx context.Context, generated core.GeneratedName, profile core.PreferenceSummary, onStep func(core.ValidationStep)) (Outcome, error)
}

// Outcome is the verdict on one candidate. Exactly one of Validated and
// Failed is set.
type Outcome struct {
	Validated *core.ValidatedName
	Failed    *core.FailedName
}

// Passed reports whether the candidate survived.
func (o Outcome) Passed() bool { return o.Validated != nil }

// Name returns the candidate name.
func (o Outcome) Name() string {
	if o.Validated != nil {
		return o.Validated.Generated.Name
	}
	if o.Failed != nil {
		return o.Failed.Generated.Name
	}
	return ""
}

// Pipeline validates candidates stage by stage: web search, domain,
// trademark, then scoring. A negative result halts the candidate only when
// the stage is allowed to fail.
type Pipeline struct {
	Web       WebCheck
	Domain    DomainCheck
	Trademark TrademarkCheck
	Scorer    Scorer
	Config    core.ValidationConfig
}

// Validate returns an error only when ctx is cancelled between stages.
func (p *Pipeline) Validate(ctx context.Context, generated core.GeneratedName, profile core.PreferenceSummary, onStep func(core.ValidationStep)) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	step := func(s core.ValidationStep) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if onStep != nil {
			onStep(s)
		}
		return nil
	}

	cfg := p.Config
	name := generated.Name
	result := core.ValidationResult{Name: name}

	web := skippedWeb()
	if cfg.WebSearch.Enabled {
		if err := step(core.StepWebSearch); err != nil {
			return Outcome{}, err
		}
		web = p.Web.CheckWeb(ctx, name, profile.Industry)
		result.WebSearch = &web
		if !web.Passed {
			if cfg.WebSearch.CanFail {
				return failed(generated, result, core.StepWebSearch,
					fmt.Sprintf("Web search found significant conflicts: %s", web.Details)), nil
			}
			web.Passed = true
		}
	}
	result.WebSearch = &web

	domain := skippedDomain()
	if cfg.Domain.Enabled {
		if err := step(core.StepDomain); err != nil {
			return Outcome{}, err
		}
		domain = p.Domain.CheckDomain(ctx, name, cfg.Domain.TLDs)
		result.Domain = &domain
		if !domain.Available && cfg.Domain.CanFail {
			return failed(generated, result, core.StepDomain,
				fmt.Sprintf("Domain %s is not available", domain.Domain)), nil
		}
	}
	result.Domain = &domain

	trademark := skippedTrademark()
	if cfg.Trademark.Enabled {
		if err := step(core.StepTrademark); err != nil {
			return Outcome{}, err
		}
		trademark = p.Trademark.CheckTrademark(ctx, name, profile.ClassNumbers())
		result.Trademark = &trademark
		if !trademark.Passed {
			if cfg.Trademark.CanFail {
				return failed(generated, result, core.StepTrademark, trademarkFailureReason(trademark)), nil
			}
			trademark.Passed = true
		}
	}
	result.Trademark = &trademark

	if err := step(core.StepScoring); err != nil {
		return Outcome{}, err
	}
	score := p.Scorer.Score(ctx, scoring.Input{
		Name:            name,
		Category:        generated.DistinctivenessCategory,
		WebSearch:       web,
		Trademark:       trademark,
		DomainAvailable: domain.Available,
	})
	result.Score = &score
	result.OverallPass = true
	result.HasWarnings = HasWarnings(result)

	metrics.RecordCandidate(true, "")
	return Outcome{Validated: &core.ValidatedName{Generated: generated, Validation: result}}, nil
}

// HasWarnings reports whether a passing candidate carries a sub-ideal or
// unverified check result.
func HasWarnings(r core.ValidationResult) bool {
	if w := r.WebSearch; w != nil && !w.Skipped && (w.Score < 100 || w.Unverified) {
		return true
	}
	if t := r.Trademark; t != nil && !t.Skipped && (t.RiskLevel != core.RiskLow || t.Unverified) {
		return true
	}
	if d := r.Domain; d != nil && !d.Skipped && !d.Available {
		return true
	}
	return false
}

func failed(generated core.GeneratedName, result core.ValidationResult, step core.ValidationStep, reason string) Outcome {
	result.OverallPass = false
	result.FailureReason = reason
	metrics.RecordCandidate(false, string(step))
	return Outcome{Failed: &core.FailedName{
		Generated:     generated,
		Validation:    result,
		FailureStep:   step,
		FailureReason: reason,
	}}
}

func trademarkFailureReason(tm core.TrademarkResult) string {
	if len(tm.Conflicts) == 0 {
		return "Severe trademark conflicts found"
	}
	top := tm.Conflicts[0]
	return fmt.Sprintf("Severe trademark conflict: \"%s\" (similarity: %.0f%%, class overlap)",
		top.RegisteredName, top.SimilarityScore*100)
}

func skippedWeb() core.WebSearchResult {
	return core.WebSearchResult{
		Passed:           true,
		Score:            100,
		Details:          "Skipped",
		SimilarCompanies: []string{},
		AIAssessment:     "Skipped",
		Skipped:          true,
	}
}

func skippedDomain() core.DomainResult {
	return core.DomainResult{Available: true, Source: core.DomainSourceUnknown, Skipped: true}
}

func skippedTrademark() core.TrademarkResult {
	return core.TrademarkResult{
		Passed:    true,
		Score:     100,
		Conflicts: []core.TrademarkConflict{},
		RiskLevel: core.RiskLow,
		Skipped:   true,
	}
}
