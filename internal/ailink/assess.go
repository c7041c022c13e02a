package ailink

import (
	"context"
	"strconv"

	"github.com/ccdaniele/name-finder/internal/core/checker"
	"github.com/ccdaniele/name-finder/internal/core/scoring"
)

// Prompt slugs of the embedded prompt set.
const (
	SlugPreferenceAnalysis = "preference-analysis"
	SlugNameGeneration     = "name-generation"
	SlugNameReplacement    = "name-replacement"
	SlugWebAssessment      = "web-assessment"
	SlugScoreAdjustment    = "score-adjustment"
)

// Completer runs a structured completion. *Service implements it.
type Completer interface {
	Complete(ctx context.Context, slug string, vars map[string]string, out any) error
}

// WebAssessor judges search results with the web-assessment prompt.
type WebAssessor struct {
	LLM Completer
}

// AssessWeb implements checker.WebAssessor.
func (a *WebAssessor) AssessWeb(ctx context.Context, name, industry, searchResults string) (checker.WebAssessment, error) {
	var out checker.WebAssessment
	err := a.LLM.Complete(ctx, SlugWebAssessment, map[string]string{
		"name":           name,
		"industry":       industry,
		"search_results": searchResults,
	}, &out)
	if err != nil {
		return checker.WebAssessment{}, err
	}
	if out.ConflictingEntities == nil {
		out.ConflictingEntities = []string{}
	}
	return out, nil
}

// ScoreAdjuster asks for a qualitative nudge with the score-adjustment prompt.
type ScoreAdjuster struct {
	LLM Completer
}

// AdjustScore implements scoring.Adjuster. Bounds are enforced by the scorer.
func (a *ScoreAdjuster) AdjustScore(ctx context.Context, in scoring.AdjustmentInput) (scoring.Adjustment, error) {
	details := in.WebDetails
	if details == "" {
		details = "Not assessed"
	}
	var out scoring.Adjustment
	err := a.LLM.Complete(ctx, SlugScoreAdjustment, map[string]string{
		"name":              in.Name,
		"algorithmic_score": strconv.Itoa(in.AlgorithmicScore),
		"category":          string(in.Category),
		"conflicts":         strconv.Itoa(in.ConflictCount),
		"web_details":       details,
		"domain_available":  strconv.FormatBool(in.DomainAvailable),
	}, &out)
	return out, err
}

var (
	_ checker.WebAssessor = (*WebAssessor)(nil)
	_ scoring.Adjuster    = (*ScoreAdjuster)(nil)
	_ Completer           = (*Service)(nil)
)
