package checker

import (
	"context"
	"time"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/metrics"
)

const (
	webUnavailableDetails    = "Web search unavailable - skipped"
	webUnavailableAssessment = "Web search could not be completed. Proceeding with caution."
)

// WebChecker looks for businesses already using a name. It searches the web
// and asks an assessor whether any result is a meaningful conflict.
type WebChecker struct {
	Search      SearchProvider
	Assessor    WebAssessor
	Cache       ResultCache
	CachePolicy CachePolicy
	Policy      FailurePolicy
}

// CheckWeb never returns an error. Upstream failures resolve through the
// checker's failure policy.
func (c *WebChecker) CheckWeb(ctx context.Context, name, industry string) core.WebSearchResult {
	start := time.Now()

	var cached core.WebSearchResult
	if lookupCache(ctx, c.Cache, name, core.CheckTypeWebSearch, industry, &cached) {
		metrics.RecordCheck(string(core.CheckTypeWebSearch), "cached", time.Since(start))
		return cached
	}

	result, provider, err := c.check(ctx, name, industry)
	if err != nil {
		logDegraded(core.CheckTypeWebSearch, c.Policy, provider, name, err)
		metrics.RecordCheck(string(core.CheckTypeWebSearch), "degraded", time.Since(start))
		return c.degraded()
	}

	storeCache(ctx, c.Cache, c.CachePolicy, name, core.CheckTypeWebSearch, industry, result.Passed, result)
	metrics.RecordCheck(string(core.CheckTypeWebSearch), outcome(result.Passed), time.Since(start))
	return result
}

func (c *WebChecker) check(ctx context.Context, name, industry string) (core.WebSearchResult, string, error) {
	if c.Search == nil {
		return core.WebSearchResult{}, "search", ErrMissingCredentials
	}
	results, err := c.Search.Search(ctx, name)
	if err != nil {
		return core.WebSearchResult{}, "search", err
	}
	if c.Assessor == nil {
		return core.WebSearchResult{}, "assessor", ErrMissingCredentials
	}
	assessment, err := c.Assessor.AssessWeb(ctx, name, industry, results)
	if err != nil {
		return core.WebSearchResult{}, "assessor", err
	}

	entities := assessment.ConflictingEntities
	if entities == nil {
		entities = []string{}
	}
	return core.WebSearchResult{
		Passed:           !assessment.HasConflict,
		Score:            WebScore(assessment.HasConflict, len(entities)),
		Details:          assessment.Assessment,
		SimilarCompanies: entities,
		AIAssessment:     assessment.Assessment,
	}, "", nil
}

func (c *WebChecker) degraded() core.WebSearchResult {
	if c.Policy == FailClosed {
		return core.WebSearchResult{
			Passed:           false,
			Score:            0,
			Details:          webUnavailableDetails,
			SimilarCompanies: []string{},
			AIAssessment:     webUnavailableAssessment,
			Unverified:       true,
		}
	}
	return core.WebSearchResult{
		Passed:           true,
		Score:            100,
		Details:          webUnavailableDetails,
		SimilarCompanies: []string{},
		AIAssessment:     webUnavailableAssessment,
		Unverified:       true,
	}
}

// WebScore converts an assessment into a 0-100 score.
func WebScore(hasConflict bool, entities int) int {
	if !hasConflict && entities == 0 {
		return 100
	}
	score := 100 - 25*entities
	if score < 0 {
		score = 0
	}
	if hasConflict && score > 50 {
		score = 50
	}
	return score
}

func outcome(passed bool) string {
	if passed {
		return "pass"
	}
	return "conflict"
}
