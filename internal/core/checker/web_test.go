package checker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWebScore(t *testing.T) {
	require.Equal(t, 100, WebScore(false, 0))
	require.Equal(t, 75, WebScore(false, 1))
	require.Equal(t, 50, WebScore(true, 0))
	require.Equal(t, 50, WebScore(true, 1))
	require.Equal(t, 25, WebScore(true, 3))
	require.Equal(t, 0, WebScore(false, 5))
}

func TestWebCheckerConflict(t *testing.T) {
	assessor := &stubAssessor{assessment: WebAssessment{
		HasConflict:         true,
		Assessment:          "Zenvox Inc sells developer tooling.",
		ConflictingEntities: []string{"Zenvox Inc"},
	}}
	checker := &WebChecker{Search: &stubSearch{results: "[1] Zenvox Inc"}, Assessor: assessor}

	result := checker.CheckWeb(context.Background(), "Zenvox", "software")
	require.False(t, result.Passed)
	require.Equal(t, 50, result.Score)
	require.Equal(t, "Zenvox Inc sells developer tooling.", result.Details)
	require.Equal(t, result.Details, result.AIAssessment)
	require.Equal(t, []string{"Zenvox Inc"}, result.SimilarCompanies)
	require.False(t, result.Unverified)
	require.Equal(t, "software", assessor.industry)
}

func TestWebCheckerFailOpen(t *testing.T) {
	checker := &WebChecker{Search: &stubSearch{err: errors.New("boom")}, Assessor: &stubAssessor{}}

	result := checker.CheckWeb(context.Background(), "Zenvox", "software")
	require.True(t, result.Passed)
	require.Equal(t, 100, result.Score)
	require.Equal(t, "Web search unavailable - skipped", result.Details)
	require.Equal(t, "Web search could not be completed. Proceeding with caution.", result.AIAssessment)
	require.True(t, result.Unverified)
}

func TestWebCheckerFailClosed(t *testing.T) {
	checker := &WebChecker{Assessor: &stubAssessor{}, Policy: FailClosed}

	result := checker.CheckWeb(context.Background(), "Zenvox", "software")
	require.False(t, result.Passed)
	require.Equal(t, 0, result.Score)
	require.True(t, result.Unverified)
}

func TestWebCheckerCachesVerifiedResults(t *testing.T) {
	cache := newMemoryCache()
	search := &stubSearch{results: "No results found."}
	checker := &WebChecker{
		Search:   search,
		Assessor: &stubAssessor{assessment: WebAssessment{Assessment: "Clear."}},
		Cache:    cache,
	}

	first := checker.CheckWeb(context.Background(), "Zenvox", "software")
	second := checker.CheckWeb(context.Background(), "zenvox", "software")
	require.Equal(t, first, second)
	require.Equal(t, 1, search.calls)

	// another industry is a separate entry
	checker.CheckWeb(context.Background(), "Zenvox", "fashion")
	require.Equal(t, 2, search.calls)
}

func TestWebCheckerDoesNotCacheDegradedResults(t *testing.T) {
	cache := newMemoryCache()
	checker := &WebChecker{Search: &stubSearch{err: errors.New("down")}, Assessor: &stubAssessor{}, Cache: cache}

	checker.CheckWeb(context.Background(), "Zenvox", "software")
	require.Zero(t, cache.writes)
}
