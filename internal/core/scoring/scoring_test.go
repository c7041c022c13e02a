package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccdaniele/name-finder/internal/core"
)

type fixedAdjuster struct {
	adjustment Adjustment
	err        error
	seen       AdjustmentInput
}

func (f *fixedAdjuster) AdjustScore(ctx context.Context, input AdjustmentInput) (Adjustment, error) {
	f.seen = input
	return f.adjustment, f.err
}

func cleanInput(name string, category core.DistinctivenessCategory) Input {
	return Input{
		Name:      name,
		Category:  category,
		WebSearch: core.WebSearchResult{Passed: true, Score: 100, SimilarCompanies: []string{}},
		Trademark: core.TrademarkResult{Passed: true, Score: 100, RiskLevel: core.RiskLow},
	}
}

func TestDistinctivenessScore(t *testing.T) {
	require.Equal(t, 95, DistinctivenessScore(core.DistinctivenessFanciful))
	require.Equal(t, 85, DistinctivenessScore(core.DistinctivenessArbitrary))
	require.Equal(t, 70, DistinctivenessScore(core.DistinctivenessSuggestive))
	require.Equal(t, 30, DistinctivenessScore(core.DistinctivenessDescriptive))
	require.Equal(t, 0, DistinctivenessScore(core.DistinctivenessGeneric))
	require.Equal(t, 50, DistinctivenessScore("whimsical"))
}

func TestGradeFor(t *testing.T) {
	require.Equal(t, core.GradeA, GradeFor(85))
	require.Equal(t, core.GradeB, GradeFor(84))
	require.Equal(t, core.GradeB, GradeFor(70))
	require.Equal(t, core.GradeC, GradeFor(55))
	require.Equal(t, core.GradeD, GradeFor(40))
	require.Equal(t, core.GradeF, GradeFor(39))
}

func TestConflictRiskScore(t *testing.T) {
	tm := core.TrademarkResult{Conflicts: []core.TrademarkConflict{
		{SimilarityScore: 0.9, OverlappingClasses: true},
		{SimilarityScore: 0.75},
	}}
	// 100 - 30 - 36 - 20
	require.Equal(t, 14, ConflictRiskScore(tm))
	require.Equal(t, 100, ConflictRiskScore(core.TrademarkResult{}))
}

func TestRegistrabilityScore(t *testing.T) {
	web := core.WebSearchResult{}
	require.Equal(t, 100, RegistrabilityScore("Zenv", web, core.TrademarkResult{}))
	require.Equal(t, 95, RegistrabilityScore("Zenvox", web, core.TrademarkResult{}))
	require.Equal(t, 90, RegistrabilityScore("Zenvoxical", web, core.TrademarkResult{}))

	crowded := core.WebSearchResult{SimilarCompanies: []string{"a", "b", "c"}}
	tm := core.TrademarkResult{Conflicts: []core.TrademarkConflict{{}}}
	require.Equal(t, 55, RegistrabilityScore("Zenvox", crowded, tm))
}

func TestScoreClampsHigh(t *testing.T) {
	// algorithmic: 95*.25 + 100*.25 + 100*.20 + 100*.15 + 100*.15 = 98.75 -> 99
	in := cleanInput("Zenv", core.DistinctivenessFanciful)
	scorer := &Scorer{Adjuster: &fixedAdjuster{adjustment: Adjustment{Adjustment: 10, Reasoning: "Memorable."}}}

	score := scorer.Score(context.Background(), in)
	require.Equal(t, 100, score.Overall)
	require.Equal(t, core.GradeA, score.Grade)
	require.Equal(t, 10, score.AIAdjustment)
	require.Contains(t, score.Report, "Memorable.")
}

func TestScoreClampsLow(t *testing.T) {
	in := Input{
		Name:     "Generic Software Company",
		Category: core.DistinctivenessGeneric,
		WebSearch: core.WebSearchResult{
			Score:            0,
			SimilarCompanies: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		},
		Trademark: core.TrademarkResult{Score: 0, Conflicts: []core.TrademarkConflict{
			{SimilarityScore: 1, OverlappingClasses: true},
			{SimilarityScore: 1}, {SimilarityScore: 1}, {SimilarityScore: 1},
		}},
	}
	scorer := &Scorer{Adjuster: &fixedAdjuster{adjustment: Adjustment{Adjustment: -10}}}

	score := scorer.Score(context.Background(), in)
	require.Equal(t, 0, score.Overall)
	require.Equal(t, core.GradeF, score.Grade)
}

func TestScoreBoundsAdjustment(t *testing.T) {
	scorer := &Scorer{Adjuster: &fixedAdjuster{adjustment: Adjustment{Adjustment: -40}}}
	score := scorer.Score(context.Background(), cleanInput("Zenvox", core.DistinctivenessSuggestive))
	require.Equal(t, -10, score.AIAdjustment)
}

func TestScoreAdjusterFailure(t *testing.T) {
	adjuster := &fixedAdjuster{adjustment: Adjustment{Adjustment: 7, Reasoning: "ignored"}, err: errors.New("llm down")}
	scorer := &Scorer{Adjuster: adjuster}

	score := scorer.Score(context.Background(), cleanInput("Zenvox", core.DistinctivenessFanciful))
	require.Zero(t, score.AIAdjustment)
	require.NotContains(t, score.Report, "ignored")
	require.Equal(t, "Zenvox", adjuster.seen.Name)
}

func TestScoreZenvoxScenario(t *testing.T) {
	in := cleanInput("Zenvox", core.DistinctivenessFanciful)
	in.DomainAvailable = false
	adjuster := &fixedAdjuster{}

	score := (&Scorer{Adjuster: adjuster}).Score(context.Background(), in)
	require.Equal(t, 95, score.Breakdown.Distinctiveness)
	require.Equal(t, 100, score.Breakdown.ConflictRisk)
	require.GreaterOrEqual(t, score.Breakdown.Registrability, 85)
	require.Contains(t, []core.Grade{core.GradeA, core.GradeB}, score.Grade)
	require.False(t, adjuster.seen.DomainAvailable)
	require.Equal(t, score.Overall, adjuster.seen.AlgorithmicScore)
}

func TestReport(t *testing.T) {
	in := Input{
		Name:     "Zenvox",
		Category: core.DistinctivenessSuggestive,
		WebSearch: core.WebSearchResult{
			Score:            75,
			SimilarCompanies: []string{"Zenvox Labs"},
			AIAssessment:     "A small audio studio uses the name.",
		},
		Trademark: core.TrademarkResult{Score: 80, Conflicts: []core.TrademarkConflict{
			{RegisteredName: "ZENVOX", SimilarityScore: 0.8, OverlappingClasses: false},
		}},
	}

	score := (&Scorer{}).Score(context.Background(), in)
	require.True(t, strings.HasPrefix(score.Report, `"Zenvox" is a suggestive name, offering good inherent distinctiveness.`))
	require.Contains(t, score.Report, "Web search found 1 similar entity: Zenvox Labs. A small audio studio uses the name.")
	require.Contains(t, score.Report, `1 trademark conflict found. Most similar: "ZENVOX" (80% similarity).`)
	require.Contains(t, score.Report, "These do not appear to pose a blocking conflict but warrant review.")
	require.True(t, strings.HasSuffix(score.Report, "Overall grade: "+string(score.Grade)+"."))
}
