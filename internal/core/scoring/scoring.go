// Package scoring computes the trademarkability score of a candidate that
// survived the clearance checks.
package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/observability"
)

// MaxAdjustment bounds the adjuster's nudge in either direction.
const MaxAdjustment = 10

var distinctivenessScores = map[core.DistinctivenessCategory]int{
	core.DistinctivenessFanciful:    95,
	core.DistinctivenessArbitrary:   85,
	core.DistinctivenessSuggestive:  70,
	core.DistinctivenessDescriptive: 30,
	core.DistinctivenessGeneric:     0,
}

// AdjustmentInput is what the adjuster sees about a candidate.
type AdjustmentInput struct {
	Name             string
	AlgorithmicScore int
	Category         core.DistinctivenessCategory
	ConflictCount    int
	WebDetails       string
	DomainAvailable  bool
}

// Adjustment is a bounded nudge to the algorithmic score.
type Adjustment struct {
	Adjustment int    `json:"adjustment"`
	Reasoning  string `json:"reasoning"`
}

// Adjuster proposes a qualitative correction to the algorithmic score.
type Adjuster interface {
	AdjustScore(ctx context.Context, input AdjustmentInput) (Adjustment, error)
}

// Scorer blends check results into a TrademarkabilityScore.
type Scorer struct {
	Adjuster Adjuster
}

// Input carries the check results for one candidate.
type Input struct {
	Name            string
	Category        core.DistinctivenessCategory
	WebSearch       core.WebSearchResult
	Trademark       core.TrademarkResult
	DomainAvailable bool
}

// Score never fails. An adjuster error leaves the adjustment at zero.
func (s *Scorer) Score(ctx context.Context, in Input) core.TrademarkabilityScore {
	distinctiveness := DistinctivenessScore(in.Category)
	conflictRisk := conflictRiskScore(in.Trademark)
	registrability := RegistrabilityScore(in.Name, in.WebSearch, in.Trademark)

	algorithmic := int(math.Round(
		float64(distinctiveness)*0.25 +
			conflictRisk*0.25 +
			float64(registrability)*0.20 +
			float64(in.WebSearch.Score)*0.15 +
			float64(in.Trademark.Score)*0.15,
	))

	adj := s.adjust(ctx, AdjustmentInput{
		Name:             in.Name,
		AlgorithmicScore: algorithmic,
		Category:         in.Category,
		ConflictCount:    len(in.Trademark.Conflicts),
		WebDetails:       in.WebSearch.Details,
		DomainAvailable:  in.DomainAvailable,
	})

	overall := clamp(algorithmic + adj.Adjustment)
	grade := GradeFor(overall)

	return core.TrademarkabilityScore{
		Overall: overall,
		Breakdown: core.ScoreBreakdown{
			Distinctiveness: distinctiveness,
			ConflictRisk:    int(math.Round(conflictRisk)),
			Registrability:  registrability,
			WebSearch:       in.WebSearch.Score,
			Trademark:       in.Trademark.Score,
		},
		AIAdjustment: adj.Adjustment,
		Grade:        grade,
		Report:       report(in, grade, distinctiveness, conflictRisk, adj.Reasoning),
	}
}

func (s *Scorer) adjust(ctx context.Context, input AdjustmentInput) Adjustment {
	if s == nil || s.Adjuster == nil {
		return Adjustment{}
	}
	adj, err := s.Adjuster.AdjustScore(ctx, input)
	if err != nil {
		if logger := observability.Logger(); logger != nil {
			logger.Warn("Score adjustment failed", zap.String("name", input.Name), zap.Error(err))
		}
		return Adjustment{}
	}
	adj.Adjustment = max(-MaxAdjustment, min(MaxAdjustment, adj.Adjustment))
	return adj
}

// DistinctivenessScore maps a category to its base score. Unknown categories score 50.
func DistinctivenessScore(category core.DistinctivenessCategory) int {
	if score, ok := distinctivenessScores[category]; ok {
		return score
	}
	return 50
}

// ConflictRiskScore penalizes conflict count, the closest similarity and any
// class overlap.
func ConflictRiskScore(tm core.TrademarkResult) int {
	return int(math.Round(conflictRiskScore(tm)))
}

func conflictRiskScore(tm core.TrademarkResult) float64 {
	maxSimilarity := 0.0
	overlap := false
	for _, c := range tm.Conflicts {
		maxSimilarity = math.Max(maxSimilarity, c.SimilarityScore)
		overlap = overlap || c.OverlappingClasses
	}

	score := 100 - 15*float64(len(tm.Conflicts)) - 40*maxSimilarity
	if overlap {
		score -= 20
	}
	return math.Max(0, math.Min(100, score))
}

// RegistrabilityScore favors short names without similar companies or conflicts.
func RegistrabilityScore(name string, web core.WebSearchResult, tm core.TrademarkResult) int {
	score := 80
	length := len([]rune(name))
	if length <= 8 {
		score += 5
	}
	if length <= 5 {
		score += 5
	}
	score -= 10 * len(web.SimilarCompanies)
	if len(tm.Conflicts) == 0 {
		score += 10
	}
	return clamp(score)
}

// GradeFor converts an overall score into a letter grade.
func GradeFor(overall int) core.Grade {
	switch {
	case overall >= 85:
		return core.GradeA
	case overall >= 70:
		return core.GradeB
	case overall >= 55:
		return core.GradeC
	case overall >= 40:
		return core.GradeD
	default:
		return core.GradeF
	}
}

func report(in Input, grade core.Grade, distinctiveness int, conflictRisk float64, reasoning string) string {
	parts := make([]string, 0, 6)

	switch {
	case distinctiveness >= 85:
		parts = append(parts, fmt.Sprintf("\"%s\" is a %s name, providing strong inherent trademark protection.", in.Name, in.Category))
	case distinctiveness >= 70:
		parts = append(parts, fmt.Sprintf("\"%s\" is a %s name, offering good inherent distinctiveness.", in.Name, in.Category))
	default:
		parts = append(parts, fmt.Sprintf("\"%s\" is a %s name with moderate inherent distinctiveness.", in.Name, in.Category))
	}

	if n := len(in.WebSearch.SimilarCompanies); n > 0 {
		noun := "entities"
		if n == 1 {
			noun = "entity"
		}
		parts = append(parts, fmt.Sprintf("Web search found %d similar %s: %s. %s",
			n, noun, strings.Join(in.WebSearch.SimilarCompanies, ", "), in.WebSearch.AIAssessment))
	} else {
		parts = append(parts, "No similar companies or brands were found in web search results.")
	}

	if n := len(in.Trademark.Conflicts); n > 0 {
		top := in.Trademark.Conflicts[0]
		plural := "s"
		if n == 1 {
			plural = ""
		}
		overlap := ""
		if top.OverlappingClasses {
			overlap = ", class overlap"
		}
		parts = append(parts, fmt.Sprintf("%d trademark conflict%s found. Most similar: \"%s\" (%.0f%% similarity%s).",
			n, plural, top.RegisteredName, top.SimilarityScore*100, overlap))
		if conflictRisk >= 50 {
			parts = append(parts, "These do not appear to pose a blocking conflict but warrant review.")
		} else {
			parts = append(parts, "These conflicts may require further professional analysis before proceeding.")
		}
	} else {
		parts = append(parts, "No significant trademark conflicts were identified.")
	}

	if reasoning != "" {
		parts = append(parts, reasoning)
	}
	parts = append(parts, fmt.Sprintf("Overall grade: %s.", grade))

	return strings.Join(parts, " ")
}

func clamp(v int) int {
	return max(0, min(100, v))
}
