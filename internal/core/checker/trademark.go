package checker

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/core/similarity"
	"github.com/ccdaniele/name-finder/internal/metrics"
)

const (
	conflictThreshold        = 0.7
	overlapConflictThreshold = 0.5
	blockingThreshold        = 0.85
)

var classSeparator = regexp.MustCompile(`[,;\s]+`)

// TrademarkChecker compares a name against registered marks.
type TrademarkChecker struct {
	Provider    TrademarkProvider
	Cache       ResultCache
	CachePolicy CachePolicy
	Policy      FailurePolicy
}

// CheckTrademark searches registrations for name and evaluates each hit
// against the applicant's classes.
func (c *TrademarkChecker) CheckTrademark(ctx context.Context, name string, classes []int) core.TrademarkResult {
	start := time.Now()
	variant := classVariant(classes)

	var cached core.TrademarkResult
	if lookupCache(ctx, c.Cache, name, core.CheckTypeTrademark, variant, &cached) {
		metrics.RecordCheck(string(core.CheckTypeTrademark), "cached", time.Since(start))
		return cached
	}

	if c.Provider == nil {
		logDegraded(core.CheckTypeTrademark, c.Policy, "trademark", name, ErrMissingCredentials)
		metrics.RecordCheck(string(core.CheckTypeTrademark), "degraded", time.Since(start))
		return c.degraded()
	}

	records, err := c.Provider.SearchTrademarks(ctx, name)
	if err != nil {
		logDegraded(core.CheckTypeTrademark, c.Policy, "rapidapi", name, err)
		metrics.RecordCheck(string(core.CheckTypeTrademark), "degraded", time.Since(start))
		return c.degraded()
	}

	result := EvaluateTrademarks(name, classes, records)
	storeCache(ctx, c.Cache, c.CachePolicy, name, core.CheckTypeTrademark, variant, result.Passed, result)
	metrics.RecordCheck(string(core.CheckTypeTrademark), outcome(result.Passed), time.Since(start))
	return result
}

func (c *TrademarkChecker) degraded() core.TrademarkResult {
	if c.Policy == FailClosed {
		return core.TrademarkResult{
			Passed:     false,
			Score:      0,
			Conflicts:  []core.TrademarkConflict{},
			RiskLevel:  core.RiskHigh,
			Unverified: true,
		}
	}
	return core.TrademarkResult{
		Passed:     true,
		Score:      100,
		Conflicts:  []core.TrademarkConflict{},
		RiskLevel:  core.RiskLow,
		Unverified: true,
	}
}

// EvaluateTrademarks applies the conflict and blocking rules to raw records.
func EvaluateTrademarks(name string, classes []int, records []TrademarkRecord) core.TrademarkResult {
	wanted := make(map[int]struct{}, len(classes))
	for _, c := range classes {
		wanted[c] = struct{}{}
	}

	conflicts := make([]core.TrademarkConflict, 0)
	blocking := false
	for _, record := range records {
		score := similarity.Combined(name, record.Keyword)
		recordClasses := ParseClassCodes(record.Code)
		overlap := false
		for _, rc := range recordClasses {
			if _, ok := wanted[rc]; ok {
				overlap = true
				break
			}
		}

		if score > conflictThreshold || (score > overlapConflictThreshold && overlap) {
			conflicts = append(conflicts, core.TrademarkConflict{
				RegisteredName:     record.Keyword,
				SerialNumber:       record.SerialNumber,
				Status:             recordStatus(record),
				SimilarityScore:    score,
				OverlappingClasses: overlap,
				ClassNumbers:       recordClasses,
			})
			if score > blockingThreshold && overlap {
				blocking = true
			}
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].SimilarityScore > conflicts[j].SimilarityScore
	})

	risk := core.RiskLow
	switch {
	case blocking:
		risk = core.RiskHigh
	case len(conflicts) > 0:
		risk = core.RiskMedium
	}

	score := 100 - 20*len(conflicts)
	if blocking {
		score -= 30
	}

	return core.TrademarkResult{
		Passed:    !blocking,
		Score:     clamp(score),
		Conflicts: conflicts,
		RiskLevel: risk,
	}
}

// ParseClassCodes extracts Nice class numbers from a provider code field.
func ParseClassCodes(code string) []int {
	out := []int{}
	for _, part := range classSeparator.Split(strings.TrimSpace(code), -1) {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func recordStatus(r TrademarkRecord) string {
	if s := strings.TrimSpace(r.StatusLabel); s != "" {
		return s
	}
	if s := strings.TrimSpace(r.StatusCode); s != "" {
		return s
	}
	return "unknown"
}

func classVariant(classes []int) string {
	sorted := append([]int(nil), classes...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
