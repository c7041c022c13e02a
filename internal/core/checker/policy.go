package checker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/metrics"
	"github.com/ccdaniele/name-finder/internal/observability"
)

// FailurePolicy decides what a checker reports when its upstream fails.
type FailurePolicy int

const (
	// FailOpen treats an upstream error as a pass and marks the result unverified.
	FailOpen FailurePolicy = iota
	// FailClosed treats an upstream error as a negative result.
	FailClosed
)

func (p FailurePolicy) String() string {
	if p == FailClosed {
		return "fail_closed"
	}
	return "fail_open"
}

// CachePolicy controls cache TTLs for check results.
type CachePolicy struct {
	PassTTL     time.Duration
	ConflictTTL time.Duration
}

func (p CachePolicy) ttl(passed bool) time.Duration {
	if passed {
		if p.PassTTL == 0 {
			return 24 * time.Hour
		}
		return p.PassTTL
	}
	if p.ConflictTTL == 0 {
		return 6 * time.Hour
	}
	return p.ConflictTTL
}

func lookupCache(ctx context.Context, cache ResultCache, name string, checkType core.CheckType, variant string, out any) bool {
	if cache == nil {
		return false
	}
	ok, err := cache.GetCachedCheck(ctx, name, checkType, variant, out)
	if err != nil {
		if logger := observability.Logger(); logger != nil {
			logger.Debug("Cache lookup failed", zap.String("check", string(checkType)), zap.Error(err))
		}
		return false
	}
	return ok
}

func storeCache(ctx context.Context, cache ResultCache, policy CachePolicy, name string, checkType core.CheckType, variant string, passed bool, value any) {
	if cache == nil {
		return
	}
	if err := cache.SetCachedCheck(ctx, name, checkType, variant, passed, value, policy.ttl(passed)); err != nil {
		if logger := observability.Logger(); logger != nil {
			logger.Debug("Cache write failed", zap.String("check", string(checkType)), zap.Error(err))
		}
	}
}

func logDegraded(checkType core.CheckType, policy FailurePolicy, provider, name string, err error) {
	metrics.RecordDegraded(string(checkType), policy.String(), provider)
	if logger := observability.Logger(); logger != nil {
		logger.Warn("Clearance check degraded",
			zap.String("check", string(checkType)),
			zap.String("policy", policy.String()),
			zap.String("provider", provider),
			zap.String("name", name),
			zap.Error(err))
	}
}
