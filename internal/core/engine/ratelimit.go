package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/ccdaniele/name-finder/internal/core"
)

// Provider endpoints tracked by the rate limiter.
const (
	EndpointSerper   = "google.serper.dev"
	EndpointRapidAPI = "uspto-trademark.p.rapidapi.com"
	EndpointGoDaddy  = "api.godaddy.com"
	EndpointRDAP     = "rdap.org"
)

// ErrRateLimited is returned when a wait would exceed MaxWait.
var ErrRateLimited = errors.New("rate limited")

// RateLimiter enforces per-endpoint rate limits.
type RateLimiter struct {
	Store  RateLimitStore
	Limits map[string]RateLimit
	Clock  func() time.Time
	Margin float64
	// MaxWait bounds how long Wait blocks before giving up with ErrRateLimited.
	MaxWait time.Duration
	// Sleep is replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error

	mu sync.Mutex
}

// RateLimit represents a rate limit window.
type RateLimit struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// RateLimitStore stores rate limit state.
type RateLimitStore interface {
	GetRateLimit(ctx context.Context, endpoint string) (*core.RateLimitState, error)
	UpdateRateLimit(ctx context.Context, endpoint string, state *core.RateLimitState) error
}

// DefaultLimits provides conservative defaults per endpoint.
var DefaultLimits = map[string]RateLimit{
	EndpointSerper:   {RequestsPerWindow: 50, WindowDuration: time.Minute},
	EndpointRapidAPI: {RequestsPerWindow: 10, WindowDuration: time.Minute},
	EndpointGoDaddy:  {RequestsPerWindow: 60, WindowDuration: time.Minute},
	EndpointRDAP:     {RequestsPerWindow: 30, WindowDuration: time.Minute},
}

// Allow checks if a request is allowed and returns wait duration if not.
func (r *RateLimiter) Allow(ctx context.Context, endpoint string) (bool, time.Duration, error) {
	if r == nil || r.Store == nil {
		return true, 0, nil
	}

	state, err := r.load(ctx, endpoint)
	if err != nil {
		return true, 0, err
	}

	now := r.now()
	if state.BackoffUntil != nil && now.Before(*state.BackoffUntil) {
		return false, state.BackoffUntil.Sub(now), nil
	}

	limit := r.getLimit(endpoint)
	windowEnd := state.WindowStart.Add(limit.WindowDuration)
	if now.After(windowEnd) {
		return true, 0, nil
	}

	if state.RequestCount >= limit.RequestsPerWindow {
		return false, windowEnd.Sub(now), nil
	}

	return true, 0, nil
}

// Record increments the request count for an endpoint, starting a new
// window when the previous one has elapsed.
func (r *RateLimiter) Record(ctx context.Context, endpoint string) error {
	if r == nil || r.Store == nil {
		return nil
	}

	state, err := r.load(ctx, endpoint)
	if err != nil {
		return err
	}

	now := r.now()
	if state.WindowStart.IsZero() || now.After(state.WindowStart.Add(r.getLimit(endpoint).WindowDuration)) {
		state.RequestCount = 0
		state.WindowStart = now
	}
	state.RequestCount++

	return r.Store.UpdateRateLimit(ctx, endpoint, state)
}

// Record429 applies a backoff window from a 429 response.
func (r *RateLimiter) Record429(ctx context.Context, endpoint string, retryAfter time.Duration) error {
	if r == nil || r.Store == nil {
		return nil
	}

	state, err := r.load(ctx, endpoint)
	if err != nil {
		return err
	}

	now := r.now()
	state.Last429At = &now
	if retryAfter > 0 {
		until := now.Add(retryAfter)
		state.BackoffUntil = &until
	}

	return r.Store.UpdateRateLimit(ctx, endpoint, state)
}

// Wait blocks until a request to endpoint is allowed and records it.
// Store errors do not block the request.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	if r == nil || r.Store == nil {
		return nil
	}

	var waited time.Duration
	for {
		r.mu.Lock()
		allowed, wait, err := r.Allow(ctx, endpoint)
		if err == nil && allowed {
			err = r.Record(ctx, endpoint)
		}
		r.mu.Unlock()

		if err != nil || allowed {
			return nil
		}

		maxWait := r.MaxWait
		if maxWait <= 0 {
			maxWait = 30 * time.Second
		}
		if waited+wait > maxWait {
			return fmt.Errorf("%s: %w (retry in %s)", endpoint, ErrRateLimited, wait.Round(time.Second))
		}

		sleep := r.Sleep
		if sleep == nil {
			sleep = sleepContext
		}
		if err := sleep(ctx, wait); err != nil {
			return err
		}
		waited += wait
	}
}

// ApplyOverrides merges per-endpoint request overrides (per minute).
func (r *RateLimiter) ApplyOverrides(overrides map[string]int) {
	if r == nil || len(overrides) == 0 {
		return
	}

	if r.Limits == nil {
		r.Limits = make(map[string]RateLimit, len(DefaultLimits))
		for key, limit := range DefaultLimits {
			r.Limits[key] = limit
		}
	}

	for endpoint, value := range overrides {
		endpoint = strings.TrimSpace(endpoint)
		if endpoint == "" || value <= 0 {
			continue
		}
		r.Limits[endpoint] = RateLimit{
			RequestsPerWindow: value,
			WindowDuration:    time.Minute,
		}
	}
}

// ApplySafetyMargin adjusts the effective request limits by a ratio (0-1].
func (r *RateLimiter) ApplySafetyMargin(margin float64) {
	if r == nil || margin <= 0 || margin > 1 {
		return
	}
	r.Margin = margin
}

func (r *RateLimiter) load(ctx context.Context, endpoint string) (*core.RateLimitState, error) {
	state, err := r.Store.GetRateLimit(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &core.RateLimitState{WindowStart: r.now()}
	}
	return state, nil
}

func (r *RateLimiter) getLimit(endpoint string) RateLimit {
	limits := r.Limits
	if limits == nil {
		limits = DefaultLimits
	}

	if limit, ok := limits[endpoint]; ok {
		return r.applyMargin(limit)
	}

	return r.applyMargin(RateLimit{RequestsPerWindow: 30, WindowDuration: time.Minute})
}

func (r *RateLimiter) now() time.Time {
	if r != nil && r.Clock != nil {
		return r.Clock()
	}
	return time.Now().UTC()
}

func (r *RateLimiter) applyMargin(limit RateLimit) RateLimit {
	if r == nil || r.Margin <= 0 || r.Margin > 1 {
		return limit
	}
	adjusted := int(math.Floor(float64(limit.RequestsPerWindow) * r.Margin))
	if adjusted < 1 {
		adjusted = 1
	}
	limit.RequestsPerWindow = adjusted
	return limit
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
