package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccdaniele/name-finder/internal/core"
)

type memoryRateStore struct {
	state map[string]*core.RateLimitState
}

func (m *memoryRateStore) GetRateLimit(ctx context.Context, endpoint string) (*core.RateLimitState, error) {
	if m.state == nil {
		return nil, nil
	}
	if val, ok := m.state[endpoint]; ok {
		return val, nil
	}
	return nil, nil
}

func (m *memoryRateStore) UpdateRateLimit(ctx context.Context, endpoint string, state *core.RateLimitState) error {
	if m.state == nil {
		m.state = make(map[string]*core.RateLimitState)
	}
	m.state[endpoint] = state
	return nil
}

func TestRateLimiterWindow(t *testing.T) {
	store := &memoryRateStore{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := &RateLimiter{
		Store: store,
		Limits: map[string]RateLimit{
			EndpointRDAP: {RequestsPerWindow: 1, WindowDuration: time.Minute},
		},
		Clock: func() time.Time { return clock },
	}

	allowed, _, err := limiter.Allow(context.Background(), EndpointRDAP)
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, limiter.Record(context.Background(), EndpointRDAP))

	allowed, wait, err := limiter.Allow(context.Background(), EndpointRDAP)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, time.Minute, wait)

	clock = clock.Add(61 * time.Second)
	allowed, _, err = limiter.Allow(context.Background(), EndpointRDAP)
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, limiter.Record(context.Background(), EndpointRDAP))
	require.Equal(t, 1, store.state[EndpointRDAP].RequestCount)
}

func TestRateLimiterBackoff(t *testing.T) {
	store := &memoryRateStore{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := &RateLimiter{
		Store: store,
		Clock: func() time.Time { return now },
	}

	require.NoError(t, limiter.Record429(context.Background(), EndpointSerper, 30*time.Second))

	allowed, wait, err := limiter.Allow(context.Background(), EndpointSerper)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, 30*time.Second, wait)
}

func TestRateLimiterMargin(t *testing.T) {
	limiter := &RateLimiter{
		Store: &memoryRateStore{},
		Limits: map[string]RateLimit{
			EndpointGoDaddy: {RequestsPerWindow: 10, WindowDuration: time.Minute},
		},
	}

	limiter.ApplySafetyMargin(0.9)
	require.Equal(t, 9, limiter.getLimit(EndpointGoDaddy).RequestsPerWindow)

	limiter.ApplySafetyMargin(1.5)
	require.Equal(t, 0.9, limiter.Margin)
}

func TestRateLimiterOverrides(t *testing.T) {
	limiter := &RateLimiter{}
	limiter.ApplyOverrides(map[string]int{EndpointRapidAPI: 2, " ": 5, EndpointSerper: 0})

	require.Equal(t, 2, limiter.getLimit(EndpointRapidAPI).RequestsPerWindow)
	require.Equal(t, DefaultLimits[EndpointSerper], limiter.getLimit(EndpointSerper))
}

func TestRateLimiterWait(t *testing.T) {
	t.Run("SleepsUntilWindowOpens", func(t *testing.T) {
		clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		var slept []time.Duration
		limiter := &RateLimiter{
			Store:  &memoryRateStore{},
			Limits: map[string]RateLimit{EndpointRapidAPI: {RequestsPerWindow: 1, WindowDuration: 10 * time.Second}},
			Clock:  func() time.Time { return clock },
			Sleep: func(_ context.Context, d time.Duration) error {
				slept = append(slept, d)
				clock = clock.Add(d + time.Millisecond)
				return nil
			},
		}

		require.NoError(t, limiter.Wait(context.Background(), EndpointRapidAPI))
		require.NoError(t, limiter.Wait(context.Background(), EndpointRapidAPI))
		require.Equal(t, []time.Duration{10 * time.Second}, slept)
	})

	t.Run("GivesUpBeyondMaxWait", func(t *testing.T) {
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		limiter := &RateLimiter{
			Store:   &memoryRateStore{},
			Clock:   func() time.Time { return now },
			MaxWait: time.Second,
		}
		require.NoError(t, limiter.Record429(context.Background(), EndpointSerper, time.Minute))

		err := limiter.Wait(context.Background(), EndpointSerper)
		require.True(t, errors.Is(err, ErrRateLimited))
	})

	t.Run("NilLimiterAllows", func(t *testing.T) {
		var limiter *RateLimiter
		require.NoError(t, limiter.Wait(context.Background(), EndpointSerper))
	})
}
