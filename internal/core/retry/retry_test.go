package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	delays []time.Duration
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func testConfig(r *recorder) Config {
	cfg := DefaultConfig()
	cfg.Sleep = r.sleep
	cfg.Jitter = func() time.Duration { return 0 }
	return cfg
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	rec := &recorder{}
	calls := 0
	err := Do(context.Background(), testConfig(rec), func(context.Context) error {
		calls++
		if calls < 3 {
			return WithStatus(503, errors.New("unavailable"))
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestDoReturnsLastErrorAfterBudget(t *testing.T) {
	rec := &recorder{}
	calls := 0
	err := Do(context.Background(), testConfig(rec), func(context.Context) error {
		calls++
		return WithStatus(429, errors.New("slow down"))
	})

	require.Error(t, err)
	require.Equal(t, 429, StatusOf(err))
	require.Equal(t, 4, calls)
	require.Len(t, rec.delays, 3)
}

func TestDoCapsDelay(t *testing.T) {
	rec := &recorder{}
	cfg := testConfig(rec)
	cfg.MaxRetries = 5
	cfg.Jitter = func() time.Duration { return 500 * time.Millisecond }

	_ = Do(context.Background(), cfg, func(context.Context) error {
		return errors.New("network")
	})

	require.Equal(t, []time.Duration{
		1500 * time.Millisecond,
		2500 * time.Millisecond,
		4500 * time.Millisecond,
		8500 * time.Millisecond,
		15 * time.Second,
	}, rec.delays)
}

func TestDoNonRetryableStatus(t *testing.T) {
	t.Run("FirstAttemptStillRetries", func(t *testing.T) {
		rec := &recorder{}
		calls := 0
		err := Do(context.Background(), testConfig(rec), func(context.Context) error {
			calls++
			return WithStatus(400, errors.New("bad request"))
		})
		require.Error(t, err)
		require.Equal(t, 2, calls)
		require.Len(t, rec.delays, 1)
	})

	t.Run("AfterRetryableStatus", func(t *testing.T) {
		rec := &recorder{}
		calls := 0
		err := Do(context.Background(), testConfig(rec), func(context.Context) error {
			calls++
			if calls == 1 {
				return WithStatus(502, errors.New("bad gateway"))
			}
			return WithStatus(404, errors.New("missing"))
		})
		require.Error(t, err)
		require.Equal(t, 404, StatusOf(err))
		require.Equal(t, 2, calls)
	})
}

func TestDoCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := DefaultConfig()
	cfg.Jitter = func() time.Duration { return 0 }
	cfg.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}

	opErr := errors.New("boom")
	err := Do(ctx, cfg, func(context.Context) error { return opErr })
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, err, opErr)
}

func TestDoValue(t *testing.T) {
	rec := &recorder{}
	calls := 0
	got, err := DoValue(context.Background(), testConfig(rec), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", WithStatus(500, nil)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", got)
}

func TestSleepContextHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := sleepContext(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)
}
