// Package retry runs operations with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"
)

// Config controls the retry budget and backoff curve.
type Config struct {
	MaxRetries        int           `mapstructure:"max_retries"`
	BaseDelay         time.Duration `mapstructure:"base_delay"`
	MaxDelay          time.Duration `mapstructure:"max_delay"`
	RetryableStatuses []int         `mapstructure:"retryable_statuses"`

	// Sleep and Jitter are replaced in tests.
	Sleep  func(ctx context.Context, d time.Duration) error `mapstructure:"-"`
	Jitter func() time.Duration                              `mapstructure:"-"`
	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, delay time.Duration, err error) `mapstructure:"-"`
}

// DefaultConfig returns three retries between 1s and 15s on 429 and 5xx gateway errors.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          15 * time.Second,
		RetryableStatuses: []int{429, 500, 502, 503, 504},
	}
}

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// StatusError attaches an HTTP status to an error.
type StatusError struct {
	Status int
	Err    error
}

// WithStatus wraps err with an HTTP status.
func WithStatus(status int, err error) error {
	if err == nil {
		err = fmt.Errorf("http status %d", status)
	}
	return &StatusError{Status: status, Err: err}
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("http status %d", e.Status)
	}
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode returns the attached status.
func (e *StatusError) StatusCode() int { return e.Status }

// StatusOf extracts the HTTP status from err, or 0 when none is present.
func StatusOf(err error) int {
	var coder StatusCoder
	if errors.As(err, &coder) {
		return coder.StatusCode()
	}
	return 0
}

// Do runs op until it succeeds or the retry budget is spent.
//
// A non-retryable status stops immediately on any attempt after the first.
// Cancelling ctx during a backoff returns ctx.Err() joined with the last error.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that return a value.
func DoValue[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg = cfg.withDefaults()

	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		status := StatusOf(err)
		if status != 0 && attempt > 0 && !slices.Contains(cfg.RetryableStatuses, status) {
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			delay := cfg.delay(attempt)
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt+1, delay, err)
			}
			if sleepErr := cfg.Sleep(ctx, delay); sleepErr != nil {
				return zero, errors.Join(sleepErr, lastErr)
			}
		}
	}

	return zero, lastErr
}

func (c Config) delay(attempt int) time.Duration {
	d := c.BaseDelay*time.Duration(1<<attempt) + c.Jitter()
	if c.MaxDelay > 0 && d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

func (c Config) withDefaults() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryableStatuses == nil {
		c.RetryableStatuses = DefaultConfig().RetryableStatuses
	}
	if c.Sleep == nil {
		c.Sleep = sleepContext
	}
	if c.Jitter == nil {
		c.Jitter = func() time.Duration {
			return time.Duration(rand.Int64N(int64(time.Second)))
		}
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
