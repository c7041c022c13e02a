package checker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ccdaniele/name-finder/internal/core/engine"
	"github.com/ccdaniele/name-finder/internal/core/retry"
)

const maxErrorBody = 512

// requester carries the transport plumbing shared by the HTTP providers.
type requester struct {
	client   *http.Client
	limiter  *engine.RateLimiter
	endpoint string
	provider string
	retry    retry.Config
}

// fetchJSON sends the request built by newReq through the rate limiter and
// retry wrapper and decodes a 2xx JSON body into out.
func (r requester) fetchJSON(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error), out any) error {
	return retry.Do(ctx, r.retry, func(ctx context.Context) error {
		if err := r.limiter.Wait(ctx, r.endpoint); err != nil {
			if errors.Is(err, engine.ErrRateLimited) {
				return retry.WithStatus(http.StatusTooManyRequests, err)
			}
			return err
		}

		req, err := newReq(ctx)
		if err != nil {
			return err
		}

		client := r.client
		if client == nil {
			client = &http.Client{Timeout: 15 * time.Second}
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("%s request failed: %w", r.provider, err)
		}
		defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			if resp.StatusCode == http.StatusTooManyRequests {
				if wait := retryAfterHeader(resp); wait > 0 {
					_ = r.limiter.Record429(ctx, r.endpoint, wait)
				}
			}
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return retry.WithStatus(resp.StatusCode, fmt.Errorf("%s error: %d %s", r.provider, resp.StatusCode, strings.TrimSpace(string(body))))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", r.provider, err)
		}
		return nil
	})
}

func retryAfterHeader(resp *http.Response) time.Duration {
	if resp == nil || resp.Header == nil {
		return 0
	}

	value := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if parsed, err := http.ParseTime(value); err == nil {
		return time.Until(parsed)
	}
	return 0
}

func parseBaseURL(override, fallback string) *url.URL {
	if value := strings.TrimSpace(override); value != "" {
		if parsed, err := url.Parse(value); err == nil && parsed.Scheme != "" && parsed.Host != "" {
			return parsed
		}
	}
	parsed, _ := url.Parse(fallback)
	return parsed
}

func joinURL(base *url.URL, path string) string {
	return strings.TrimRight(base.String(), "/") + path
}
