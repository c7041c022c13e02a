package checker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ccdaniele/name-finder/internal/core/engine"
	"github.com/ccdaniele/name-finder/internal/core/retry"
)

const defaultRapidAPIHost = "uspto-trademark.p.rapidapi.com"

// RapidAPIClient searches live USPTO registrations through the RapidAPI
// USPTO Trademark API.
type RapidAPIClient struct {
	Client  *http.Client
	APIKey  string
	Host    string
	BaseURL string
	Limiter *engine.RateLimiter
	Retry   retry.Config
}

type rapidAPIResponse struct {
	Count int               `json:"count"`
	Items []TrademarkRecord `json:"items"`
}

// SearchTrademarks returns the active registrations matching name.
func (c *RapidAPIClient) SearchTrademarks(ctx context.Context, name string) ([]TrademarkRecord, error) {
	if c == nil || strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("rapidapi: %w", ErrMissingCredentials)
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultRapidAPIHost
	}
	base := parseBaseURL(c.BaseURL, "https://"+host)
	target := joinURL(base, "/v1/trademarkSearch/"+url.PathEscape(name)+"/active")
	r := requester{client: c.Client, limiter: c.Limiter, endpoint: engine.EndpointRapidAPI, provider: "rapidapi", retry: c.Retry}

	var resp rapidAPIResponse
	err := r.fetchJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-RapidAPI-Key", c.APIKey)
		req.Header.Set("X-RapidAPI-Host", host)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}

	return resp.Items, nil
}
