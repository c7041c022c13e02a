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

const defaultGoDaddyURL = "https://api.godaddy.com"

// GoDaddyClient quotes domain availability and pricing from the GoDaddy
// domains API.
type GoDaddyClient struct {
	Client    *http.Client
	APIKey    string
	APISecret string
	BaseURL   string
	Limiter   *engine.RateLimiter
	Retry     retry.Config
}

type goDaddyAvailability struct {
	Available bool   `json:"available"`
	Domain    string `json:"domain"`
	Price     int64  `json:"price"`
	Currency  string `json:"currency"`
}

// Quote returns availability and the first-year price for domain.
// Prices are reported by GoDaddy in micro-units.
func (c *GoDaddyClient) Quote(ctx context.Context, domain string) (InventoryQuote, error) {
	if c == nil || strings.TrimSpace(c.APIKey) == "" || strings.TrimSpace(c.APISecret) == "" {
		return InventoryQuote{}, fmt.Errorf("godaddy: %w", ErrMissingCredentials)
	}

	base := parseBaseURL(c.BaseURL, defaultGoDaddyURL)
	target := joinURL(base, "/v1/domains/available") + "?" + url.Values{"domain": {domain}}.Encode()
	r := requester{client: c.Client, limiter: c.Limiter, endpoint: engine.EndpointGoDaddy, provider: "godaddy", retry: c.Retry}

	var resp goDaddyAvailability
	err := r.fetchJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", fmt.Sprintf("sso-key %s:%s", c.APIKey, c.APISecret))
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, &resp)
	if err != nil {
		return InventoryQuote{}, err
	}

	return InventoryQuote{
		Available: resp.Available,
		Price:     formatMicros(resp.Price),
		Currency:  resp.Currency,
	}, nil
}

func formatMicros(micros int64) string {
	if micros <= 0 {
		return ""
	}
	return fmt.Sprintf("$%.2f", float64(micros)/1_000_000)
}
