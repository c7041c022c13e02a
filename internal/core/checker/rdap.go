package checker

import (
	"context"
	"net/http"
	"time"

	"github.com/openrdap/rdap"

	"github.com/ccdaniele/name-finder/internal/core/engine"
)

const defaultRDAPURL = "https://rdap.org"

// RDAPClient looks up domains through an RDAP server, by default the
// rdap.org redirector.
type RDAPClient struct {
	Client  *rdap.Client
	BaseURL string
	Timeout time.Duration
	Limiter *engine.RateLimiter
}

// LookupDomain reports a domain as available on 404 and taken on 200.
// Any other outcome yields no verdict.
func (c *RDAPClient) LookupDomain(ctx context.Context, domain string) RDAPVerdict {
	if ctx == nil {
		ctx = context.Background()
	}

	serverURL := parseBaseURL(c.BaseURL, defaultRDAPURL)
	endpoint := engine.EndpointRDAP

	if err := c.Limiter.Wait(ctx, endpoint); err != nil {
		return RDAPVerdict{}
	}

	req := rdap.NewDomainRequest(domain).WithServer(serverURL)
	req.Timeout = c.Timeout
	if req.Timeout <= 0 {
		req.Timeout = 5 * time.Second
	}
	req = req.WithContext(ctx)

	client := c.Client
	if client == nil {
		client = &rdap.Client{}
	}

	resp, err := client.Do(req)
	status := responseStatus(resp)

	if err != nil {
		if isNotFound(err) || status == http.StatusNotFound {
			return RDAPVerdict{Known: true, Available: true}
		}
		if status == http.StatusTooManyRequests {
			if wait := rdapRetryAfter(resp); wait > 0 {
				_ = c.Limiter.Record429(ctx, endpoint, wait)
			}
		}
		return RDAPVerdict{}
	}

	if _, ok := resp.Object.(*rdap.Domain); ok || status == http.StatusOK {
		return RDAPVerdict{Known: true, Available: false}
	}
	return RDAPVerdict{}
}

func responseStatus(resp *rdap.Response) int {
	if resp == nil || len(resp.HTTP) == 0 || resp.HTTP[0] == nil || resp.HTTP[0].Response == nil {
		return 0
	}
	return resp.HTTP[0].Response.StatusCode
}

func rdapRetryAfter(resp *rdap.Response) time.Duration {
	if resp == nil || len(resp.HTTP) == 0 || resp.HTTP[0] == nil {
		return 0
	}
	return retryAfterHeader(resp.HTTP[0].Response)
}

func isNotFound(err error) bool {
	clientErr, ok := err.(*rdap.ClientError)
	return ok && clientErr.Type == rdap.ObjectDoesNotExist
}
