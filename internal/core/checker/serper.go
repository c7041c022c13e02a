package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ccdaniele/name-finder/internal/core/engine"
	"github.com/ccdaniele/name-finder/internal/core/retry"
)

const defaultSerperURL = "https://google.serper.dev"

// SerperClient searches the web through the Serper Google Search API.
type SerperClient struct {
	Client  *http.Client
	APIKey  string
	BaseURL string
	Limiter *engine.RateLimiter
	Retry   retry.Config
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic        []serperResult        `json:"organic"`
	KnowledgeGraph *serperKnowledgeGraph `json:"knowledgeGraph"`
}

type serperResult struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
}

type serperKnowledgeGraph struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Search queries for companies, brands and products using the name and
// returns the results as plain text.
func (c *SerperClient) Search(ctx context.Context, name string) (string, error) {
	if c == nil || strings.TrimSpace(c.APIKey) == "" {
		return "", fmt.Errorf("serper: %w", ErrMissingCredentials)
	}

	body, err := json.Marshal(serperRequest{
		Q:   `"` + name + `" company OR brand OR startup OR software`,
		Num: 10,
	})
	if err != nil {
		return "", err
	}

	base := parseBaseURL(c.BaseURL, defaultSerperURL)
	r := requester{client: c.Client, limiter: c.Limiter, endpoint: engine.EndpointSerper, provider: "serper", retry: c.Retry}

	var resp serperResponse
	err = r.fetchJSON(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(base, "/search"), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-API-KEY", c.APIKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &resp)
	if err != nil {
		return "", err
	}

	return formatSearchResults(resp), nil
}

func formatSearchResults(resp serperResponse) string {
	parts := make([]string, 0, len(resp.Organic)+1)
	if kg := resp.KnowledgeGraph; kg != nil {
		parts = append(parts, fmt.Sprintf("Knowledge Graph: %s (%s) - %s", kg.Title, kg.Type, kg.Description))
	}
	for i, result := range resp.Organic {
		if i == 10 {
			break
		}
		parts = append(parts, fmt.Sprintf("[%d] %s\n    %s", result.Position, result.Title, result.Snippet))
	}
	if len(parts) == 0 {
		return "No results found."
	}
	return strings.Join(parts, "\n\n")
}
