// Package openai implements the chat completions driver for OpenAI and
// OpenAI-compatible endpoints.
package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ccdaniele/name-finder/internal/ailink/driver"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	return &Client{BaseURL: url, APIKey: strings.TrimSpace(apiKey)}
}

func (c *Client) Name() string {
	return "openai"
}

// Complete posts to /chat/completions. Structured prompts arrive with a
// json_schema response format, which is forwarded unchanged.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, errors.New("openai client not configured")
	}
	if c.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	payload, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.APIKey)

	var parsed chatCompletionResponse
	url := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	if err := driver.PostJSON(ctx, c.HTTPClient, c.Name(), url, header, c.Timeout, payload, &parsed); err != nil {
		return nil, err
	}
	return toDriverResponse(&parsed)
}
