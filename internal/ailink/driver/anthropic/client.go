// Package anthropic implements the Messages API driver.
package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ccdaniele/name-finder/internal/ailink/driver"
)

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	apiVersion       = "2023-06-01"
	defaultMaxTokens = 2048
)

// Client calls the Anthropic Messages API via direct HTTP.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	return &Client{BaseURL: url, APIKey: strings.TrimSpace(apiKey)}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return "anthropic"
}

type messagesRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
}

// Complete sends a messages request. The Messages API has no response_format,
// so structured output relies on the prompt and downstream validation.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("anthropic client not configured")
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	payload, err := buildRequest(req)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("x-api-key", c.APIKey)
	header.Set("anthropic-version", apiVersion)

	var parsed messagesResponse
	url := strings.TrimRight(c.BaseURL, "/") + "/messages"
	if err := driver.PostJSON(ctx, c.HTTPClient, c.Name(), url, header, c.Timeout, payload, &parsed); err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response content")
	}

	out := &driver.Response{Text: text.String(), FinishReason: parsed.StopReason}
	if parsed.Usage != nil {
		out.Usage = &driver.Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		}
	}
	return out, nil
}

func buildRequest(req *driver.Request) (*messagesRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	payload := &messagesRequest{
		Model:       req.Model,
		System:      strings.TrimSpace(req.System),
		MaxTokens:   defaultMaxTokens,
		Temperature: req.Temperature,
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		payload.MaxTokens = *req.MaxTokens
	}
	for _, msg := range req.Messages {
		// System messages fold into the top-level field.
		if msg.Role == "system" {
			if payload.System != "" {
				payload.System += "\n\n"
			}
			payload.System += msg.Content
			continue
		}
		payload.Messages = append(payload.Messages, message{Role: msg.Role, Content: msg.Content})
	}
	if len(payload.Messages) == 0 {
		return nil, fmt.Errorf("at least one user message is required")
	}
	return payload, nil
}
