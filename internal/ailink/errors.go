package ailink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ccdaniele/name-finder/internal/ailink/driver"
)

// Error codes reported by ClassifyError.
const (
	CodeTimeout     = "AILINK_PROVIDER_TIMEOUT"
	CodeAuth        = "AILINK_PROVIDER_AUTH"
	CodeRateLimit   = "AILINK_PROVIDER_RATE_LIMIT"
	CodeUnavailable = "AILINK_PROVIDER_UNAVAILABLE"
	CodeBadRequest  = "AILINK_PROVIDER_BAD_REQUEST"
	CodeProvider    = "AILINK_PROVIDER_ERROR"
	CodeResponse    = "AILINK_RESPONSE_INVALID"
)

// Error is a classified LLM failure.
type Error struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ResponseError reports a reply that could not be decoded or failed its
// response schema. Raw holds the model output.
type ResponseError struct {
	Err error
	Raw string
}

func (e *ResponseError) Error() string { return "invalid model response: " + e.Err.Error() }

func (e *ResponseError) Unwrap() error { return e.Err }

// ClassifyError maps transport and provider failures to a stable code.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Message: "provider request timed out", Err: err}
	}

	var rerr *ResponseError
	if errors.As(err, &rerr) {
		return &Error{Code: CodeResponse, Message: "model response invalid", Details: rerr.Err.Error(), Err: err}
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		status := perr.Status
		details := strings.TrimSpace(perr.Message)
		switch {
		case status == 401 || status == 403:
			return &Error{Code: CodeAuth, Message: "provider authentication failed", Details: details, Err: err}
		case status == 429:
			return &Error{Code: CodeRateLimit, Message: "provider rate limited", Details: details, Err: err}
		case status >= 500 && status <= 599:
			return &Error{Code: CodeUnavailable, Message: "provider unavailable", Details: details, Err: err}
		case status >= 400 && status <= 499:
			return &Error{Code: CodeBadRequest, Message: "provider rejected request", Details: details, Err: err}
		}
	}

	return &Error{Code: CodeProvider, Message: "provider request failed", Details: err.Error(), Err: err}
}
