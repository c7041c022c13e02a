package driver

import "fmt"

// ProviderError is returned when a provider responds with a non-2xx status.
//
// RawResponse holds the provider response body and never includes API keys.
type ProviderError struct {
	Provider    string
	Status      int
	Message     string
	RawResponse []byte
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// StatusCode returns the HTTP status, letting retry policies classify the error.
func (e *ProviderError) StatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}
