package driver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPostJSONDecodesReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "secret", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"names":["Zorvex"]}`))
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("x-api-key", "secret")
	var out struct {
		Names []string `json:"names"`
	}
	err := PostJSON(context.Background(), server.Client(), "test", server.URL, header, 0, map[string]string{"q": "x"}, &out)
	require.NoError(t, err)
	require.Equal(t, []string{"Zorvex"}, out.Names)
}

func TestPostJSONWrapsProviderStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(" overloaded \n"))
	}))
	defer server.Close()

	var out map[string]any
	err := PostJSON(context.Background(), nil, "test", server.URL, nil, 0, struct{}{}, &out)

	var provErr *ProviderError
	require.True(t, errors.As(err, &provErr))
	require.Equal(t, http.StatusServiceUnavailable, provErr.StatusCode())
	require.Equal(t, "overloaded", provErr.Message)
}

func TestPostJSONHonorsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	var out map[string]any
	err := PostJSON(context.Background(), server.Client(), "test", server.URL, nil, 20*time.Millisecond, struct{}{}, &out)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
