package ailink

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccdaniele/name-finder/internal/ailink/driver"
)

func TestClassifyProviderStatus(t *testing.T) {
	cases := map[int]string{
		401: CodeAuth,
		403: CodeAuth,
		429: CodeRateLimit,
		502: CodeUnavailable,
		422: CodeBadRequest,
	}
	for status, code := range cases {
		err := fmt.Errorf("wrapped: %w", &driver.ProviderError{Provider: "openai", Status: status, Message: "x"})
		require.Equal(t, code, ClassifyError(err).Code, status)
	}
}
