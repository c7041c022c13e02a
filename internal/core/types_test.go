package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDistinctivenessCategory(t *testing.T) {
	got, err := ParseDistinctivenessCategory("")
	require.NoError(t, err)
	require.Equal(t, DistinctivenessSuggestive, got)

	got, err = ParseDistinctivenessCategory(" Fanciful ")
	require.NoError(t, err)
	require.Equal(t, DistinctivenessFanciful, got)

	for _, c := range DistinctivenessCategories {
		got, err := ParseDistinctivenessCategory(string(c))
		require.NoError(t, err)
		require.Equal(t, c, got)
	}

	_, err = ParseDistinctivenessCategory("catchy")
	require.Error(t, err)
}

func TestValidationConfigNormalizesTLDs(t *testing.T) {
	cfg := DefaultValidationConfig()
	cfg.Domain.TLDs = []string{"COM", ".io", "com"}
	require.NoError(t, cfg.Validate())
	require.Equal(t, []string{".com", ".io"}, cfg.Domain.TLDs)

	cfg.Domain.TLDs = nil
	require.Error(t, cfg.Validate())
}
