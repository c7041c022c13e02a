package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		cfg, err := Load(newTestViper(t))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		// Verify server defaults
		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

		// Verify store defaults
		assert.Equal(t, "libsql", cfg.Store.Driver)
		assert.Equal(t, AppName+".db", filepath.Base(cfg.Store.Path))

		// Verify check defaults
		assert.True(t, cfg.Checks.WebSearch.Enabled)
		assert.False(t, cfg.Checks.WebSearch.CanFail)
		assert.True(t, cfg.Checks.Domain.CanFail)
		assert.Equal(t, []string{".com"}, cfg.Checks.Domain.TLDs)
		assert.False(t, cfg.Checks.Trademark.CanFail)

		// Verify retry and engine defaults
		assert.Equal(t, 3, cfg.Retry.MaxRetries)
		assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
		assert.Equal(t, 15*time.Second, cfg.Retry.MaxDelay)
		assert.Equal(t, []int{429, 500, 502, 503, 504}, cfg.Retry.RetryableStatuses)
		assert.Equal(t, 3, cfg.Engine.MaxRounds)
		assert.Equal(t, 1, cfg.Engine.Concurrency)

		assert.Equal(t, "https://rdap.org", cfg.Providers.RDAP.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Providers.RDAP.Timeout)
		assert.Equal(t, 0.9, cfg.RateLimitMargin)
		assert.Same(t, cfg, GetConfig())
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		v := newTestViper(t)
		t.Setenv("NAMEFINDER_SERVER_PORT", "9191")
		t.Setenv("NAMEFINDER_CHECKS_DOMAIN_TLDS", "com,io")
		t.Setenv("SERPER_API_KEY", "serper-key")
		t.Setenv("NAMEFINDER_PROVIDERS_GODADDY_API_SECRET", "shh")

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, 9191, cfg.Server.Port)
		assert.Equal(t, []string{".com", ".io"}, cfg.Checks.Domain.TLDs)
		assert.Equal(t, "serper-key", cfg.Providers.Serper.APIKey)
		assert.Equal(t, "shh", cfg.Providers.GoDaddy.APISecret)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		v := newTestViper(t)
		path := filepath.Join(t.TempDir(), "namefinder.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
engine:
  concurrency: 4
checks:
  domain:
    tlds: [".com", "ai"]
  trademark:
    can_fail: true
`), 0o600))
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Engine.Concurrency)
		assert.Equal(t, []string{".com", ".ai"}, cfg.Checks.Domain.TLDs)
		assert.True(t, cfg.Checks.Trademark.CanFail)
	})

	t.Run("EmptyTLDsRejected", func(t *testing.T) {
		v := newTestViper(t)
		v.Set("checks.domain.tlds", []string{})

		_, err := Load(v)
		require.Error(t, err)
	})
}

func TestAILinkDynamicEnvOverrides(t *testing.T) {
	t.Setenv("NAMEFINDER_AILINK_PROVIDERS_MAIN_ENABLED", "true")
	t.Setenv("NAMEFINDER_AILINK_PROVIDERS_MAIN_AI_PROVIDER", "OpenAI")
	t.Setenv("NAMEFINDER_AILINK_PROVIDERS_MAIN_MODELS_DEFAULT", "gpt-4o-mini")
	t.Setenv("NAMEFINDER_AILINK_PROVIDERS_MAIN_CREDENTIALS_0_API_KEY", "sk-test")
	t.Setenv("NAMEFINDER_AILINK_ROUTING_NAME_GENERATION", "main")

	cfg, err := Load(newTestViper(t))
	require.NoError(t, err)

	provider, ok := cfg.AILink.Providers["main"]
	require.True(t, ok)
	assert.True(t, provider.Enabled)
	assert.Equal(t, "openai", provider.AIProvider)
	assert.Equal(t, "gpt-4o-mini", provider.Models["default"])
	require.Len(t, provider.Credentials, 1)
	assert.Equal(t, "sk-test", provider.Credentials[0].APIKey)
	assert.Equal(t, "main", cfg.AILink.Routing["name-generation"])
}
