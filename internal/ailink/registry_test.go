package ailink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccdaniele/name-finder/internal/ailink/driver/anthropic"
	"github.com/ccdaniele/name-finder/internal/ailink/driver/openai"
	"github.com/ccdaniele/name-finder/internal/ailink/prompt"
)

func TestResolveModelUsesOverrideFirst(t *testing.T) {
	providerCfg := ProviderInstanceConfig{Models: map[string]string{"default": "m-default"}}

	model, err := resolveModel(providerCfg, nil, "override-model")
	require.NoError(t, err)
	require.Equal(t, "override-model", model)
}

func TestResolveModelFallsBackToPromptPreferredModels(t *testing.T) {
	providerCfg := ProviderInstanceConfig{}
	promptDef := &prompt.Prompt{Config: prompt.Config{ProviderHints: map[string]any{"preferred_models": []any{"prompt-model"}}}}

	model, err := resolveModel(providerCfg, promptDef, "")
	require.NoError(t, err)
	require.Equal(t, "prompt-model", model)
}

func TestResolveModelFallsBackToDefault(t *testing.T) {
	providerCfg := ProviderInstanceConfig{Models: map[string]string{"default": "m-default"}}

	model, err := resolveModel(providerCfg, nil, "")
	require.NoError(t, err)
	require.Equal(t, "m-default", model)

	_, err = resolveModel(ProviderInstanceConfig{}, nil, "")
	require.Error(t, err)
}

func TestResolveRoutesBySlug(t *testing.T) {
	reg := NewRegistry(Config{
		Providers: map[string]ProviderInstanceConfig{
			"fast": {Enabled: true, AIProvider: "openai", Models: map[string]string{"default": "gpt-4o-mini"}, Credentials: []CredentialConfig{{APIKey: "a"}}},
			"deep": {Enabled: true, AIProvider: "anthropic", Models: map[string]string{"default": "claude-sonnet-4-20250514"}, Credentials: []CredentialConfig{{APIKey: "b"}}},
		},
		Routing:         map[string]string{"name-generation": "deep"},
		DefaultProvider: "fast",
	})

	resolved, err := reg.Resolve("name-generation", nil, "")
	require.NoError(t, err)
	require.Equal(t, "deep", resolved.ProviderID)
	require.IsType(t, &anthropic.Client{}, resolved.Driver)

	resolved, err = reg.Resolve("web-assessment", nil, "")
	require.NoError(t, err)
	require.Equal(t, "fast", resolved.ProviderID)
	require.IsType(t, &openai.Client{}, resolved.Driver)
}

func TestResolveByRoleAndDisabledRoute(t *testing.T) {
	providers := map[string]ProviderInstanceConfig{
		"scorer": {Enabled: true, AIProvider: "openai", Roles: []string{"score-adjustment"}, Models: map[string]string{"default": "m1"}, Credentials: []CredentialConfig{{APIKey: "a"}}},
		"off":    {Enabled: false, AIProvider: "openai", Models: map[string]string{"default": "m2"}, Credentials: []CredentialConfig{{APIKey: "b"}}},
	}
	reg := NewRegistry(Config{Providers: providers, Routing: map[string]string{"web-assessment": "off"}})

	resolved, err := reg.Resolve("score-adjustment", nil, "")
	require.NoError(t, err)
	require.Equal(t, "scorer", resolved.ProviderID)

	_, err = reg.Resolve("web-assessment", nil, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "disabled")

	again, err := reg.Resolve("score-adjustment", nil, "")
	require.NoError(t, err)
	require.Same(t, resolved.Driver, again.Driver)
}

func TestResolveNeedsDefaultWithSeveralProviders(t *testing.T) {
	reg := NewRegistry(Config{Providers: map[string]ProviderInstanceConfig{
		"a": {Enabled: true, AIProvider: "openai", Models: map[string]string{"default": "m"}, Credentials: []CredentialConfig{{APIKey: "k"}}},
		"b": {Enabled: true, AIProvider: "openai", Models: map[string]string{"default": "m"}, Credentials: []CredentialConfig{{APIKey: "k"}}},
	}})
	_, err := reg.Resolve("name-generation", nil, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no default provider")
}

func TestResolveRejectsUnknownDriver(t *testing.T) {
	reg := NewRegistry(Config{Providers: map[string]ProviderInstanceConfig{
		"x": {Enabled: true, AIProvider: "mystery", Models: map[string]string{"default": "m"}, Credentials: []CredentialConfig{{APIKey: "k"}}},
	}})
	_, err := reg.Resolve("web-assessment", nil, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported ai_provider")
}

func TestResolveWithoutProviders(t *testing.T) {
	_, err := NewRegistry(Config{}).Resolve("web-assessment", nil, "")
	require.Error(t, err)
}

func TestSelectCredentialRoundRobin(t *testing.T) {
	cfg := ProviderInstanceConfig{
		SelectionPolicy: "round_robin",
		Credentials: []CredentialConfig{
			{Enabled: true, Label: "one", APIKey: "k1", Priority: 1},
			{Enabled: true, Label: "two", APIKey: "k2", Priority: 1},
			{Enabled: true, Label: "low", APIKey: "k3", Priority: 0},
		},
	}
	reg := NewRegistry(Config{})
	next := func(group string, n int) int { return reg.rrIndex(group, n) }

	first, _, err := selectCredential(cfg, next)
	require.NoError(t, err)
	second, _, err := selectCredential(cfg, next)
	require.NoError(t, err)
	third, _, err := selectCredential(cfg, next)
	require.NoError(t, err)

	require.Equal(t, "one", first.Label)
	require.Equal(t, "two", second.Label)
	require.Equal(t, "one", third.Label)
}

func TestSelectCredentialHonorsDefault(t *testing.T) {
	cfg := ProviderInstanceConfig{
		DefaultCredential: "backup",
		Credentials: []CredentialConfig{
			{Enabled: true, Label: "primary", APIKey: "k1", Priority: 10},
			{Enabled: true, Label: "backup", APIKey: "k2"},
		},
	}
	cred, key, err := selectCredential(cfg, nil)
	require.NoError(t, err)
	require.Equal(t, "k2", cred.APIKey)
	require.Equal(t, "backup", key)
}

func TestConfigConfigured(t *testing.T) {
	require.False(t, Config{}.Configured())
	require.True(t, Config{Providers: map[string]ProviderInstanceConfig{
		"main": {Enabled: true, Credentials: []CredentialConfig{{APIKey: "k"}}},
	}}.Configured())
}
