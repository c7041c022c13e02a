// Package config provides centralized configuration management for name-finder.
// Defaults are registered on a viper instance, overlaid by the optional config
// file and NAMEFINDER_* environment variables, then decoded with mapstructure.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// AppName is used for XDG directory discovery.
const AppName = "name-finder"

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "NAMEFINDER"

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// providerEnv maps config keys to the conventional provider variables, which
// are honored alongside the NAMEFINDER_ prefixed names.
var providerEnv = map[string]string{
	"providers.serper.api_key":     "SERPER_API_KEY",
	"providers.rapidapi.api_key":   "RAPIDAPI_KEY",
	"providers.godaddy.api_key":    "GODADDY_API_KEY",
	"providers.godaddy.api_secret": "GODADDY_API_SECRET",
}

// SetDefaults registers default configuration values on v.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "10m")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	// Store defaults
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.pass_ttl", "24h")
	v.SetDefault("cache.conflict_ttl", "6h")

	// AILink defaults
	v.SetDefault("ailink.default_provider", "")
	v.SetDefault("ailink.default_timeout", "60s")
	v.SetDefault("ailink.prompts_dir", "")

	// Provider defaults
	v.SetDefault("providers.serper.api_key", "")
	v.SetDefault("providers.serper.base_url", "https://google.serper.dev")
	v.SetDefault("providers.serper.timeout", "15s")
	v.SetDefault("providers.rapidapi.api_key", "")
	v.SetDefault("providers.rapidapi.host", "uspto-trademark.p.rapidapi.com")
	v.SetDefault("providers.rapidapi.base_url", "https://uspto-trademark.p.rapidapi.com")
	v.SetDefault("providers.rapidapi.timeout", "20s")
	v.SetDefault("providers.godaddy.api_key", "")
	v.SetDefault("providers.godaddy.api_secret", "")
	v.SetDefault("providers.godaddy.base_url", "https://api.godaddy.com")
	v.SetDefault("providers.godaddy.timeout", "10s")
	v.SetDefault("providers.rdap.base_url", "https://rdap.org")
	v.SetDefault("providers.rdap.timeout", "5s")

	// Check defaults
	v.SetDefault("checks.web_search.enabled", true)
	v.SetDefault("checks.web_search.can_fail", false)
	v.SetDefault("checks.domain.enabled", true)
	v.SetDefault("checks.domain.can_fail", true)
	v.SetDefault("checks.domain.tlds", []string{".com"})
	v.SetDefault("checks.trademark.enabled", true)
	v.SetDefault("checks.trademark.can_fail", false)

	// Retry defaults
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", "1s")
	v.SetDefault("retry.max_delay", "15s")
	v.SetDefault("retry.retryable_statuses", []int{429, 500, 502, 503, 504})

	// Engine defaults
	v.SetDefault("engine.name_count", 10)
	v.SetDefault("engine.max_rounds", 3)
	v.SetDefault("engine.concurrency", 1)

	// Rate limit overrides (optional)
	v.SetDefault("rate_limits", map[string]int{})
	v.SetDefault("rate_limit_margin", 0.9)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Health check defaults
	v.SetDefault("health.enabled", true)
}

// BindEnv wires environment lookups on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range providerEnv {
		_ = v.BindEnv(key, EnvPrefix+"_"+envKey(key), name)
	}
}

// Load decodes the settings held by v into a Config and makes it current.
//
// This function is safe to call multiple times (e.g., for config reload)
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, fmt.Errorf("viper instance is required")
	}

	settings := v.AllSettings()
	applyAILinkDynamicEnvOverrides(EnvPrefix+"_", settings)

	cfg, err := Decode(settings)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	if err := cfg.Checks.Validate(); err != nil {
		return nil, fmt.Errorf("invalid checks config: %w", err)
	}
	if cfg.Engine.MaxRounds < 0 {
		return nil, fmt.Errorf("engine.max_rounds must not be negative")
	}

	setConfig(cfg)
	return cfg, nil
}

// Decode converts a raw settings tree into a Config.
func Decode(settings map[string]any) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigDir returns the XDG-compliant config directory for the app.
func DefaultConfigDir() string {
	return gfconfig.GetAppConfigDir(AppName)
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir(AppName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + ".db"
	}
	return filepath.Join(dataDir, AppName+".db")
}

func envKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// applyAILinkDynamicEnvOverrides maps variables such as
// NAMEFINDER_AILINK_PROVIDERS_MAIN_CREDENTIALS_0_API_KEY onto the ailink
// provider tree, which has no fixed keys for viper to bind.
func applyAILinkDynamicEnvOverrides(prefix string, settings map[string]any) {
	providerPrefix := prefix + "AILINK_PROVIDERS_"
	routingPrefix := prefix + "AILINK_ROUTING_"

	for _, item := range os.Environ() {
		key, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}

		switch {
		case strings.HasPrefix(key, providerPrefix):
			applyAILinkProviderOverride(settings, key[len(providerPrefix):], value)
		case strings.HasPrefix(key, routingPrefix):
			applyAILinkRoutingOverride(settings, key[len(routingPrefix):], value)
		}
	}
}

func applyAILinkRoutingOverride(settings map[string]any, rawRole string, providerID string) {
	role := toSlug(rawRole)
	providerID = strings.TrimSpace(providerID)
	if role == "" || providerID == "" {
		return
	}

	routing := ensureMap(ensureMap(settings, "ailink"), "routing")
	routing[role] = providerID
}

func applyAILinkProviderOverride(settings map[string]any, raw string, value string) {
	parts := strings.Split(strings.TrimSpace(raw), "_")
	if len(parts) < 2 {
		return
	}

	section := -1
	for i, part := range parts {
		switch part {
		case "ENABLED", "AI", "BASE", "MODELS", "CREDENTIALS", "SELECTION", "DEFAULT":
			section = i
		}
		if section != -1 {
			break
		}
	}
	if section <= 0 {
		return
	}

	providerID := strings.ToLower(strings.Join(parts[:section], "-"))
	provider := ensureMap(ensureMap(ensureMap(settings, "ailink"), "providers"), providerID)
	value = strings.TrimSpace(value)

	rest := parts[section:]
	switch {
	case len(rest) == 1 && rest[0] == "ENABLED":
		provider["enabled"] = strings.EqualFold(value, "true")
	case len(rest) == 2 && rest[0] == "AI" && rest[1] == "PROVIDER":
		provider["ai_provider"] = strings.ToLower(value)
	case len(rest) == 2 && rest[0] == "DEFAULT" && rest[1] == "CREDENTIAL":
		provider["default_credential"] = value
	case len(rest) == 2 && rest[0] == "SELECTION" && rest[1] == "POLICY":
		provider["selection_policy"] = strings.ToLower(value)
	case len(rest) == 2 && rest[0] == "BASE" && rest[1] == "URL":
		provider["base_url"] = value
	case len(rest) >= 2 && rest[0] == "MODELS":
		models := ensureMap(provider, "models")
		models[strings.ToLower(strings.Join(rest[1:], "_"))] = value
	case len(rest) >= 3 && rest[0] == "CREDENTIALS":
		idx, err := strconv.Atoi(rest[1])
		if err != nil || idx < 0 {
			return
		}
		field := strings.ToLower(strings.Join(rest[2:], "_"))
		cred := ensureSliceMap(ensureSlice(provider, "credentials", idx+1), idx)
		switch field {
		case "priority":
			if parsed, err := strconv.Atoi(value); err == nil {
				cred[field] = parsed
				return
			}
			cred[field] = value
		case "enabled":
			cred[field] = strings.EqualFold(value, "true")
		default:
			cred[field] = value
		}
	}
}

func ensureMap(parent map[string]any, key string) map[string]any {
	if parent == nil {
		return map[string]any{}
	}
	if existing, ok := parent[key]; ok {
		if typed, ok := existing.(map[string]any); ok {
			return typed
		}
	}
	next := map[string]any{}
	parent[key] = next
	return next
}

func ensureSlice(parent map[string]any, key string, length int) []any {
	var existing []any
	if raw, ok := parent[key]; ok {
		existing, _ = raw.([]any)
	}
	for len(existing) < length {
		existing = append(existing, map[string]any{})
	}
	parent[key] = existing
	return existing
}

func ensureSliceMap(slice []any, idx int) map[string]any {
	if idx < 0 || idx >= len(slice) {
		return map[string]any{}
	}
	if typed, ok := slice[idx].(map[string]any); ok {
		return typed
	}
	m := map[string]any{}
	slice[idx] = m
	return m
}

func toSlug(raw string) string {
	parts := strings.Split(strings.TrimSpace(raw), "_")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, "-")
}
