package ailink

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ccdaniele/name-finder/internal/ailink/driver"
	"github.com/ccdaniele/name-finder/internal/ailink/driver/anthropic"
	"github.com/ccdaniele/name-finder/internal/ailink/driver/openai"
	"github.com/ccdaniele/name-finder/internal/ailink/prompt"
)

// driverFactories builds a driver per ai_provider value.
var driverFactories = map[string]func(baseURL, apiKey string, timeout time.Duration) driver.Driver{
	"openai": func(baseURL, apiKey string, timeout time.Duration) driver.Driver {
		c := openai.NewClient(baseURL, apiKey)
		c.Timeout = timeout
		return c
	},
	"anthropic": func(baseURL, apiKey string, timeout time.Duration) driver.Driver {
		c := anthropic.NewClient(baseURL, apiKey)
		c.Timeout = timeout
		return c
	},
}

// Registry routes each prompt slug to a provider, credential, driver and
// model. Drivers are cached per provider and credential.
type Registry struct {
	cfg Config

	mu      sync.Mutex
	drivers map[string]driver.Driver
	rr      map[string]int
}

// ResolvedProvider is the outcome of routing one request.
type ResolvedProvider struct {
	ProviderID string
	Provider   ProviderInstanceConfig
	Credential CredentialConfig
	Driver     driver.Driver
	Model      string
	BaseURL    string
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// Resolve routes slug. A non-empty modelOverride wins over the prompt's
// preferred model and the provider default.
func (r *Registry) Resolve(slug string, promptDef *prompt.Prompt, modelOverride string) (*ResolvedProvider, error) {
	if r == nil {
		return nil, ErrNotConfigured
	}
	providerID, providerCfg, err := r.providerFor(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}

	cred, credKey, err := selectCredential(providerCfg, func(group string, n int) int {
		return r.rrIndex(providerID+":"+group, n)
	})
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", providerID, err)
	}

	drv, err := r.driverFor(providerID, providerCfg, cred, credKey)
	if err != nil {
		return nil, err
	}

	model, err := resolveModel(providerCfg, promptDef, modelOverride)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", providerID, err)
	}

	return &ResolvedProvider{
		ProviderID: providerID,
		Provider:   providerCfg,
		Credential: cred,
		Driver:     drv,
		Model:      model,
		BaseURL:    strings.TrimSpace(providerCfg.BaseURL),
	}, nil
}

// providerFor tries, in order: the routing table, a provider listing slug
// in its roles, the default provider, and the only enabled provider.
func (r *Registry) providerFor(slug string) (string, ProviderInstanceConfig, error) {
	if slug != "" {
		if id := strings.TrimSpace(r.cfg.Routing[slug]); id != "" {
			return r.enabledProvider(id, "routed")
		}
		for _, id := range r.enabledIDs() {
			if contains(r.cfg.Providers[id].Roles, slug) {
				return id, r.cfg.Providers[id], nil
			}
		}
	}

	if id := strings.TrimSpace(r.cfg.DefaultProvider); id != "" {
		return r.enabledProvider(id, "default")
	}

	switch ids := r.enabledIDs(); len(ids) {
	case 0:
		return "", ProviderInstanceConfig{}, errors.New("no enabled providers configured")
	case 1:
		return ids[0], r.cfg.Providers[ids[0]], nil
	default:
		return "", ProviderInstanceConfig{}, fmt.Errorf("no provider routing for %q and no default provider", slug)
	}
}

func (r *Registry) enabledProvider(id, kind string) (string, ProviderInstanceConfig, error) {
	cfg, ok := r.cfg.Providers[id]
	if !ok {
		return "", ProviderInstanceConfig{}, fmt.Errorf("%s provider %q not configured", kind, id)
	}
	if !cfg.Enabled {
		return "", ProviderInstanceConfig{}, fmt.Errorf("%s provider %q is disabled", kind, id)
	}
	return id, cfg, nil
}

func (r *Registry) enabledIDs() []string {
	ids := make([]string, 0, len(r.cfg.Providers))
	for id, cfg := range r.cfg.Providers {
		if cfg.Enabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// selectCredential picks among usable credentials of the highest priority,
// first or round robin per the provider's selection policy. With no usable
// credential the first one is returned so the driver reports the missing key.
func selectCredential(cfg ProviderInstanceConfig, rrNext func(group string, n int) int) (CredentialConfig, string, error) {
	if len(cfg.Credentials) == 0 {
		return CredentialConfig{}, "", errors.New("no credentials configured")
	}

	var usable []CredentialConfig
	for _, cred := range cfg.Credentials {
		disabled := !cred.Enabled && strings.TrimSpace(cred.Label) != ""
		if disabled || strings.TrimSpace(cred.APIKey) == "" {
			continue
		}
		usable = append(usable, cred)
	}
	if len(usable) == 0 {
		return cfg.Credentials[0], credentialKey(cfg.Credentials[0], "0"), nil
	}

	if label := strings.TrimSpace(cfg.DefaultCredential); label != "" {
		for _, cred := range usable {
			if strings.EqualFold(strings.TrimSpace(cred.Label), label) {
				return cred, strings.TrimSpace(cred.Label), nil
			}
		}
	}

	highest := usable[0].Priority
	for _, cred := range usable[1:] {
		highest = max(highest, cred.Priority)
	}
	var group []CredentialConfig
	for _, cred := range usable {
		if cred.Priority == highest {
			group = append(group, cred)
		}
	}

	idx := 0
	if strings.EqualFold(strings.TrimSpace(cfg.SelectionPolicy), "round_robin") && rrNext != nil {
		idx = rrNext(strconv.Itoa(highest), len(group))
	}
	return group[idx], credentialKey(group[idx], "p"+strconv.Itoa(highest)), nil
}

func credentialKey(cred CredentialConfig, fallback string) string {
	if label := strings.TrimSpace(cred.Label); label != "" {
		return label
	}
	return fallback
}

func (r *Registry) driverFor(providerID string, providerCfg ProviderInstanceConfig, cred CredentialConfig, credKey string) (driver.Driver, error) {
	kind := strings.ToLower(strings.TrimSpace(providerCfg.AIProvider))
	factory, ok := driverFactories[kind]
	if !ok {
		if kind == "" {
			kind = "(unset)"
		}
		return nil, fmt.Errorf("unsupported ai_provider %q for provider %q", kind, providerID)
	}

	key := providerID + ":" + credKey
	r.mu.Lock()
	defer r.mu.Unlock()
	if drv, ok := r.drivers[key]; ok {
		return drv, nil
	}
	if r.drivers == nil {
		r.drivers = make(map[string]driver.Driver)
	}
	drv := factory(providerCfg.BaseURL, cred.APIKey, r.cfg.DefaultTimeout)
	r.drivers[key] = drv
	return drv, nil
}

func resolveModel(providerCfg ProviderInstanceConfig, promptDef *prompt.Prompt, override string) (string, error) {
	if model := strings.TrimSpace(override); model != "" {
		return model, nil
	}
	for _, model := range preferredModels(promptDef) {
		if model = strings.TrimSpace(model); model != "" {
			return model, nil
		}
	}
	if model := strings.TrimSpace(providerCfg.Models["default"]); model != "" {
		return model, nil
	}
	return "", errors.New("model not configured")
}

// preferredModels reads provider_hints.preferred_models from prompt frontmatter,
// which YAML may decode as a list or a single string.
func preferredModels(promptDef *prompt.Prompt) []string {
	if promptDef == nil {
		return nil
	}
	switch typed := promptDef.Config.ProviderHints["preferred_models"].(type) {
	case []string:
		return typed
	case []any:
		models := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok {
				models = append(models, s)
			}
		}
		return models
	case string:
		return []string{typed}
	}
	return nil
}

func (r *Registry) rrIndex(key string, n int) int {
	if r == nil || n <= 1 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rr == nil {
		r.rr = make(map[string]int)
	}
	idx := r.rr[key] % n
	r.rr[key]++
	return idx
}

func contains(values []string, needle string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), needle) {
			return true
		}
	}
	return false
}
