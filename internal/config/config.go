package config

import (
	"time"

	"github.com/ccdaniele/name-finder/internal/ailink"
	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/core/retry"
)

// Config represents the complete application configuration.
//
// Values are layered by viper: built-in defaults, then the optional config
// file, then NAMEFINDER_* environment variables and bound flags.
type Config struct {
	Server    ServerConfig          `mapstructure:"server"`
	Store     StoreConfig           `mapstructure:"store"`
	Cache     CacheConfig           `mapstructure:"cache"`
	AILink    ailink.Config         `mapstructure:"ailink"`
	Providers ProvidersConfig       `mapstructure:"providers"`
	Checks    core.ValidationConfig `mapstructure:"checks"`
	Retry     retry.Config          `mapstructure:"retry"`
	Engine    EngineConfig          `mapstructure:"engine"`
	Logging   LoggingConfig         `mapstructure:"logging"`
	Metrics   MetricsConfig         `mapstructure:"metrics"`
	Health    HealthConfig          `mapstructure:"health"`

	RateLimits      map[string]int `mapstructure:"rate_limits"`
	RateLimitMargin float64        `mapstructure:"rate_limit_margin"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// CacheConfig contains check result cache settings.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// PassTTL applies to clean results, ConflictTTL to results that found
	// something (a taken domain, a mark, a web conflict).
	PassTTL     time.Duration `mapstructure:"pass_ttl"`
	ConflictTTL time.Duration `mapstructure:"conflict_ttl"`
}

// ProvidersConfig holds credentials and endpoints for the clearance providers.
type ProvidersConfig struct {
	Serper   SerperConfig   `mapstructure:"serper"`
	RapidAPI RapidAPIConfig `mapstructure:"rapidapi"`
	GoDaddy  GoDaddyConfig  `mapstructure:"godaddy"`
	RDAP     RDAPConfig     `mapstructure:"rdap"`
}

// SerperConfig configures the web search provider.
type SerperConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RapidAPIConfig configures the USPTO trademark search provider.
type RapidAPIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Host    string        `mapstructure:"host"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GoDaddyConfig configures the domain inventory provider.
type GoDaddyConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RDAPConfig configures the RDAP redirector used for the first domain tier.
type RDAPConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EngineConfig controls the generation and replacement loop.
type EngineConfig struct {
	NameCount   int `mapstructure:"name_count"`
	MaxRounds   int `mapstructure:"max_rounds"`
	Concurrency int `mapstructure:"concurrency"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
