package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openrdap/rdap"
	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/ailink"
	"github.com/ccdaniele/name-finder/internal/config"
	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/core/checker"
	"github.com/ccdaniele/name-finder/internal/core/engine"
	"github.com/ccdaniele/name-finder/internal/core/scoring"
	"github.com/ccdaniele/name-finder/internal/core/store"
	"github.com/ccdaniele/name-finder/internal/generator"
	"github.com/ccdaniele/name-finder/internal/observability"
)

// app holds the clearance components shared by the commands.
type app struct {
	cfg   *config.Config
	store *store.Store
	llm   *ailink.Service

	web       *checker.WebChecker
	domain    *checker.DomainChecker
	trademark *checker.TrademarkChecker
	scorer    *scoring.Scorer
	pipeline  *engine.Pipeline
	runner    *engine.Runner
	replacer  *engine.RowReplacer
	analyzer  *generator.Analyzer
}

// appOptions tweaks wiring for a single command.
type appOptions struct {
	noCache  bool
	checks   *core.ValidationConfig
	progress func(core.Progress)
}

// newApp opens the store and wires providers, checkers and the engine from
// the loaded configuration. The LLM is optional; without it web assessment
// fails open and scores carry no adjustment.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg := config.GetConfig()
	if cfg == nil {
		return nil, errors.New("config not loaded")
	}

	db, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, store: db}
	if err := a.wire(opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(opts appOptions) error {
	cfg := a.cfg
	retryCfg := cfg.Retry
	retryCfg.OnRetry = logRetry

	limiter := &engine.RateLimiter{Store: a.store}
	limiter.ApplyOverrides(cfg.RateLimits)
	limiter.ApplySafetyMargin(cfg.RateLimitMargin)

	var cache checker.ResultCache
	if cfg.Cache.Enabled && !opts.noCache {
		cache = a.store
	}
	cachePolicy := checker.CachePolicy{PassTTL: cfg.Cache.PassTTL, ConflictTTL: cfg.Cache.ConflictTTL}

	if cfg.AILink.Configured() {
		llm, err := ailink.NewService(cfg.AILink, retryCfg)
		if err != nil {
			return fmt.Errorf("init ailink: %w", err)
		}
		a.llm = llm
	}

	a.web = &checker.WebChecker{
		Search: &checker.SerperClient{
			Client:  &http.Client{Timeout: cfg.Providers.Serper.Timeout},
			APIKey:  cfg.Providers.Serper.APIKey,
			BaseURL: cfg.Providers.Serper.BaseURL,
			Limiter: limiter,
			Retry:   retryCfg,
		},
		Cache:       cache,
		CachePolicy: cachePolicy,
		Policy:      checker.FailOpen,
	}

	var inventory checker.InventoryProvider
	if gd := cfg.Providers.GoDaddy; gd.APIKey != "" && gd.APISecret != "" {
		inventory = &checker.GoDaddyClient{
			Client:    &http.Client{Timeout: gd.Timeout},
			APIKey:    gd.APIKey,
			APISecret: gd.APISecret,
			BaseURL:   gd.BaseURL,
			Limiter:   limiter,
			Retry:     retryCfg,
		}
	}
	a.domain = &checker.DomainChecker{
		RDAP: &checker.RDAPClient{
			Client:  &rdap.Client{HTTP: &http.Client{Timeout: cfg.Providers.RDAP.Timeout}},
			BaseURL: cfg.Providers.RDAP.BaseURL,
			Timeout: cfg.Providers.RDAP.Timeout,
			Limiter: limiter,
		},
		Inventory:   inventory,
		Cache:       cache,
		CachePolicy: cachePolicy,
	}

	a.trademark = &checker.TrademarkChecker{
		Provider: &checker.RapidAPIClient{
			Client:  &http.Client{Timeout: cfg.Providers.RapidAPI.Timeout},
			APIKey:  cfg.Providers.RapidAPI.APIKey,
			Host:    cfg.Providers.RapidAPI.Host,
			BaseURL: cfg.Providers.RapidAPI.BaseURL,
			Limiter: limiter,
			Retry:   retryCfg,
		},
		Cache:       cache,
		CachePolicy: cachePolicy,
		Policy:      checker.FailOpen,
	}

	a.scorer = &scoring.Scorer{}
	if a.llm != nil {
		a.web.Assessor = &ailink.WebAssessor{LLM: a.llm}
		a.scorer.Adjuster = &ailink.ScoreAdjuster{LLM: a.llm}
		a.analyzer = &generator.Analyzer{LLM: a.llm}
	}

	checks := cfg.Checks
	if opts.checks != nil {
		checks = *opts.checks
	}
	a.pipeline = &engine.Pipeline{
		Web:       a.web,
		Domain:    a.domain,
		Trademark: a.trademark,
		Scorer:    a.scorer,
		Config:    checks,
	}

	if a.llm != nil {
		a.runner = &engine.Runner{
			Generator:   &generator.Generator{LLM: a.llm},
			Validator:   a.pipeline,
			MaxRounds:   cfg.Engine.MaxRounds,
			Concurrency: cfg.Engine.Concurrency,
			OnProgress:  opts.progress,
		}
		a.replacer = &engine.RowReplacer{Runner: a.runner}
	}
	return nil
}

// requireLLM reports a configuration error for commands that generate names.
func (a *app) requireLLM() error {
	if a.llm == nil {
		return fmt.Errorf("configure an ailink provider to generate names: %w", ailink.ErrNotConfigured)
	}
	return nil
}

func (a *app) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}

func logRetry(attempt int, delay time.Duration, err error) {
	if logger := observability.Logger(); logger != nil {
		logger.Debug("Retrying provider request",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}
}
