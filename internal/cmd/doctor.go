package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ccdaniele/name-finder/internal/config"
	"github.com/ccdaniele/name-finder/internal/observability"
)

// doctorCheck is one line of the diagnostic report. A warning does not fail
// the report; an error does.
type doctorCheck struct {
	label string
	run   func(ctx context.Context, cfg *config.Config) (detail string, warn bool, err error)
}

var doctorChecks = []doctorCheck{
	{label: "Go version", run: func(context.Context, *config.Config) (string, bool, error) {
		return runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH, false, nil
	}},
	{label: "Gofulmen", run: func(context.Context, *config.Config) (string, bool, error) {
		v := crucible.GetVersion()
		if v.Gofulmen == "" {
			return "", false, errors.New("gofulmen version unavailable")
		}
		return "v" + v.Gofulmen, false, nil
	}},
	{label: "Store", run: checkStore},
	{label: "Web search (Serper)", run: func(_ context.Context, cfg *config.Config) (string, bool, error) {
		return credentialStatus(cfg.Providers.Serper.APIKey != "", "web check fails open")
	}},
	{label: "Trademark search (RapidAPI)", run: func(_ context.Context, cfg *config.Config) (string, bool, error) {
		return credentialStatus(cfg.Providers.RapidAPI.APIKey != "", "trademark check fails open")
	}},
	{label: "Domain inventory (GoDaddy)", run: func(_ context.Context, cfg *config.Config) (string, bool, error) {
		gd := cfg.Providers.GoDaddy
		return credentialStatus(gd.APIKey != "" && gd.APISecret != "", "RDAP only")
	}},
	{label: "AI backend", run: func(_ context.Context, cfg *config.Config) (string, bool, error) {
		return credentialStatus(cfg.AILink.Configured(), "generation and analysis disabled")
	}},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long:  "Check the store, provider credentials and AI backend, and report what will be degraded.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.CLILogger
		cfg := config.GetConfig()
		if cfg == nil {
			return errors.New("config not loaded")
		}

		logger.Info("=== " + binaryName + " doctor ===")
		failed := 0
		total := len(doctorChecks)
		for i, check := range doctorChecks {
			detail, warn, err := check.run(cmd.Context(), cfg)
			prefix := fmt.Sprintf("[%d/%d] %s...", i+1, total, check.label)
			switch {
			case err != nil:
				failed++
				logger.Error(prefix+" ❌", zap.Error(err))
			case warn:
				logger.Warn(prefix + " ⚠️  " + detail)
			default:
				logger.Info(prefix + " ✅ " + detail)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, total)
		}
		logger.Info("All required checks passed")
		return nil
	},
}

var doctorInitForce bool

var doctorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := config.DefaultConfigDir()
		if dir == "" {
			return errors.New("config directory not resolved")
		}
		path := filepath.Join(dir, "namefinder.yaml")
		if _, err := os.Stat(path); err == nil && !doctorInitForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}

		data, err := starterConfig()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
		observability.CLILogger.Info("Config initialized", zap.String("path", path))
		return nil
	},
}

func init() {
	doctorInitCmd.Flags().BoolVar(&doctorInitForce, "force", false, "overwrite an existing config file")
	doctorCmd.AddCommand(doctorInitCmd)
	rootCmd.AddCommand(doctorCmd)
}

func checkStore(ctx context.Context, cfg *config.Config) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	db, err := openStore(ctx)
	if err != nil {
		return "", false, err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup
	if err := db.CheckHealth(ctx); err != nil {
		return "", false, err
	}
	if cfg.Store.URL != "" {
		return cfg.Store.URL + " (remote)", false, nil
	}
	path := cfg.Store.Path
	if path == "" {
		path = config.DefaultStorePath()
	}
	return path, false, nil
}

func credentialStatus(configured bool, degraded string) (string, bool, error) {
	if configured {
		return "configured", false, nil
	}
	return "not configured (" + degraded + ")", true, nil
}

// starterConfig renders a config skeleton with empty credentials.
func starterConfig() ([]byte, error) {
	skeleton := map[string]any{
		"providers": map[string]any{
			"serper":   map[string]any{"api_key": ""},
			"rapidapi": map[string]any{"api_key": ""},
			"godaddy":  map[string]any{"api_key": "", "api_secret": ""},
		},
		"checks": map[string]any{
			"web_search": map[string]any{"enabled": true, "can_fail": false},
			"domain":     map[string]any{"enabled": true, "can_fail": true, "tlds": []string{".com"}},
			"trademark":  map[string]any{"enabled": true, "can_fail": false},
		},
		"engine": map[string]any{"name_count": 10, "max_rounds": 3, "concurrency": 1},
		"ailink": map[string]any{
			"default_provider": "main",
			"providers": map[string]any{
				"main": map[string]any{
					"enabled":     true,
					"ai_provider": "anthropic",
					"models":      map[string]any{"default": "claude-sonnet-4-5"},
					"credentials": []map[string]any{{"enabled": true, "label": "default", "api_key": "", "priority": 0}},
				},
			},
		},
	}
	data, err := yaml.Marshal(skeleton)
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	return data, nil
}
