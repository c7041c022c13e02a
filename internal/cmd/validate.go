package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/config"
	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/observability"
	"github.com/ccdaniele/name-finder/internal/output"
)

var validateCmd = &cobra.Command{
	Use:   "validate <name> [name...]",
	Short: "Run names through web, domain and trademark clearance",
	Long: `Validate runs each name through the clearance pipeline: web presence,
domain availability, USPTO trademark search and scoring. Names are
validated in order and the report lists both passing and rejected names.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("category", string(core.DistinctivenessSuggestive), "Distinctiveness category: fanciful|arbitrary|suggestive|descriptive|generic")
	validateCmd.Flags().String("industry", "", "Industry used to judge web conflicts")
	validateCmd.Flags().IntSlice("classes", nil, "Nice classes for trademark overlap (comma-separated)")
	validateCmd.Flags().StringSlice("tlds", nil, "TLDs to check (default from config)")
	validateCmd.Flags().Bool("no-cache", false, "Skip cached check results")
	addOutputFlags(validateCmd, output.FormatTable, "table|json|markdown|csv")
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	categoryRaw, _ := cmd.Flags().GetString("category")
	industry, _ := cmd.Flags().GetString("industry")
	classes, _ := cmd.Flags().GetIntSlice("classes")
	tlds, _ := cmd.Flags().GetStringSlice("tlds")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	category, err := core.ParseDistinctivenessCategory(categoryRaw)
	if err != nil {
		return err
	}
	checks, err := checksWithTLDs(tlds)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{noCache: noCache, checks: checks})
	if err != nil {
		return err
	}
	defer a.Close() // nolint:errcheck // best-effort cleanup

	profile := core.PreferenceSummary{Industry: strings.TrimSpace(industry)}
	for _, n := range classes {
		profile.USPTOClasses = append(profile.USPTOClasses, core.USPTOClass{ClassNumber: n})
	}

	result := core.RunResult{Passed: []core.ValidatedName{}, Failed: []core.FailedName{}, Requested: len(args)}
	logger := observability.CLILogger
	for _, raw := range args {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		outcome, err := a.pipeline.Validate(ctx, core.GeneratedName{Name: name, DistinctivenessCategory: category}, profile,
			func(step core.ValidationStep) {
				logger.Debug("Validation step", zap.String("name", name), zap.String("step", string(step)))
			})
		if err != nil {
			if ctx.Err() == nil {
				return err
			}
			result.Cancelled = true
			break
		}
		if outcome.Validated != nil {
			result.Passed = append(result.Passed, *outcome.Validated)
			logger.Info("Name passed", zap.String("name", name))
		} else {
			result.Failed = append(result.Failed, *outcome.Failed)
			logger.Info("Name rejected",
				zap.String("name", name),
				zap.String("step", string(outcome.Failed.FailureStep)),
				zap.String("reason", outcome.Failed.FailureReason))
		}
	}

	rendered, err := output.NewFormatter(format).FormatRun(&result)
	if err != nil {
		return err
	}
	return writeResult(cmd, "validate-"+args[0], format, rendered)
}

// checksWithTLDs returns the configured checks with the TLD list replaced,
// or nil when no TLDs were given.
func checksWithTLDs(tlds []string) (*core.ValidationConfig, error) {
	if len(tlds) == 0 {
		return nil, nil
	}
	cfg := config.GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	checks := cfg.Checks
	checks.Domain.TLDs = append([]string(nil), tlds...)
	if err := checks.Validate(); err != nil {
		return nil, err
	}
	return &checks, nil
}
