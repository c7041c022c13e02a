package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccdaniele/name-finder/internal/core"
	"github.com/ccdaniele/name-finder/internal/core/engine"
	"github.com/ccdaniele/name-finder/internal/observability"
	"github.com/ccdaniele/name-finder/internal/output"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate names and clear them until the requested count passes",
	Long: `Run generates candidate names from a business description (or a saved
preference profile), validates each candidate, and asks the generator for
replacements of rejected names for a bounded number of rounds.

The finished run is saved and can be exported later with "namefinder export".`,
	Example: `  namefinder run --description "Organic cold brew subscription for offices" --count 5
  namefinder run --profile profile.json --insights "avoid words ending in -ly"`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Derive a preference profile from a business description",
	Args:  cobra.NoArgs,
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(analyzeCmd)

	runCmd.Flags().String("description", "", "Business description to analyze")
	runCmd.Flags().String("document", "", "Optional supporting document (text file)")
	runCmd.Flags().String("profile", "", "Preference profile JSON file (skips analysis)")
	runCmd.Flags().String("insights", "", "Extra guidance for the generator")
	runCmd.Flags().Int("count", 0, "Number of names to clear (default from config)")
	runCmd.Flags().StringSlice("exclude", nil, "Names the generator must not propose")
	runCmd.Flags().Bool("no-cache", false, "Skip cached check results")
	addOutputFlags(runCmd, output.FormatTable, "table|json|markdown|csv")

	analyzeCmd.Flags().String("description", "", "Business description to analyze")
	analyzeCmd.Flags().String("document", "", "Optional supporting document (text file)")
	analyzeCmd.Flags().String("out", "", "Write the profile to a file (default stdout)")
	_ = analyzeCmd.MarkFlagRequired("description")
}

func runRun(cmd *cobra.Command, _ []string) error {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	description, _ := cmd.Flags().GetString("description")
	documentPath, _ := cmd.Flags().GetString("document")
	profilePath, _ := cmd.Flags().GetString("profile")
	insights, _ := cmd.Flags().GetString("insights")
	count, _ := cmd.Flags().GetInt("count")
	excluded, _ := cmd.Flags().GetStringSlice("exclude")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	if strings.TrimSpace(description) == "" && profilePath == "" {
		return fmt.Errorf("either --description or --profile is required")
	}

	logger := observability.CLILogger
	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{noCache: noCache, progress: func(p core.Progress) {
		logger.Debug("Run progress",
			zap.String("name", p.CurrentName),
			zap.String("step", string(p.CurrentStep)),
			zap.Int("processed", p.ProcessedCount),
			zap.Int("total", p.TotalNames),
			zap.Int("passed", p.PassedCount),
			zap.Int("failed", p.FailedCount),
			zap.Int("round", p.ReplacementRound))
	}})
	if err != nil {
		return err
	}
	defer a.Close() // nolint:errcheck // best-effort cleanup
	if err := a.requireLLM(); err != nil {
		return err
	}
	if count <= 0 {
		count = a.cfg.Engine.NameCount
	}

	var profile core.PreferenceSummary
	if profilePath != "" {
		profile, err = readProfile(profilePath)
	} else {
		var document string
		if document, err = readOptionalFile(documentPath); err == nil {
			logger.Info("Analyzing business description")
			profile, err = a.analyzer.Analyze(ctx, description, document)
		}
	}
	if err != nil {
		return err
	}

	logger.Info("Starting run", zap.Int("count", count), zap.String("industry", profile.Industry))
	run, err := a.runner.Run(ctx, engine.RunRequest{
		Profile:       profile,
		Insights:      insights,
		Count:         count,
		ExcludedNames: excluded,
	})
	if err != nil {
		return err
	}
	result := run.Snapshot()
	if err := a.store.SaveRun(ctx, profile.Industry, result); err != nil {
		logger.Warn("Failed to save run", zap.String("run_id", result.RunID), zap.Error(err))
	}
	logger.Info("Run finished",
		zap.String("run_id", result.RunID),
		zap.Int("passed", len(result.Passed)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("rounds", result.Rounds),
		zap.Bool("cancelled", result.Cancelled))

	rendered, err := output.NewFormatter(format).FormatRun(&result)
	if err != nil {
		return err
	}
	return writeResult(cmd, "run-"+result.RunID, format, rendered)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	description, _ := cmd.Flags().GetString("description")
	documentPath, _ := cmd.Flags().GetString("document")

	document, err := readOptionalFile(documentPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close() // nolint:errcheck // best-effort cleanup
	if err := a.requireLLM(); err != nil {
		return err
	}

	profile, err := a.analyzer.Analyze(ctx, description, document)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("out")
	sink, err := openSink(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = sink.close() }()
	_, err = fmt.Fprintln(sink.writer, string(data))
	return err
}

func readProfile(path string) (core.PreferenceSummary, error) {
	var profile core.PreferenceSummary
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read profile: %w", err)
	}
	if err := json.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return profile, nil
}

func readOptionalFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}
