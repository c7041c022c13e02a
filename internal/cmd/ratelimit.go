package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ccdaniele/name-finder/internal/core/store"
	"github.com/ccdaniele/name-finder/internal/output"
)

var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Inspect or reset persisted provider rate limit state",
}

var rateLimitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rate limit state",
	RunE:  runRateLimitList,
}

var rateLimitResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stored rate limit state",
	RunE:  runRateLimitReset,
}

func init() {
	rateLimitListCmd.Flags().String("prefix", "", "List endpoints with matching prefix")
	addOutputFlags(rateLimitListCmd, output.FormatTable, "table|json")

	rateLimitResetCmd.Flags().Bool("all", false, "Reset all endpoints")
	rateLimitResetCmd.Flags().String("endpoint", "", "Reset a single endpoint (exact match)")
	rateLimitResetCmd.Flags().String("prefix", "", "Reset endpoints with matching prefix")
	rateLimitResetCmd.Flags().Bool("yes", false, "Confirm resetting every endpoint")
	rateLimitResetCmd.Flags().Bool("dry-run", false, "Show what would be deleted")

	rateLimitCmd.AddCommand(rateLimitListCmd, rateLimitResetCmd)
	rootCmd.AddCommand(rateLimitCmd)
}

func runRateLimitList(cmd *cobra.Command, _ []string) error {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	if format != output.FormatJSON && format != output.FormatTable {
		return fmt.Errorf("unsupported output format: %s", format)
	}
	prefix, _ := cmd.Flags().GetString("prefix")

	db, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	query := store.RateLimitQuery{Prefix: strings.TrimSpace(prefix)}
	query.All = query.Prefix == ""
	entries, err := db.ListRateLimits(cmd.Context(), query)
	if err != nil {
		return err
	}

	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		return writeResult(cmd, "ratelimit-list", format, string(payload))
	}
	return writeResult(cmd, "ratelimit-list", format, renderRateLimits(entries))
}

func renderRateLimits(entries []store.RateLimitEntry) string {
	if len(entries) == 0 {
		return "No stored rate limit state."
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Endpoint", "Requests", "Window Start", "Backoff Until"})
	for _, e := range entries {
		backoff := "-"
		if e.State.BackoffUntil != nil {
			backoff = e.State.BackoffUntil.UTC().Format(time.RFC3339)
		}
		windowStart := "-"
		if !e.State.WindowStart.IsZero() {
			windowStart = e.State.WindowStart.UTC().Format(time.RFC3339)
		}
		t.AppendRow(table.Row{e.Endpoint, e.State.RequestCount, windowStart, backoff})
	}
	return t.Render()
}

func runRateLimitReset(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")
	endpoint, _ := cmd.Flags().GetString("endpoint")
	prefix, _ := cmd.Flags().GetString("prefix")
	yes, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	query := store.RateLimitQuery{
		All:      all,
		Endpoint: strings.TrimSpace(endpoint),
		Prefix:   strings.TrimSpace(prefix),
	}
	if err := query.Validate(); err != nil {
		return err
	}
	if query.All && !yes && !dryRun {
		return errors.New("--all requires --yes (or use --dry-run)")
	}

	db, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	if dryRun {
		matched, err := db.ListRateLimits(cmd.Context(), query)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Would reset %d endpoint(s)\n", len(matched))
		return err
	}

	deleted, err := db.ResetRateLimits(cmd.Context(), query)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Reset %d endpoint(s)\n", deleted)
	return err
}
