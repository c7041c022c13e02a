package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ccdaniele/name-finder/internal/core/store"
	"github.com/ccdaniele/name-finder/internal/output"
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a saved run",
	Long:  "Export a saved run as a table, JSON, markdown report or CSV of the passing names.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRuns,
}

func init() {
	addOutputFlags(exportCmd, output.FormatCSV, "table|json|markdown|csv")

	runsCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	addOutputFlags(runsCmd, output.FormatTable, "table|json")

	rootCmd.AddCommand(exportCmd, runsCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}

	db, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	result, err := db.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("run not found: %s", args[0])
	}

	rendered, err := output.NewFormatter(format).FormatRun(result)
	if err != nil {
		return err
	}
	return writeResult(cmd, "run-"+result.RunID, format, rendered)
}

func runRuns(cmd *cobra.Command, _ []string) error {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	if format != output.FormatJSON && format != output.FormatTable {
		return fmt.Errorf("unsupported output format: %s", format)
	}
	limit, _ := cmd.Flags().GetInt("limit")

	db, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		return writeResult(cmd, "runs", format, string(payload))
	}
	return writeResult(cmd, "runs", format, renderRuns(runs))
}

func renderRuns(runs []store.RunSummary) string {
	if len(runs) == 0 {
		return "No saved runs."
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "INDUSTRY", "PASSED", "FAILED", "ROUNDS", "CREATED"})
	for _, r := range runs {
		passed := fmt.Sprintf("%d/%d", r.PassedCount, r.Requested)
		if r.Cancelled {
			passed += " (cancelled)"
		}
		tw.AppendRow(table.Row{
			r.ID,
			r.Industry,
			passed,
			r.FailedCount,
			strconv.Itoa(r.Rounds),
			r.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return tw.Render()
}
