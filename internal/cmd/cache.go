package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ccdaniele/name-finder/internal/core/store"
	"github.com/ccdaniele/name-finder/internal/output"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or purge cached check results",
}

var cacheListCmd = &cobra.Command{
	Use:   "list [name]",
	Short: "List unexpired cached checks, optionally for one name",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheList,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries (or all with --all)",
	RunE:  runCachePurge,
}

func init() {
	addOutputFlags(cacheListCmd, output.FormatTable, "table|json")
	cachePurgeCmd.Flags().Bool("all", false, "Delete every cached entry, not only expired ones")

	cacheCmd.AddCommand(cacheListCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	format, err := resolveOutputFormat(cmd)
	if err != nil {
		return err
	}
	if format != output.FormatJSON && format != output.FormatTable {
		return fmt.Errorf("unsupported output format: %s", format)
	}
	name := ""
	if len(args) == 1 {
		name = strings.TrimSpace(args[0])
	}

	db, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	entries, err := db.ListCachedChecks(cmd.Context(), name)
	if err != nil {
		return err
	}

	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		return writeResult(cmd, "cache-list", format, string(payload))
	}
	return writeResult(cmd, "cache-list", format, renderCacheEntries(entries))
}

func renderCacheEntries(entries []store.CacheEntry) string {
	if len(entries) == 0 {
		return "No cached checks."
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Name", "Check", "Variant", "Passed", "Checked", "Expires"})
	for _, e := range entries {
		variant := e.Variant
		if variant == "" {
			variant = "-"
		}
		t.AppendRow(table.Row{
			e.Name,
			string(e.CheckType),
			variant,
			e.Passed,
			e.CheckedAt.Format("2006-01-02 15:04"),
			e.ExpiresAt.Format("2006-01-02 15:04"),
		})
	}
	return t.Render()
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	all, _ := cmd.Flags().GetBool("all")

	db, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	deleted, err := db.PurgeCache(cmd.Context(), all)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cache entr(ies)\n", deleted)
	return err
}
