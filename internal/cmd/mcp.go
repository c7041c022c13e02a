package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ccdaniele/name-finder/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the clearance tools over MCP (stdio)",
	Long: `Start a Model Context Protocol server on stdin/stdout exposing the
validate_name and score_name tools to MCP clients.

Logs go to stderr; stdout carries protocol messages only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), appOptions{})
		if err != nil {
			return err
		}
		defer a.Close() // nolint:errcheck // best-effort cleanup

		s := mcptools.New(binaryName, versionInfo.Version, mcptools.Deps{
			Validator: a.pipeline,
			Web:       a.web,
			Trademark: a.trademark,
			Scorer:    a.scorer,
		})
		return mcptools.Serve(s)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
