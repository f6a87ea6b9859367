// Package commands wires the CLI surface: project setup, chart and journal
// edits, bank imports, financial reports, and agent runs.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallied-dev/tallied/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tallied",
		Short:   "Plain-text double-entry bookkeeping for small businesses",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newAddCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newAgentCommand())

	return rootCmd
}
