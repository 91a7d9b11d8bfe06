// Package cli implements the xman command line interface for inspecting
// experiment run directories.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xman",
		Short: "xman lists, inspects, and prunes experiment run directories",
		Long: `xman is the companion tool for the xmanager library. It operates on
experiment base directories containing timestamped run directories, each
holding a source snapshot, run metadata, and serialized parameters.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")

	// Add subcommands
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newPruneCmd())

	return rootCmd
}
