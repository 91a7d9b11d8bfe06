package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shuiruge/xmanager/internal/output"
)

// newShowCmd creates the show command
func newShowCmd() *cobra.Command {
	var metaOnly bool

	cmd := &cobra.Command{
		Use:   "show <run-dir>",
		Short: "Display the metadata and parameters of a run",
		Long: `Display the recorded metadata and the serialized parameters of one
run directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			splog := output.NewSplogTo(cmd.OutOrStdout(), debug)

			dir := args[0]
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("run directory not found: %w", err)
			}

			if meta := readRunMeta(dir); meta != nil {
				splog.Info("Run     %s", meta.RunID)
				splog.Info("Created %s", meta.CreatedAt.Format("2006-01-02 15:04:05"))
				if meta.Source != "" {
					splog.Info("Source  %s", output.ColorDim(meta.Source))
				}
				if meta.Git != nil {
					commit := meta.Git.Commit
					if meta.Git.Branch != "" {
						commit += " (" + meta.Git.Branch + ")"
					}
					if meta.Git.Dirty {
						commit += " " + output.ColorWarn("dirty")
					}
					splog.Info("Git     %s", commit)
				}
			} else {
				splog.Warn("no meta.json in %s", dir)
			}

			if metaOnly {
				return nil
			}

			params, err := readParams(dir)
			if err != nil {
				if os.IsNotExist(err) {
					splog.Info("No params.json (run has not saved parameters)")
					return nil
				}
				return err
			}

			pretty, err := json.MarshalIndent(params, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to format params: %w", err)
			}
			splog.Page(string(pretty))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&metaOnly, "meta", "m", false, "Show only run metadata, not parameters")

	return cmd
}
