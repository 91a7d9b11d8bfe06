package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shuiruge/xmanager/internal/config"
	"github.com/shuiruge/xmanager/internal/output"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [base]",
		Short:   "List experiment runs under a base directory",
		Aliases: []string{"ls"},
		Long: `List the run directories under an experiment base directory, oldest
first, with the run ID and field count recorded for each run.

If no base directory is given, the configured default is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			splog := output.NewSplogTo(cmd.OutOrStdout(), debug)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			base := cfg.BaseDir
			if len(args) > 0 {
				base = args[0]
			}

			runs, err := scanRuns(base)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				splog.Info("No runs found under %s", base)
				return nil
			}

			for i, run := range runs {
				latest := i == len(runs)-1
				line := output.ColorRunName(run.Name, latest)

				var details []string
				if run.Meta != nil {
					details = append(details, run.Meta.RunID)
					if run.Meta.Git != nil {
						commit := run.Meta.Git.Commit
						if len(commit) > 8 {
							commit = commit[:8]
						}
						if run.Meta.Git.Dirty {
							commit += " (dirty)"
						}
						details = append(details, commit)
					}
				}
				if params, err := readParams(run.Dir); err == nil {
					details = append(details, fmt.Sprintf("%d fields", len(params)))
				}
				if len(details) > 0 {
					line += "  " + output.ColorDim(strings.Join(details, "  "))
				}

				splog.Info("%s", line)
				splog.Debug("run directory: %s", run.Dir)
			}
			return nil
		},
	}

	return cmd
}
