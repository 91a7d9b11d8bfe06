package cli

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/shuiruge/xmanager/internal/config"
	"github.com/shuiruge/xmanager/internal/output"
)

// newPruneCmd creates the prune command
func newPruneCmd() *cobra.Command {
	var (
		keep  int
		force bool
	)

	cmd := &cobra.Command{
		Use:   "prune [base]",
		Short: "Delete the oldest runs under a base directory",
		Long: `Delete run directories beyond the newest N under an experiment base
directory. Prompts for confirmation unless --force is given.`,
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
			if !cmd.Flags().Changed("keep") {
				keep = cfg.PruneKeep
			}
			if keep < 0 {
				return fmt.Errorf("--keep must not be negative")
			}

			runs, err := scanRuns(base)
			if err != nil {
				return err
			}
			if len(runs) <= keep {
				splog.Info("Nothing to prune: %d runs, keeping %d", len(runs), keep)
				return nil
			}

			victims := runs[:len(runs)-keep]
			for _, run := range victims {
				splog.Info("%s", output.ColorWarn(run.Name))
			}

			if !force {
				confirmed := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Delete these %d runs?", len(victims)),
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					splog.Info("Aborted")
					return nil
				}
			}

			for _, run := range victims {
				if err := os.RemoveAll(run.Dir); err != nil {
					return fmt.Errorf("failed to delete %s: %w", run.Dir, err)
				}
				splog.Debug("deleted %s", run.Dir)
			}
			splog.Info("Deleted %d runs, kept %d", len(victims), keep)
			return nil
		},
	}

	cmd.Flags().IntVarP(&keep, "keep", "k", config.DefaultPruneKeep, "Number of most recent runs to keep")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")

	return cmd
}
