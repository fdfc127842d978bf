package update

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/internal/cli"
	"github.com/arthur-debert/dotsync/pkg/reconcile"
	"github.com/arthur-debert/dotsync/pkg/report"
)

// NewCommand creates the update command
func NewCommand(opts *cli.GlobalOptions) *cobra.Command {
	var (
		dryRun   bool
		skipPull bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:     "update",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				opts.DryRun = true
			}
			app, err := cli.NewApp(opts)
			if err != nil {
				return err
			}
			m, err := app.LoadManifest()
			if err != nil {
				return err
			}

			summary, err := app.Engine().Update(m, app.GitRunner(), reconcile.UpdateOptions{
				SkipPull: skipPull,
				Force:    force,
			})
			if err != nil {
				return err
			}

			report.Render(cmd.OutOrStdout(), summary, app.ColorEnabled())
			if summary.HasIssues() {
				return cli.ErrIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would happen without changing anything")
	cmd.Flags().BoolVar(&skipPull, "skip-pull", false, "Skip the git pull step")
	cmd.Flags().BoolVar(&force, "force", false, "Proceed even if the working tree has uncommitted changes")
	return cmd
}
