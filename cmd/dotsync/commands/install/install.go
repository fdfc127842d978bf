package install

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/internal/cli"
	"github.com/arthur-debert/dotsync/pkg/report"
)

// NewCommand creates the install command
func NewCommand(opts *cli.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "install",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.NewApp(opts)
			if err != nil {
				return err
			}
			m, err := app.LoadManifest()
			if err != nil {
				return err
			}

			summary, err := app.Engine().Install(m)
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
}
