package manage

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/internal/cli"
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/errors"
)

func newInitConfigCommand(opts *cli.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: MsgInitConfigShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.NewApp(opts)
			if err != nil {
				return err
			}

			path := app.Paths.ConfigFilePath()
			if _, err := os.Stat(path); err == nil {
				return errors.Newf(errors.ErrInvalidInput, "%s already exists", path)
			}

			data, err := config.Render(app.Config)
			if err != nil {
				return err
			}
			if err := app.FS.WriteFile(path, data, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
