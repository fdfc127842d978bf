package manage

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/internal/cli"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/groups"
	"github.com/arthur-debert/dotsync/pkg/platform"
	"github.com/arthur-debert/dotsync/pkg/report"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// NewCommand creates the manage command with its subcommands
func NewCommand(opts *cli.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manage",
		Short: MsgShort,
	}
	cmd.AddCommand(newAddCommand(opts))
	cmd.AddCommand(newRemoveCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newInitConfigCommand(opts))
	return cmd
}

func newAddCommand(opts *cli.GlobalOptions) *cobra.Command {
	var (
		extracts  []string
		platforms []string
	)

	cmd := &cobra.Command{
		Use:     "add <name> <path>...",
		Short:   MsgAddShort,
		Long:    MsgAddLong,
		Example: MsgAddExample,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addOpts, err := parseAddOptions(extracts, platforms)
			if err != nil {
				return err
			}

			app, err := cli.NewApp(opts)
			if err != nil {
				return err
			}
			m, err := app.LoadManifest()
			if err != nil {
				return err
			}

			name, paths := args[0], args[1:]
			if _, err := app.Editor().Add(m, name, paths, addOpts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "group %q added with %d source(s); run `dotsync install` to link\n", name, len(paths))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&extracts, "extract", nil, "Extract spec field:target, paired with paths in order (repeatable)")
	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "Restrict sources to platforms (linux, darwin, wsl)")
	return cmd
}

// parseAddOptions validates the --extract and --platform flag syntax.
func parseAddOptions(extracts, platforms []string) (groups.AddOptions, error) {
	var out groups.AddOptions
	for _, e := range extracts {
		field, target, ok := strings.Cut(e, ":")
		if !ok || field == "" || target == "" {
			return out, errors.Newf(errors.ErrInvalidInput,
				"invalid --extract %q: expected field:target", e)
		}
		out.Extracts = append(out.Extracts, types.ExtractSpec{Field: field, Target: target})
	}
	for _, p := range platforms {
		if !platform.IsValid(p) {
			return out, errors.Newf(errors.ErrInvalidInput,
				"invalid --platform %q: expected linux, darwin or wsl", p)
		}
		out.Platforms = append(out.Platforms, platform.Tag(p))
	}
	return out, nil
}

func newRemoveCommand(opts *cli.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: MsgRemoveShort,
		Long:  MsgRemoveLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.NewApp(opts)
			if err != nil {
				return err
			}
			m, err := app.LoadManifest()
			if err != nil {
				return err
			}

			_, summary, err := app.Editor().Remove(m, args[0])
			if err != nil {
				return err
			}
			report.Render(cmd.OutOrStdout(), summary, app.ColorEnabled())
			return nil
		},
	}
}

func newListCommand(opts *cli.GlobalOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.NewApp(opts)
			if err != nil {
				return err
			}
			m, err := app.LoadManifest()
			if err != nil {
				return err
			}
			return report.RenderGroupList(cmd.OutOrStdout(), m, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "Show every source with its platform and extract metadata")
	return cmd
}
