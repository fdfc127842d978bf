package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/cmd/dotsync/commands/install"
	"github.com/arthur-debert/dotsync/cmd/dotsync/commands/manage"
	"github.com/arthur-debert/dotsync/cmd/dotsync/commands/update"
	"github.com/arthur-debert/dotsync/internal/cli"
	"github.com/arthur-debert/dotsync/internal/version"
	"github.com/arthur-debert/dotsync/pkg/logging"
)

var (
	globalOpts = &cli.GlobalOptions{}

	rootCmd = &cobra.Command{
		Use:   "dotsync",
		Short: "A manifest-driven dotfiles manager",
		Long: `dotsync keeps a canonical copy of your configuration files in a
version-controlled repository and projects it into your home directory
via symlinks. A manifest declares configuration groups; install and
update reconcile the declared state against what is on disk. Single
JSON fields can be extracted and synced so secrets and unrelated
fields never enter version control.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(globalOpts.Verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&globalOpts.Verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.DryRun, "dry-run", false, "Preview changes without executing them")
	rootCmd.PersistentFlags().StringVar(&globalOpts.Root, "root", "", "Dotfiles repository root (default $DOTSYNC_ROOT)")

	rootCmd.AddCommand(install.NewCommand(globalOpts))
	rootCmd.AddCommand(update.NewCommand(globalOpts))
	rootCmd.AddCommand(manage.NewCommand(globalOpts))
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dotsync version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:                   "completion [bash|zsh|fish|powershell]",
	Short:                 "Generate shell completion script",
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate powershell completion")
			}
		}
	},
}
