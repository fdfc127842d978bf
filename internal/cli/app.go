// Package cli wires the runtime pieces every dotsync command needs:
// filesystem, paths, configuration, snapshots, and the reconciliation
// engine, built once per invocation from the global flags.
package cli

import (
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/git"
	"github.com/arthur-debert/dotsync/pkg/groups"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/manifest"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/platform"
	"github.com/arthur-debert/dotsync/pkg/reconcile"
	"github.com/arthur-debert/dotsync/pkg/report"
	"github.com/arthur-debert/dotsync/pkg/snapshot"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// GlobalOptions are the root-level flags shared by all commands.
type GlobalOptions struct {
	Root      string
	DryRun    bool
	Verbosity int
}

// App bundles the per-run dependencies.
type App struct {
	FS        types.FS
	Paths     paths.Paths
	Config    *config.Config
	Snapshots *snapshot.Service
	Platform  platform.Tag
	DryRun    bool
}

// NewApp builds the runtime context from the global options.
func NewApp(opts *GlobalOptions) (*App, error) {
	logger := logging.GetLogger("cli")

	fs := filesystem.NewOS()
	p, err := paths.New(opts.Root)
	if err != nil {
		return nil, err
	}
	if p.UsedFallback() {
		logger.Warn().Str("root", p.Root()).
			Msg("DOTSYNC_ROOT not set, using current directory as dotfiles root")
	}

	cfg, err := config.Load(p.ConfigFilePath())
	if err != nil {
		return nil, err
	}

	return &App{
		FS:        fs,
		Paths:     p,
		Config:    cfg,
		Snapshots: snapshot.New(fs, p.BackupsDir()),
		Platform:  platform.Resolve(),
		DryRun:    opts.DryRun,
	}, nil
}

// LoadManifest reads the manifest from the repository root.
func (a *App) LoadManifest() (*types.Manifest, error) {
	return manifest.Load(a.FS, a.Paths.ManifestPath())
}

// Engine builds a reconciliation engine for this run.
func (a *App) Engine() *reconcile.Engine {
	return &reconcile.Engine{
		FS:        a.FS,
		Paths:     a.Paths,
		Snapshots: a.Snapshots,
		Platform:  a.Platform,
		DryRun:    a.DryRun,
		Retention: a.Config.Backups.Retention,
	}
}

// Editor builds a group editor.
func (a *App) Editor() *groups.Editor {
	return &groups.Editor{FS: a.FS, Paths: a.Paths, Snapshots: a.Snapshots}
}

// GitRunner returns the version-control runner, or nil when git is
// disabled by configuration or the root is not a git repository.
func (a *App) GitRunner() *git.Runner {
	if !a.Config.Git.Enabled {
		return nil
	}
	r := git.NewRunner(a.Paths.Root())
	if !r.IsRepository() {
		logger := logging.GetLogger("cli")
		logger.Debug().Str("root", a.Paths.Root()).Msg("not a git repository, skipping version control")
		return nil
	}
	return r
}

// ColorEnabled resolves the output.color setting for this terminal.
func (a *App) ColorEnabled() bool {
	return report.ColorEnabled(a.Config.Output.Color)
}
