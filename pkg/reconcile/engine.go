// Package reconcile implements the manifest-driven reconciliation
// engine: for each configuration group and each of its sources it
// determines current disk state, compares it against the desired state,
// and performs the minimal safe action. One source's failure never
// aborts the rest of the run; failures accumulate in the summary.
package reconcile

import (
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/git"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/platform"
	"github.com/arthur-debert/dotsync/pkg/report"
	"github.com/arthur-debert/dotsync/pkg/snapshot"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Engine holds the execution context for one reconciliation run. All
// state that used to be ambient (current platform, dry-run) is an
// explicit field here.
type Engine struct {
	FS        types.FS
	Paths     paths.Paths
	Snapshots *snapshot.Service
	Platform  platform.Tag
	DryRun    bool

	// Retention is the backup retention count applied when pruning.
	Retention int
}

// sourceVariant is the closed set the per-source dispatch matches over.
type sourceVariant int

const (
	plainFile sourceVariant = iota
	plainDirectory
	extractSource
)

func classify(src types.Source) sourceVariant {
	switch {
	case src.Kind == types.KindFile && src.Extract != nil:
		return extractSource
	case src.Kind == types.KindDirectory:
		return plainDirectory
	default:
		return plainFile
	}
}

// UpdateOptions control the update pass.
type UpdateOptions struct {
	SkipPull bool
	Force    bool
}

// Install runs the install pass over all groups: first-run imports,
// symlink creation, and extraction initialization.
func (e *Engine) Install(m *types.Manifest) (*report.Summary, error) {
	logger := logging.GetLogger("reconcile.install")
	summary := report.NewSummary()

	for _, group := range m.Groups {
		for _, src := range group.Sources {
			if !platform.Matches(e.Platform, src.Platforms) {
				summary.Add(report.Outcome{
					Group:  group.Name,
					Path:   src.Path,
					Status: report.StatusSkipped,
					Detail: "not applicable on " + string(e.Platform),
				})
				continue
			}

			var outcome report.Outcome
			switch classify(src) {
			case plainFile:
				outcome = e.installPlainFile(group.Name, src)
			case plainDirectory:
				outcome = e.installPlainDirectory(group.Name, src)
			case extractSource:
				outcome = e.syncExtract(group.Name, src, true)
			}
			summary.Add(outcome)
		}
		logger.Debug().Str("group", group.Name).Msg("group processed")
	}

	logger.Info().Int("sources", len(summary.Outcomes)).Int("issues", summary.IssueCount()).Msg("install pass complete")
	return summary, nil
}

// Update runs the update pass: optional version-control pull, then
// verification of every eligible source, then backup pruning. Pruning
// runs even on a dry run.
func (e *Engine) Update(m *types.Manifest, vc *git.Runner, opts UpdateOptions) (*report.Summary, error) {
	logger := logging.GetLogger("reconcile.update")
	summary := report.NewSummary()

	if !opts.SkipPull && vc != nil {
		if err := e.pull(vc, opts.Force); err != nil {
			return nil, err
		}
	}

	for _, group := range m.Groups {
		for _, src := range group.Sources {
			if !platform.Matches(e.Platform, src.Platforms) {
				summary.Add(report.Outcome{
					Group:  group.Name,
					Path:   src.Path,
					Status: report.StatusSkipped,
					Detail: "not applicable on " + string(e.Platform),
				})
				continue
			}

			var outcome report.Outcome
			switch classify(src) {
			case extractSource:
				// Update never extracts fresh data from home; only the
				// populated repo-to-home direction runs here.
				outcome = e.syncExtract(group.Name, src, false)
			default:
				outcome = e.verifySource(group.Name, src)
			}
			summary.Add(outcome)
		}
	}

	if err := e.Snapshots.Prune(e.Retention); err != nil {
		logger.Warn().Err(err).Msg("backup pruning failed")
	}

	logger.Info().Int("sources", len(summary.Outcomes)).Int("issues", summary.IssueCount()).Msg("update pass complete")
	return summary, nil
}

// pull enforces the clean-tree requirement and fast-forwards from the
// remote. A dry run checks cleanliness but does not pull.
func (e *Engine) pull(vc *git.Runner, force bool) error {
	logger := logging.GetLogger("reconcile.update")

	clean, err := vc.IsClean()
	if err != nil {
		return errors.Wrap(err, errors.ErrGitPullFailed, "cannot determine working tree state")
	}
	if !clean && !force {
		return errors.New(errors.ErrDirtyWorkingTree,
			"working tree has uncommitted changes; commit them or re-run with --force")
	}
	if e.DryRun {
		logger.Info().Msg("dry run: skipping git pull")
		return nil
	}
	result, err := vc.Pull()
	if err != nil {
		return err
	}
	if result == git.PullUpdated {
		logger.Info().Msg("pulled new changes")
	}
	return nil
}

// installPlainFile handles kind=file sources without an extract spec:
// import the home file into the repository on first encounter, then
// link the home path to the repository copy.
func (e *Engine) installPlainFile(group string, src types.Source) report.Outcome {
	home := e.Paths.ExpandHome(src.Path)
	repo := e.Paths.SourceRepoPath(group, src)

	imported := false
	if !filesystem.Exists(e.FS, repo) {
		info, err := e.FS.Lstat(home)
		if err != nil || !info.Mode().IsRegular() {
			return report.Outcome{
				Group:  group,
				Path:   src.Path,
				Status: report.StatusRepoFileNotFound,
				Detail: "neither repository file nor home file exists",
			}
		}
		if !e.DryRun {
			if err := filesystem.CopyFile(e.FS, home, repo); err != nil {
				return report.Outcome{Group: group, Path: src.Path, Status: report.StatusRepoFileNotFound, Err: err}
			}
		}
		imported = true
	}

	outcome := e.linkInto(group, src.Path, home, repo)
	if imported && outcome.Status == report.StatusLinked {
		outcome.Status = report.StatusImported
		outcome.Detail = "home content imported into repository"
	}
	outcome.DryRun = outcome.DryRun || (imported && e.DryRun)
	return outcome
}

// installPlainDirectory handles kind=directory sources; symmetric to
// plain files, with a directory copy and the mode-dependent repository
// path.
func (e *Engine) installPlainDirectory(group string, src types.Source) report.Outcome {
	home := e.Paths.ExpandHome(src.Path)
	repo := e.Paths.SourceRepoPath(group, src)

	imported := false
	if !filesystem.Exists(e.FS, repo) {
		info, err := e.FS.Lstat(home)
		if err != nil || !info.IsDir() {
			return report.Outcome{
				Group:  group,
				Path:   src.Path,
				Status: report.StatusRepoFileNotFound,
				Detail: "neither repository directory nor home directory exists",
			}
		}
		if !e.DryRun {
			if err := filesystem.CopyTree(e.FS, home, repo); err != nil {
				return report.Outcome{Group: group, Path: src.Path, Status: report.StatusRepoFileNotFound, Err: err}
			}
		}
		imported = true
	}

	outcome := e.linkInto(group, src.Path, home, repo)
	if imported && outcome.Status == report.StatusLinked {
		outcome.Status = report.StatusImported
		outcome.Detail = "home content imported into repository"
	}
	outcome.DryRun = outcome.DryRun || (imported && e.DryRun)
	return outcome
}
