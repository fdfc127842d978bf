package reconcile

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/report"
)

// linkInto is the single place that mutates the home directory. It
// ensures homePath is a symlink to repoPath, backing up and removing
// any pre-existing regular file or directory first. A symlink pointing
// anywhere else is never touched: the tool did not create it, so it is
// refused rather than destroyed.
func (e *Engine) linkInto(group, displayPath, homePath, repoPath string) report.Outcome {
	logger := logging.GetLogger("reconcile.link")

	info, lerr := e.FS.Lstat(homePath)
	switch {
	case lerr == nil && info.Mode()&os.ModeSymlink != 0:
		target, err := e.FS.Readlink(homePath)
		if err != nil {
			return report.Outcome{Group: group, Path: displayPath, Status: report.StatusSymlinkPointsElsewhere,
				Err: errors.Wrapf(err, errors.ErrFileAccess, "cannot read symlink %s", homePath)}
		}
		if filepath.Clean(target) == filepath.Clean(repoPath) {
			return report.Outcome{Group: group, Path: displayPath, Status: report.StatusOK}
		}
		return report.Outcome{Group: group, Path: displayPath, Status: report.StatusSymlinkPointsElsewhere,
			Detail: "points to " + target}

	case lerr == nil:
		// A real file or directory sits at the home path. Back it up
		// before removing; backup failure aborts with the original
		// untouched.
		if e.DryRun {
			return report.Outcome{Group: group, Path: displayPath, Status: report.StatusLinked,
				Detail: "would back up existing content and link", DryRun: true}
		}
		handle, err := e.Snapshots.Backup(homePath, group)
		if err != nil {
			return report.Outcome{Group: group, Path: displayPath, Status: report.StatusBackupFailed, Err: err}
		}
		if err := e.FS.RemoveAll(homePath); err != nil {
			return report.Outcome{Group: group, Path: displayPath, Status: report.StatusBackupFailed,
				Err: errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", homePath)}
		}
		if err := e.createLink(homePath, repoPath); err != nil {
			// The original is already relocated into the backup; this
			// inconsistency must be surfaced distinctly.
			logger.Error().Str("home", homePath).Str("backup", handle.Path).Err(err).
				Msg("symlink creation failed after original was moved to backup")
			return report.Outcome{Group: group, Path: displayPath, Status: report.StatusLinkFailedAfterBackup,
				Detail: "original preserved at " + handle.Path, Err: err}
		}
		return report.Outcome{Group: group, Path: displayPath, Status: report.StatusLinked,
			Detail: "previous content backed up to " + handle.Path}

	default:
		// Nothing at the home path yet.
		if e.DryRun {
			return report.Outcome{Group: group, Path: displayPath, Status: report.StatusLinked, DryRun: true}
		}
		if err := e.createLink(homePath, repoPath); err != nil {
			return report.Outcome{Group: group, Path: displayPath, Status: report.StatusWarning,
				Detail: "symlink creation failed", Err: err}
		}
		return report.Outcome{Group: group, Path: displayPath, Status: report.StatusLinked}
	}
}

func (e *Engine) createLink(homePath, repoPath string) error {
	if err := e.FS.MkdirAll(filepath.Dir(homePath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", homePath)
	}
	if err := e.FS.Symlink(repoPath, homePath); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s to %s", homePath, repoPath)
	}
	return nil
}
