package reconcile

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/report"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// verifySource is the update pass for plain sources: it classifies the
// existing symlink against the expected repository target without
// mutating anything.
func (e *Engine) verifySource(group string, src types.Source) report.Outcome {
	home := e.Paths.ExpandHome(src.Path)
	repo := e.Paths.SourceRepoPath(group, src)

	if !filesystem.Exists(e.FS, repo) {
		return report.Outcome{
			Group:  group,
			Path:   src.Path,
			Status: report.StatusRepoFileNotFound,
			Detail: "repository content missing; run install",
		}
	}

	info, err := e.FS.Lstat(home)
	if err != nil {
		if os.IsNotExist(err) {
			return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMissing,
				Detail: "home path does not exist; run install"}
		}
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMissing, Err: err}
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusNotASymlink,
			Detail: "home path exists but is not a symlink"}
	}

	target, err := e.FS.Readlink(home)
	if err != nil {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusIncorrectTarget, Err: err}
	}
	if filepath.Clean(target) != filepath.Clean(repo) {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusIncorrectTarget,
			Detail: "points to " + target}
	}

	return report.Outcome{Group: group, Path: src.Path, Status: report.StatusOK}
}
