// Package git wraps the version-control operations dotsync needs: a
// cleanliness check and a pull. Everything shells out to the git
// binary; the repository is treated as an opaque external service.
package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
)

// PullResult classifies the outcome of a pull.
type PullResult int

const (
	// PullUpToDate means the working tree already matched the remote.
	PullUpToDate PullResult = iota
	// PullUpdated means new commits were fetched and applied.
	PullUpdated
)

// Runner executes git commands inside one repository.
type Runner struct {
	dir string
}

// NewRunner creates a Runner for the repository at dir.
func NewRunner(dir string) *Runner {
	return &Runner{dir: dir}
}

// IsRepository checks whether dir contains a git repository.
func (r *Runner) IsRepository() bool {
	info, err := os.Stat(filepath.Join(r.dir, ".git"))
	return err == nil && info.IsDir()
}

// IsClean reports whether the working tree has no uncommitted changes.
func (r *Runner) IsClean() (bool, error) {
	out, err := r.run("status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// Pull fast-forwards the repository from its remote. Pull failure is
// fatal for the caller's run.
func (r *Runner) Pull() (PullResult, error) {
	logger := logging.GetLogger("git")

	out, err := r.run("pull", "--ff-only")
	if err != nil {
		return PullUpToDate, errors.Wrap(err, errors.ErrGitPullFailed, "git pull failed")
	}
	if strings.Contains(out, "Already up to date") || strings.Contains(out, "Already up-to-date") {
		logger.Debug().Msg("repository already up to date")
		return PullUpToDate, nil
	}
	logger.Info().Msg("repository updated from remote")
	return PullUpdated, nil
}

func (r *Runner) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInternal, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(output)))
	}
	return string(output), nil
}
