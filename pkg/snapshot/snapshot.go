// Package snapshot creates timestamped backups of files and directories
// before they are overwritten or removed, and prunes old backups to a
// retention count. Backups are non-authoritative: losing them never
// corrupts reconciliation state, they exist purely for manual recovery.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// timestampLayout sorts lexicographically in creation order, which is
// what Prune relies on.
const timestampLayout = "20060102_150405"

// removedPrefix marks archives of removed groups; they are never pruned.
const removedPrefix = "removed_"

// Handle identifies a backup that was taken. A zero Handle means the
// source did not exist and nothing was copied.
type Handle struct {
	Path string
}

// Taken reports whether a backup was actually created.
func (h Handle) Taken() bool {
	return h.Path != ""
}

// Service writes snapshots under a single timestamped root per run.
type Service struct {
	fs         types.FS
	backupsDir string
	now        func() time.Time
	runRoot    string
}

// New creates a snapshot service storing backups under backupsDir.
func New(fs types.FS, backupsDir string) *Service {
	return &Service{fs: fs, backupsDir: backupsDir, now: time.Now}
}

// NewWithClock creates a service with an injected clock, for tests.
func NewWithClock(fs types.FS, backupsDir string, now func() time.Time) *Service {
	return &Service{fs: fs, backupsDir: backupsDir, now: now}
}

// Backup copies sourcePath (dereferencing symlinks) into this run's
// backup root, namespaced by group. A missing source is a no-op and
// returns an empty handle. I/O failure surfaces as BACKUP_FAILED so the
// caller can refuse the destructive action it was about to take.
func (s *Service) Backup(sourcePath, group string) (Handle, error) {
	logger := logging.GetLogger("snapshot")

	info, err := s.fs.Stat(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Handle{}, nil
		}
		return Handle{}, errors.Wrapf(err, errors.ErrBackupFailed, "cannot stat %s", sourcePath)
	}

	root, err := s.ensureRunRoot()
	if err != nil {
		return Handle{}, err
	}

	dest := filepath.Join(root, group, filepath.Base(sourcePath))
	if info.IsDir() {
		err = filesystem.CopyTree(s.fs, sourcePath, dest)
	} else {
		err = filesystem.CopyFile(s.fs, sourcePath, dest)
	}
	if err != nil {
		return Handle{}, errors.Wrapf(err, errors.ErrBackupFailed, "cannot back up %s", sourcePath)
	}

	logger.Info().Str("source", sourcePath).Str("backup", dest).Msg("backup created")
	return Handle{Path: dest}, nil
}

// Prune keeps the most recent retention backup roots and deletes the
// rest. Removed-group archives are not counted and not deleted. Safe to
// call when fewer than retention roots exist.
func (s *Service) Prune(retention int) error {
	logger := logging.GetLogger("snapshot")

	entries, err := s.fs.ReadDir(s.backupsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read backups directory %s", s.backupsDir)
	}

	var roots []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), removedPrefix) {
			continue
		}
		roots = append(roots, entry.Name())
	}
	if len(roots) <= retention {
		return nil
	}

	sort.Strings(roots)
	for _, name := range roots[:len(roots)-retention] {
		path := filepath.Join(s.backupsDir, name)
		if err := s.fs.RemoveAll(path); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot prune backup %s", path)
		}
		logger.Debug().Str("backup", path).Msg("pruned old backup")
	}
	return nil
}

// ArchiveRemovedGroup moves a removed group's repository subtree into a
// dedicated archive. The archive is the only recovery path after
// removal and is excluded from pruning.
func (s *Service) ArchiveRemovedGroup(groupDir, group string) (string, error) {
	logger := logging.GetLogger("snapshot")

	if !filesystem.Exists(s.fs, groupDir) {
		return "", nil
	}
	dest := filepath.Join(s.backupsDir, fmt.Sprintf("%s%s_%s", removedPrefix, s.timestamp(), group))
	if err := s.fs.MkdirAll(s.backupsDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", s.backupsDir)
	}
	if err := s.fs.Rename(groupDir, dest); err != nil {
		return "", errors.Wrapf(err, errors.ErrBackupFailed, "cannot archive %s", groupDir)
	}

	logger.Info().Str("group", group).Str("archive", dest).Msg("archived removed group")
	return dest, nil
}

// ensureRunRoot lazily creates the timestamped root for this run, so
// runs that never take a backup leave no empty directories behind.
func (s *Service) ensureRunRoot() (string, error) {
	if s.runRoot != "" {
		return s.runRoot, nil
	}
	root := filepath.Join(s.backupsDir, s.timestamp())
	if err := s.fs.MkdirAll(root, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrBackupFailed, "cannot create backup root %s", root)
	}
	s.runRoot = root
	return root, nil
}

func (s *Service) timestamp() string {
	return s.now().Format(timestampLayout)
}
