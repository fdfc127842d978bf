package filesystem

import (
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// CopyFile copies a single file, following symlinks on the source side
// and preserving the file mode. Parent directories of dst are created.
func CopyFile(fs types.FS, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "%s is a directory, not a file", src)
	}
	data, err := fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}
	if err := fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", dst)
	}
	if err := fs.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dst)
	}
	return nil
}

// CopyTree recursively copies a directory, dereferencing symlinks.
// Symlinked files are copied as regular files with their target's
// content; symlinked directories are walked like directories.
func CopyTree(fs types.FS, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}
	if !info.IsDir() {
		return CopyFile(fs, src, dst)
	}
	if err := fs.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
	}
	entries, err := fs.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read directory %s", src)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		// Stat, not the entry type: a symlink to a directory must be
		// walked, not copied as a link.
		entryInfo, err := fs.Stat(srcPath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", srcPath)
		}
		if entryInfo.IsDir() {
			if err := CopyTree(fs, srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := CopyFile(fs, srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// Exists reports whether the path exists, following symlinks.
func Exists(fs types.FS, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// LExists reports whether the path exists without following symlinks,
// so a dangling symlink still counts as present.
func LExists(fs types.FS, path string) bool {
	_, err := fs.Lstat(path)
	return err == nil
}
