// Package manifest owns loading, validating, and persisting the
// declarative configuration-group list. The manifest is the single
// source of truth for desired state; everything else holds a read-only
// view during a run.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Load reads and validates the manifest at path.
func Load(fs types.FS, path string) (*types.Manifest, error) {
	logger := logging.GetLogger("manifest")

	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrManifestMissing, "manifest not found at %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read manifest at %s", path)
	}

	var m types.Manifest
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestMalformed, "manifest at %s is not valid", path)
	}
	// A second document after the first is as malformed as a bad key.
	if dec.More() {
		return nil, errors.Newf(errors.ErrManifestMalformed, "manifest at %s has trailing content", path)
	}
	if m.Groups == nil {
		return nil, errors.Newf(errors.ErrManifestMalformed, "manifest at %s has no groups field", path)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().Str("path", path).Int("groups", len(m.Groups)).Msg("manifest loaded")
	return &m, nil
}

// Save writes the manifest atomically: the content goes to a temporary
// file in the same directory, which is then renamed over the target, so
// a crash mid-write never corrupts the manifest.
func Save(fs types.FS, m *types.Manifest, path string) error {
	logger := logging.GetLogger("manifest")

	if err := m.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot serialize manifest")
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp", filepath.Base(path)))
	if err := fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", tmp)
	}
	if err := fs.Rename(tmp, path); err != nil {
		// Best effort: don't leave the temp file behind.
		_ = fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", path)
	}

	logger.Debug().Str("path", path).Int("groups", len(m.Groups)).Msg("manifest saved")
	return nil
}

// AddGroup returns a manifest with the group appended. The input
// manifest is not modified.
func AddGroup(m *types.Manifest, group types.Group) (*types.Manifest, error) {
	if !types.ValidGroupName(group.Name) {
		return nil, errors.Newf(errors.ErrInvalidName,
			"group name %q must be non-empty and contain only letters, digits, _ or -", group.Name)
	}
	if m.FindGroup(group.Name) != nil {
		return nil, errors.Newf(errors.ErrDuplicateGroup, "group %q already exists", group.Name)
	}
	out := &types.Manifest{Groups: make([]types.Group, 0, len(m.Groups)+1)}
	out.Groups = append(out.Groups, m.Groups...)
	out.Groups = append(out.Groups, group)
	return out, nil
}

// RemoveGroup returns a manifest without the named group. The input
// manifest is not modified.
func RemoveGroup(m *types.Manifest, name string) (*types.Manifest, error) {
	if m.FindGroup(name) == nil {
		return nil, errors.Newf(errors.ErrGroupNotFound, "group %q not found", name)
	}
	out := &types.Manifest{Groups: make([]types.Group, 0, len(m.Groups)-1)}
	for _, g := range m.Groups {
		if g.Name != name {
			out.Groups = append(out.Groups, g)
		}
	}
	return out, nil
}
