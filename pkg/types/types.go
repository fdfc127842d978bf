// Package types defines the core domain types shared across dotsync:
// the manifest schema, source variants, and the filesystem interface
// used by everything that touches disk.
package types

import (
	"regexp"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/platform"
)

// SourceKind distinguishes file sources from directory sources.
type SourceKind string

const (
	KindFile      SourceKind = "file"
	KindDirectory SourceKind = "directory"
)

// SymlinkMode controls how a directory source maps into the repository.
// In ModeContents the directory gets its own subdirectory under the
// group; in ModeDirectory the group directory itself is the link target.
type SymlinkMode string

const (
	ModeContents  SymlinkMode = "contents"
	ModeDirectory SymlinkMode = "directory"
)

// ExtractSpec governs bidirectional sync of one top-level JSON field
// between a home-directory JSON file and a repository-stored file
// holding only that field's value.
type ExtractSpec struct {
	Field  string `json:"field"`
	Target string `json:"target"`
}

// Source is one file or directory entry within a group.
type Source struct {
	Path        string         `json:"path"`
	Kind        SourceKind     `json:"type"`
	Platforms   []platform.Tag `json:"platforms,omitempty"`
	Extract     *ExtractSpec   `json:"extract,omitempty"`
	SymlinkMode SymlinkMode    `json:"symlink_mode,omitempty"`
}

// Mode returns the effective symlink mode, defaulting to ModeContents.
func (s Source) Mode() SymlinkMode {
	if s.SymlinkMode == "" {
		return ModeContents
	}
	return s.SymlinkMode
}

// Group is a named collection of related configuration sources.
type Group struct {
	Name    string   `json:"name"`
	Sources []Source `json:"sources"`
}

// Manifest is the root persisted entity: an ordered sequence of groups.
type Manifest struct {
	Groups []Group `json:"groups"`
}

// FindGroup returns the group with the given name, or nil.
func (m *Manifest) FindGroup(name string) *Group {
	for i := range m.Groups {
		if m.Groups[i].Name == name {
			return &m.Groups[i]
		}
	}
	return nil
}

var groupNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidGroupName reports whether name is non-empty and restricted to
// the identifier charset (letters, digits, underscore, hyphen).
func ValidGroupName(name string) bool {
	return groupNameRe.MatchString(name)
}

// Validate checks manifest invariants: unique valid group names,
// required source fields, known enum values, and extract specs only
// on file sources.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Groups))
	for _, g := range m.Groups {
		if !ValidGroupName(g.Name) {
			return errors.Newf(errors.ErrManifestMalformed, "invalid group name %q", g.Name)
		}
		if seen[g.Name] {
			return errors.Newf(errors.ErrManifestMalformed, "duplicate group name %q", g.Name)
		}
		seen[g.Name] = true
		if g.Sources == nil {
			return errors.Newf(errors.ErrManifestMalformed, "group %q has no sources field", g.Name)
		}
		for _, s := range g.Sources {
			if err := validateSource(g.Name, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateSource(group string, s Source) error {
	if s.Path == "" {
		return errors.Newf(errors.ErrManifestMalformed, "group %q has a source with no path", group)
	}
	switch s.Kind {
	case KindFile, KindDirectory:
	default:
		return errors.Newf(errors.ErrManifestMalformed, "source %q in group %q has invalid type %q", s.Path, group, s.Kind)
	}
	switch s.SymlinkMode {
	case "", ModeContents, ModeDirectory:
	default:
		return errors.Newf(errors.ErrManifestMalformed, "source %q in group %q has invalid symlink_mode %q", s.Path, group, s.SymlinkMode)
	}
	if s.SymlinkMode != "" && s.Kind != KindDirectory {
		return errors.Newf(errors.ErrManifestMalformed, "source %q in group %q: symlink_mode applies to directories only", s.Path, group)
	}
	if s.Extract != nil {
		if s.Kind != KindFile {
			return errors.Newf(errors.ErrManifestMalformed, "source %q in group %q: extract applies to files only", s.Path, group)
		}
		if s.Extract.Field == "" || s.Extract.Target == "" {
			return errors.Newf(errors.ErrManifestMalformed, "source %q in group %q: extract requires field and target", s.Path, group)
		}
	}
	for _, t := range s.Platforms {
		if !platform.IsValid(string(t)) {
			return errors.Newf(errors.ErrManifestMalformed, "source %q in group %q has invalid platform %q", s.Path, group, t)
		}
	}
	return nil
}
