// Package groups implements the group editor: adding and removing
// whole configuration groups, mutating both the manifest and the
// repository storage tree. It is consulted at configuration-authoring
// time only, never during reconciliation.
package groups

import (
	"os"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/manifest"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/platform"
	"github.com/arthur-debert/dotsync/pkg/report"
	"github.com/arthur-debert/dotsync/pkg/snapshot"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Editor mutates the manifest and repository storage for whole groups.
type Editor struct {
	FS        types.FS
	Paths     paths.Paths
	Snapshots *snapshot.Service
}

// AddOptions carry the optional metadata for new sources. Extract specs
// pair positionally with the path arguments.
type AddOptions struct {
	Extracts  []types.ExtractSpec
	Platforms []platform.Tag
}

// Add builds a group from the given home paths, classifying each by its
// current disk state, persists the manifest, and copies initial content
// into the repository for every path without an extract spec. Extract
// paths are deliberately left uncopied: they populate through the
// extraction state machine on the next install.
func (ed *Editor) Add(m *types.Manifest, name string, homePaths []string, opts AddOptions) (*types.Manifest, error) {
	logger := logging.GetLogger("groups")

	if !types.ValidGroupName(name) {
		return nil, errors.Newf(errors.ErrInvalidName,
			"group name %q must be non-empty and contain only letters, digits, _ or -", name)
	}
	if m.FindGroup(name) != nil {
		return nil, errors.Newf(errors.ErrDuplicateGroup, "group %q already exists", name)
	}
	if len(homePaths) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "at least one path is required")
	}
	if len(opts.Extracts) > len(homePaths) {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"%d extract specs given for %d paths", len(opts.Extracts), len(homePaths))
	}

	group := types.Group{Name: name, Sources: []types.Source{}}
	for i, p := range homePaths {
		src, err := ed.buildSource(p, i, opts)
		if err != nil {
			return nil, err
		}
		group.Sources = append(group.Sources, src)
	}

	updated, err := manifest.AddGroup(m, group)
	if err != nil {
		return nil, err
	}

	if err := ed.FS.MkdirAll(ed.Paths.GroupDir(name), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create group directory for %q", name)
	}
	for _, src := range group.Sources {
		if src.Extract != nil {
			continue
		}
		home := ed.Paths.ExpandHome(src.Path)
		repo := ed.Paths.SourceRepoPath(name, src)
		if src.Kind == types.KindDirectory {
			err = filesystem.CopyTree(ed.FS, home, repo)
		} else {
			err = filesystem.CopyFile(ed.FS, home, repo)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := manifest.Save(ed.FS, updated, ed.Paths.ManifestPath()); err != nil {
		return nil, err
	}

	logger.Info().Str("group", name).Int("sources", len(group.Sources)).Msg("group added")
	return updated, nil
}

// buildSource classifies one path by disk state at add time. The
// classification is persisted, never re-evaluated later.
func (ed *Editor) buildSource(p string, index int, opts AddOptions) (types.Source, error) {
	home := ed.Paths.ExpandHome(p)
	info, err := ed.FS.Stat(home)
	if err != nil {
		return types.Source{}, errors.Wrapf(err, errors.ErrInvalidInput, "path %s does not exist", p)
	}

	src := types.Source{
		Path:      ed.Paths.ContractHome(home),
		Kind:      types.KindFile,
		Platforms: opts.Platforms,
	}
	if info.IsDir() {
		src.Kind = types.KindDirectory
	}
	if index < len(opts.Extracts) {
		if src.Kind != types.KindFile {
			return types.Source{}, errors.Newf(errors.ErrInvalidInput,
				"extract spec given for %s, which is a directory", p)
		}
		spec := opts.Extracts[index]
		src.Extract = &spec
	}
	return src, nil
}

// Remove deletes a group: home symlinks are removed (never anything
// that is not a symlink), the group's repository subtree is archived,
// and the group leaves the manifest. The archive is the only recovery
// path; removal is not automatically reversible.
func (ed *Editor) Remove(m *types.Manifest, name string) (*types.Manifest, *report.Summary, error) {
	logger := logging.GetLogger("groups")

	group := m.FindGroup(name)
	if group == nil {
		return nil, nil, errors.Newf(errors.ErrGroupNotFound, "group %q not found", name)
	}

	summary := report.NewSummary()
	for _, src := range group.Sources {
		home := ed.Paths.ExpandHome(src.Path)
		info, err := ed.FS.Lstat(home)
		if err != nil {
			summary.Add(report.Outcome{Group: name, Path: src.Path, Status: report.StatusSkipped,
				Detail: "nothing at home path"})
			continue
		}
		if info.Mode()&os.ModeSymlink == 0 {
			summary.Add(report.Outcome{Group: name, Path: src.Path, Status: report.StatusWarning,
				Detail: "home path is not a symlink, left untouched"})
			continue
		}
		if err := ed.FS.Remove(home); err != nil {
			summary.Add(report.Outcome{Group: name, Path: src.Path, Status: report.StatusWarning,
				Err: errors.Wrapf(err, errors.ErrFileAccess, "cannot remove symlink %s", home)})
			continue
		}
		summary.Add(report.Outcome{Group: name, Path: src.Path, Status: report.StatusRemoved})
	}

	archive, err := ed.Snapshots.ArchiveRemovedGroup(ed.Paths.GroupDir(name), name)
	if err != nil {
		return nil, nil, err
	}
	if archive != "" {
		logger.Info().Str("group", name).Str("archive", archive).Msg("repository content archived")
	}

	updated, err := manifest.RemoveGroup(m, name)
	if err != nil {
		return nil, nil, err
	}
	if err := manifest.Save(ed.FS, updated, ed.Paths.ManifestPath()); err != nil {
		return nil, nil, err
	}

	logger.Info().Str("group", name).Msg("group removed")
	return updated, summary, nil
}
