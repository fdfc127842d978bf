package reconcile

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/report"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// syncExtract runs the extraction state machine for one source. The
// state is derived from disk: a repository target file that exists
// means Populated, and from then on the repository owns the field.
// Install may run the one-time Uninitialized import; update never does.
func (e *Engine) syncExtract(group string, src types.Source, install bool) report.Outcome {
	home := e.Paths.ExpandHome(src.Path)
	repoTarget := e.Paths.SourceRepoPath(group, src)

	if filesystem.Exists(e.FS, repoTarget) {
		return e.mergeRepoIntoHome(group, src, home, repoTarget)
	}

	if !install {
		return report.Outcome{
			Group:  group,
			Path:   src.Path,
			Status: report.StatusRepoFileNotFound,
			Detail: "extract target " + filepath.Base(repoTarget) + " not yet populated; run install",
		}
	}

	return e.initializeExtract(group, src, home, repoTarget)
}

// initializeExtract handles the Uninitialized state on install. This is
// the only direction data ever flows home to repository.
func (e *Engine) initializeExtract(group string, src types.Source, home, repoTarget string) report.Outcome {
	logger := logging.GetLogger("reconcile.extract")
	field := src.Extract.Field

	if !filesystem.Exists(e.FS, home) {
		// Neither side exists yet: create both as empty objects.
		if e.DryRun {
			return report.Outcome{Group: group, Path: src.Path, Status: report.StatusInitialized,
				Detail: "would create empty home and repository files", DryRun: true}
		}
		if err := e.writeJSON(home, []byte("{}")); err != nil {
			return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMergeFailed, Err: err}
		}
		if err := e.writeJSON(repoTarget, []byte("{}")); err != nil {
			return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMergeFailed, Err: err}
		}
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusInitialized,
			Detail: "created empty home and repository files"}
	}

	doc, err := e.readJSONObject(home)
	if err != nil {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMergeFailed, Err: err}
	}

	value, present := doc[field]
	content := []byte("{}")
	detail := "field " + field + " not yet populated"
	if present {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, value, "", "  "); err != nil {
			return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMergeFailed,
				Err: errors.Wrapf(err, errors.ErrMergeFailed, "field %s in %s is not valid JSON", field, home)}
		}
		content = pretty.Bytes()
		detail = "field " + field + " captured into repository"
	}

	if e.DryRun {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusExtracted, Detail: detail, DryRun: true}
	}
	if err := e.writeJSON(repoTarget, content); err != nil {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMergeFailed, Err: err}
	}

	logger.Info().Str("group", group).Str("field", field).Str("target", repoTarget).Msg("extract initialized")
	status := report.StatusExtracted
	if !present {
		status = report.StatusInitialized
	}
	return report.Outcome{Group: group, Path: src.Path, Status: status, Detail: detail}
}

// mergeRepoIntoHome handles the Populated state: the repository target
// content is merged into the home file under the extracted field,
// overwriting any home-side edit of that field. All other fields of the
// home file are never touched. The merge writes a temporary file and
// swaps it in on success, so a failed merge leaves the original intact.
func (e *Engine) mergeRepoIntoHome(group string, src types.Source, home, repoTarget string) report.Outcome {
	logger := logging.GetLogger("reconcile.extract")
	field := src.Extract.Field

	repoContent, err := e.FS.ReadFile(repoTarget)
	if err != nil {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusRepoFileNotFound,
			Err: errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", repoTarget)}
	}
	if !json.Valid(repoContent) {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMergeFailed,
			Err: errors.Newf(errors.ErrMergeFailed, "repository file %s is not valid JSON", repoTarget)}
	}

	if e.DryRun {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusSynced,
			Detail: "would merge " + field + " from repository", DryRun: true}
	}

	doc := map[string]json.RawMessage{}
	if filesystem.Exists(e.FS, home) {
		if _, err := e.Snapshots.Backup(home, group); err != nil {
			return report.Outcome{Group: group, Path: src.Path, Status: report.StatusBackupFailed, Err: err}
		}
		doc, err = e.readJSONObject(home)
		if err != nil {
			return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMergeFailed, Err: err}
		}
	}

	doc[field] = json.RawMessage(bytes.TrimSpace(repoContent))

	merged, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMergeFailed,
			Err: errors.Wrapf(err, errors.ErrMergeFailed, "cannot serialize %s", home)}
	}

	if err := e.swapInJSON(home, append(merged, '\n')); err != nil {
		return report.Outcome{Group: group, Path: src.Path, Status: report.StatusMergeFailed, Err: err}
	}

	logger.Debug().Str("group", group).Str("field", field).Str("home", home).Msg("field synced from repository")
	return report.Outcome{Group: group, Path: src.Path, Status: report.StatusSynced,
		Detail: "field " + field + " synced from repository"}
}

// readJSONObject parses a file as a top-level JSON object, keeping
// untouched fields as raw bytes.
func (e *Engine) readJSONObject(path string) (map[string]json.RawMessage, error) {
	data, err := e.FS.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMergeFailed, "%s is not a valid JSON object", path)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}

// writeJSON writes JSON content with a trailing newline, creating
// parent directories.
func (e *Engine) writeJSON(path string, content []byte) error {
	if err := e.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", path)
	}
	if !bytes.HasSuffix(content, []byte("\n")) {
		content = append(content, '\n')
	}
	if err := e.FS.WriteFile(path, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	return nil
}

// swapInJSON writes content next to path and renames it into place, so
// the original survives any mid-write failure.
func (e *Engine) swapInJSON(path string, content []byte) error {
	if err := e.FS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", path)
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := e.FS.WriteFile(tmp, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", tmp)
	}
	if err := e.FS.Rename(tmp, path); err != nil {
		_ = e.FS.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", path)
	}
	return nil
}
