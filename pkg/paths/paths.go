// Package paths provides centralized path handling for dotsync. Every
// location inside the dotfiles repository and every home-directory
// expansion goes through here, so install and update can never drift
// on how a source maps to its repository storage path.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Environment variable names
const (
	// EnvDotsyncRoot is the primary environment variable for the
	// dotfiles repository location
	EnvDotsyncRoot = "DOTSYNC_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Repository layout names. These define dotsync's storage structure and
// are not user-configurable.
const (
	// ManifestFileName is the name of the manifest file at the repo root
	ManifestFileName = "manifest.json"

	// FilesDirName is the directory holding per-group stored files
	FilesDirName = "files"

	// BackupsDirName is the directory holding timestamped snapshots
	BackupsDirName = "backups"

	// ConfigFileName is the optional repo-level configuration file
	ConfigFileName = ".dotsync.toml"
)

// Paths provides centralized path management for dotsync
type Paths interface {
	Root() string
	UsedFallback() bool
	ManifestPath() string
	FilesDir() string
	GroupDir(group string) string
	SourceRepoPath(group string, src types.Source) string
	BackupsDir() string
	ConfigFilePath() string
	HomeDir() string
	ExpandHome(path string) string
	ContractHome(path string) string
}

type paths struct {
	root         string
	home         string
	usedFallback bool
}

// New creates a Paths instance rooted at the given dotfiles repository.
// If root is empty it is resolved from DOTSYNC_ROOT, falling back to
// the current working directory.
func New(root string) (Paths, error) {
	p := &paths{home: resolveHome()}

	if root == "" {
		root = os.Getenv(EnvDotsyncRoot)
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot determine working directory")
		}
		root = cwd
		p.usedFallback = true
	}

	root = p.expandHome(root)
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot resolve dotfiles root %s", root)
	}
	p.root = absRoot
	return p, nil
}

// resolveHome prefers the HOME env var for testability, matching how
// the rest of the codebase is exercised under t.Setenv.
func resolveHome() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func (p *paths) Root() string {
	return p.root
}

func (p *paths) UsedFallback() bool {
	return p.usedFallback
}

func (p *paths) ManifestPath() string {
	return filepath.Join(p.root, ManifestFileName)
}

func (p *paths) FilesDir() string {
	return filepath.Join(p.root, FilesDirName)
}

func (p *paths) GroupDir(group string) string {
	return filepath.Join(p.root, FilesDirName, group)
}

// SourceRepoPath derives where a source's content lives inside the
// repository. This is the single derivation shared by install, update
// and the group editor:
//
//	file, no extract         files/<group>/<basename(path)>
//	file, with extract       files/<group>/<extract.target>
//	directory, contents mode files/<group>/<basename(path)>
//	directory, directory mode files/<group>
func (p *paths) SourceRepoPath(group string, src types.Source) string {
	dir := p.GroupDir(group)
	switch {
	case src.Kind == types.KindFile && src.Extract != nil:
		return filepath.Join(dir, src.Extract.Target)
	case src.Kind == types.KindDirectory && src.Mode() == types.ModeDirectory:
		return dir
	default:
		return filepath.Join(dir, filepath.Base(p.ExpandHome(src.Path)))
	}
}

func (p *paths) BackupsDir() string {
	return filepath.Join(p.root, BackupsDirName)
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.root, ConfigFileName)
}

func (p *paths) HomeDir() string {
	return p.home
}

// ExpandHome replaces a leading ~ with the user's home directory.
func (p *paths) ExpandHome(path string) string {
	return p.expandHome(path)
}

func (p *paths) expandHome(path string) string {
	if path == "~" {
		return p.home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(p.home, path[2:])
	}
	return path
}

// ContractHome replaces the home directory prefix with ~ for display
// and for storing portable paths in the manifest.
func (p *paths) ContractHome(path string) string {
	if p.home == "" {
		return path
	}
	if path == p.home {
		return "~"
	}
	if strings.HasPrefix(path, p.home+string(filepath.Separator)) {
		return "~/" + strings.TrimPrefix(path, p.home+string(filepath.Separator))
	}
	return path
}
