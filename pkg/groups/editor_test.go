package groups_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/groups"
	"github.com/arthur-debert/dotsync/pkg/manifest"
	"github.com/arthur-debert/dotsync/pkg/report"
	"github.com/arthur-debert/dotsync/pkg/snapshot"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/arthur-debert/dotsync/pkg/types"
)

func newEditor(env *testutil.Env) *groups.Editor {
	return &groups.Editor{
		FS:        env.FS,
		Paths:     env.Paths,
		Snapshots: snapshot.New(env.FS, env.Paths.BackupsDir()),
	}
}

func TestAddCreatesGroupAndCopiesContent(t *testing.T) {
	env := testutil.NewEnv(t)
	ed := newEditor(env)
	testutil.WriteFile(t, env.HomePath(".gitconfig"), "[user]\n\tname = someone\n")

	updated, err := ed.Add(&types.Manifest{}, "gitstuff", []string{env.HomePath(".gitconfig")}, groups.AddOptions{})
	require.NoError(t, err)

	group := updated.FindGroup("gitstuff")
	require.NotNil(t, group)
	require.Len(t, group.Sources, 1)
	assert.Equal(t, "~/.gitconfig", group.Sources[0].Path)
	assert.Equal(t, types.KindFile, group.Sources[0].Kind)

	// Initial content is copied into the repository tree.
	assert.Equal(t, "[user]\n\tname = someone\n",
		testutil.ReadFile(t, env.RootPath("files/gitstuff/.gitconfig")))

	// The manifest is persisted and loads back identically.
	loaded, err := manifest.Load(env.FS, env.Paths.ManifestPath())
	require.NoError(t, err)
	assert.Equal(t, updated.Groups, loaded.Groups)
}

func TestAddClassifiesDirectories(t *testing.T) {
	env := testutil.NewEnv(t)
	ed := newEditor(env)
	testutil.WriteFile(t, env.HomePath(".vim/vimrc"), "set nocompatible\n")

	updated, err := ed.Add(&types.Manifest{}, "vim", []string{env.HomePath(".vim")}, groups.AddOptions{})
	require.NoError(t, err)

	group := updated.FindGroup("vim")
	require.NotNil(t, group)
	assert.Equal(t, types.KindDirectory, group.Sources[0].Kind)
	assert.FileExists(t, env.RootPath("files/vim/.vim/vimrc"))
}

func TestAddLeavesExtractPathsUncopied(t *testing.T) {
	env := testutil.NewEnv(t)
	ed := newEditor(env)
	testutil.WriteFile(t, env.HomePath(".claude.json"), `{"mcpServers":{}}`)

	updated, err := ed.Add(&types.Manifest{}, "claude", []string{env.HomePath(".claude.json")}, groups.AddOptions{
		Extracts: []types.ExtractSpec{{Field: "mcpServers", Target: "mcp.json"}},
	})
	require.NoError(t, err)

	src := updated.FindGroup("claude").Sources[0]
	require.NotNil(t, src.Extract)
	assert.Equal(t, "mcpServers", src.Extract.Field)

	// Extraction populates on install, not at add time.
	assert.NoFileExists(t, env.RootPath("files/claude/mcp.json"))
	assert.NoFileExists(t, env.RootPath("files/claude/.claude.json"))
}

func TestAddRejections(t *testing.T) {
	env := testutil.NewEnv(t)
	ed := newEditor(env)
	testutil.WriteFile(t, env.HomePath(".bashrc"), "x\n")
	testutil.WriteFile(t, env.HomePath(".vim/vimrc"), "x\n")
	existing := &types.Manifest{Groups: []types.Group{{Name: "shell", Sources: []types.Source{
		{Path: "~/.bashrc", Kind: types.KindFile},
	}}}}

	tests := []struct {
		name     string
		group    string
		paths    []string
		opts     groups.AddOptions
		expected errors.ErrorCode
	}{
		{
			name:     "invalid group name",
			group:    "bad name!",
			paths:    []string{env.HomePath(".bashrc")},
			expected: errors.ErrInvalidName,
		},
		{
			name:     "duplicate group",
			group:    "shell",
			paths:    []string{env.HomePath(".bashrc")},
			expected: errors.ErrDuplicateGroup,
		},
		{
			name:     "no paths",
			group:    "empty",
			paths:    nil,
			expected: errors.ErrInvalidInput,
		},
		{
			name:     "missing path",
			group:    "ghost",
			paths:    []string{env.HomePath(".does-not-exist")},
			expected: errors.ErrInvalidInput,
		},
		{
			name:  "more extracts than paths",
			group: "over",
			paths: []string{env.HomePath(".bashrc")},
			opts: groups.AddOptions{Extracts: []types.ExtractSpec{
				{Field: "a", Target: "a.json"}, {Field: "b", Target: "b.json"},
			}},
			expected: errors.ErrInvalidInput,
		},
		{
			name:  "extract on directory",
			group: "vimx",
			paths: []string{env.HomePath(".vim")},
			opts: groups.AddOptions{Extracts: []types.ExtractSpec{
				{Field: "a", Target: "a.json"},
			}},
			expected: errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ed.Add(existing, tt.group, tt.paths, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.expected),
				"expected %s, got %v", tt.expected, err)
		})
	}
}

func TestAddThenInstallRoundTrip(t *testing.T) {
	env := testutil.NewEnv(t)
	ed := newEditor(env)
	content := "export EDITOR=vim\n"
	home := env.HomePath(".bashrc")
	testutil.WriteFile(t, home, content)

	updated, err := ed.Add(&types.Manifest{}, "shell", []string{home}, groups.AddOptions{})
	require.NoError(t, err)

	summary, err := env.Engine().Install(updated)
	require.NoError(t, err)
	assert.False(t, summary.HasIssues())

	testutil.RequireSymlinkTo(t, home, env.RootPath("files/shell/.bashrc"))
	assert.Equal(t, content, testutil.ReadFile(t, home))
}

func TestRemoveDeletesSymlinksAndArchives(t *testing.T) {
	env := testutil.NewEnv(t)
	ed := newEditor(env)
	home := env.HomePath(".bashrc")
	testutil.WriteFile(t, home, "export EDITOR=vim\n")

	m, err := ed.Add(&types.Manifest{}, "shell", []string{home}, groups.AddOptions{})
	require.NoError(t, err)
	_, err = env.Engine().Install(m)
	require.NoError(t, err)

	updated, summary, err := ed.Remove(m, "shell")
	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, report.StatusRemoved, summary.Outcomes[0].Status)

	assert.NoFileExists(t, home)
	assert.Nil(t, updated.FindGroup("shell"))
	assert.NoDirExists(t, env.RootPath("files/shell"))

	// The repository content survives under the removal archive.
	archives, err := filepath.Glob(env.RootPath("backups/removed_*_shell"))
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.FileExists(t, filepath.Join(archives[0], ".bashrc"))

	loaded, err := manifest.Load(env.FS, env.Paths.ManifestPath())
	require.NoError(t, err)
	assert.Nil(t, loaded.FindGroup("shell"))
}

func TestRemoveLeavesNonSymlinksUntouched(t *testing.T) {
	env := testutil.NewEnv(t)
	ed := newEditor(env)
	home := env.HomePath(".bashrc")
	testutil.WriteFile(t, home, "local file, never linked\n")
	testutil.WriteFile(t, env.RootPath("files/shell/.bashrc"), "repo copy\n")
	m := &types.Manifest{Groups: []types.Group{{Name: "shell", Sources: []types.Source{
		{Path: "~/.bashrc", Kind: types.KindFile},
	}}}}
	require.NoError(t, manifest.Save(env.FS, m, env.Paths.ManifestPath()))

	_, summary, err := ed.Remove(m, "shell")
	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, report.StatusWarning, summary.Outcomes[0].Status)

	assert.Equal(t, "local file, never linked\n", testutil.ReadFile(t, home))
}

func TestRemoveUnknownGroup(t *testing.T) {
	env := testutil.NewEnv(t)
	ed := newEditor(env)

	_, _, err := ed.Remove(&types.Manifest{}, "nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrGroupNotFound))
}
