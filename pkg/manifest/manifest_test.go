package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/manifest"
	"github.com/arthur-debert/dotsync/pkg/types"
)

const validManifest = `{
  "groups": [
    {
      "name": "shell",
      "sources": [
        {"path": "~/.bashrc", "type": "file"},
        {"path": "~/.config/fish", "type": "directory", "symlink_mode": "contents"}
      ]
    },
    {
      "name": "claude",
      "sources": [
        {"path": "~/.claude.json", "type": "file", "extract": {"field": "mcpServers", "target": "mcp.json"}}
      ]
    }
  ]
}`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	fs := filesystem.NewOS()

	m, err := manifest.Load(fs, writeManifest(t, validManifest))
	require.NoError(t, err)
	require.Len(t, m.Groups, 2)
	assert.Equal(t, "shell", m.Groups[0].Name)
	assert.Len(t, m.Groups[0].Sources, 2)
	assert.Equal(t, types.KindDirectory, m.Groups[0].Sources[1].Kind)
	require.NotNil(t, m.Groups[1].Sources[0].Extract)
	assert.Equal(t, "mcpServers", m.Groups[1].Sources[0].Extract.Field)
}

func TestLoadMissing(t *testing.T) {
	fs := filesystem.NewOS()

	_, err := manifest.Load(fs, filepath.Join(t.TempDir(), "manifest.json"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestMissing), "got %v", err)
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{not json"},
		{"unknown top-level key", `{"groups": [], "extra": true}`},
		{"unknown source key", `{"groups": [{"name": "g", "sources": [{"path": "~/.x", "type": "file", "color": "red"}]}]}`},
		{"missing groups", `{}`},
		{"missing source type", `{"groups": [{"name": "g", "sources": [{"path": "~/.x"}]}]}`},
		{"invalid type value", `{"groups": [{"name": "g", "sources": [{"path": "~/.x", "type": "symlink"}]}]}`},
		{"trailing content", `{"groups": []} {"groups": []}`},
	}

	fs := filesystem.NewOS()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.Load(fs, writeManifest(t, tt.content))
			assert.True(t, errors.IsErrorCode(err, errors.ErrManifestMalformed), "got %v", err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	fs := filesystem.NewOS()
	path := filepath.Join(t.TempDir(), "manifest.json")

	m := &types.Manifest{Groups: []types.Group{
		{Name: "vim", Sources: []types.Source{{Path: "~/.vimrc", Kind: types.KindFile}}},
	}}
	require.NoError(t, manifest.Save(fs, m, path))

	loaded, err := manifest.Load(fs, path)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	// No temp file left behind by the atomic write.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manifest.json", entries[0].Name())
}

func TestAddGroup(t *testing.T) {
	m := &types.Manifest{Groups: []types.Group{{Name: "vim", Sources: []types.Source{}}}}

	updated, err := manifest.AddGroup(m, types.Group{Name: "git", Sources: []types.Source{}})
	require.NoError(t, err)
	assert.Len(t, updated.Groups, 2)
	assert.Len(t, m.Groups, 1, "input manifest must not be modified")

	_, err = manifest.AddGroup(m, types.Group{Name: "vim", Sources: []types.Source{}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateGroup), "got %v", err)

	_, err = manifest.AddGroup(m, types.Group{Name: "bad name", Sources: []types.Source{}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidName), "got %v", err)
}

func TestRemoveGroup(t *testing.T) {
	m := &types.Manifest{Groups: []types.Group{
		{Name: "vim", Sources: []types.Source{}},
		{Name: "git", Sources: []types.Source{}},
	}}

	updated, err := manifest.RemoveGroup(m, "vim")
	require.NoError(t, err)
	require.Len(t, updated.Groups, 1)
	assert.Equal(t, "git", updated.Groups[0].Name)
	assert.Len(t, m.Groups, 2, "input manifest must not be modified")

	_, err = manifest.RemoveGroup(m, "zsh")
	assert.True(t, errors.IsErrorCode(err, errors.ErrGroupNotFound), "got %v", err)
}
