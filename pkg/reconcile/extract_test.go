package reconcile_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/reconcile"
	"github.com/arthur-debert/dotsync/pkg/report"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/arthur-debert/dotsync/pkg/types"
)

func extractManifest() *types.Manifest {
	return &types.Manifest{Groups: []types.Group{
		{Name: "claude", Sources: []types.Source{{
			Path: "~/.claude.json", Kind: types.KindFile,
			Extract: &types.ExtractSpec{Field: "mcpServers", Target: "mcp.json"},
		}}},
	}}
}

func runUpdate(t *testing.T, eng *reconcile.Engine, m *types.Manifest) *report.Summary {
	t.Helper()
	summary, err := eng.Update(m, nil, reconcile.UpdateOptions{SkipPull: true})
	require.NoError(t, err)
	return summary
}

func TestExtractInstallCapturesField(t *testing.T) {
	env := testutil.NewEnv(t)
	home := env.HomePath(".claude.json")
	original := `{"mcpServers":{"a":1},"other":2}`
	testutil.WriteFile(t, home, original)

	summary, err := env.Engine().Install(extractManifest())
	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, report.StatusExtracted, summary.Outcomes[0].Status)

	var captured map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(testutil.ReadFile(t, env.RootPath("files/claude/mcp.json"))), &captured))
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, captured)

	// The home file itself is untouched by the initial extraction.
	assert.Equal(t, original, testutil.ReadFile(t, home))
}

func TestExtractInstallFieldAbsentWritesEmptyObject(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.WriteFile(t, env.HomePath(".claude.json"), `{"other":2}`)

	summary, err := env.Engine().Install(extractManifest())
	require.NoError(t, err)
	assert.Equal(t, report.StatusInitialized, summary.Outcomes[0].Status)

	assert.JSONEq(t, `{}`, testutil.ReadFile(t, env.RootPath("files/claude/mcp.json")))
}

func TestExtractInstallCreatesBothWhenHomeMissing(t *testing.T) {
	env := testutil.NewEnv(t)

	summary, err := env.Engine().Install(extractManifest())
	require.NoError(t, err)
	assert.Equal(t, report.StatusInitialized, summary.Outcomes[0].Status)

	assert.JSONEq(t, `{}`, testutil.ReadFile(t, env.HomePath(".claude.json")))
	assert.JSONEq(t, `{}`, testutil.ReadFile(t, env.RootPath("files/claude/mcp.json")))
}

func TestExtractPopulatedSyncsRepoIntoHome(t *testing.T) {
	env := testutil.NewEnv(t)
	home := env.HomePath(".claude.json")
	testutil.WriteFile(t, home, `{"mcpServers":{"a":1},"other":2}`)
	m := extractManifest()

	_, err := env.Engine().Install(m)
	require.NoError(t, err)

	// Repo becomes the source of truth; edit it and update.
	testutil.WriteFile(t, env.RootPath("files/claude/mcp.json"), `{"b":2}`)
	summary := runUpdate(t, env.Engine(), m)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, report.StatusSynced, summary.Outcomes[0].Status)

	doc := testutil.ReadJSON(t, home)
	assert.Equal(t, map[string]interface{}{"b": float64(2)}, doc["mcpServers"])
	assert.Equal(t, float64(2), doc["other"], "untracked fields are never touched")
}

func TestExtractAsymmetryHomeEditsAreOverwritten(t *testing.T) {
	env := testutil.NewEnv(t)
	home := env.HomePath(".claude.json")
	testutil.WriteFile(t, home, `{"mcpServers":{"a":1}}`)
	m := extractManifest()

	_, err := env.Engine().Install(m)
	require.NoError(t, err)

	// A home-side edit of the tracked field never flows back.
	testutil.WriteFile(t, home, `{"mcpServers":{"edited":true},"new":1}`)
	runUpdate(t, env.Engine(), m)

	doc := testutil.ReadJSON(t, home)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, doc["mcpServers"])
	assert.Equal(t, float64(1), doc["new"])
	assert.JSONEq(t, `{"a":1}`, testutil.ReadFile(t, env.RootPath("files/claude/mcp.json")))
}

func TestExtractInstallOnPopulatedStateSyncsToo(t *testing.T) {
	env := testutil.NewEnv(t)
	home := env.HomePath(".claude.json")
	testutil.WriteFile(t, home, `{"mcpServers":{"a":1}}`)
	m := extractManifest()

	_, err := env.Engine().Install(m)
	require.NoError(t, err)
	testutil.WriteFile(t, env.RootPath("files/claude/mcp.json"), `{"fromRepo":true}`)

	summary, err := env.Engine().Install(m)
	require.NoError(t, err)
	assert.Equal(t, report.StatusSynced, summary.Outcomes[0].Status)

	doc := testutil.ReadJSON(t, home)
	assert.Equal(t, map[string]interface{}{"fromRepo": true}, doc["mcpServers"])
}

func TestExtractUpdateNeverImportsFreshData(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.WriteFile(t, env.HomePath(".claude.json"), `{"mcpServers":{"a":1}}`)
	m := extractManifest()

	summary := runUpdate(t, env.Engine(), m)
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, report.StatusRepoFileNotFound, summary.Outcomes[0].Status)

	// Update must not have created the repository target from home data.
	assert.NoFileExists(t, env.RootPath("files/claude/mcp.json"))
}

func TestExtractMergeFailureLeavesHomeUntouched(t *testing.T) {
	env := testutil.NewEnv(t)
	home := env.HomePath(".claude.json")
	broken := `{not json at all`
	testutil.WriteFile(t, home, broken)
	testutil.WriteFile(t, env.RootPath("files/claude/mcp.json"), `{"b":2}`)

	summary := runUpdate(t, env.Engine(), extractManifest())
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, report.StatusMergeFailed, summary.Outcomes[0].Status)
	assert.True(t, summary.HasIssues())

	assert.Equal(t, broken, testutil.ReadFile(t, home), "failed merge must leave the original unmodified")
}

func TestExtractSyncBacksUpHomeFirst(t *testing.T) {
	env := testutil.NewEnv(t)
	home := env.HomePath(".claude.json")
	testutil.WriteFile(t, home, `{"mcpServers":{"a":1},"other":2}`)
	testutil.WriteFile(t, env.RootPath("files/claude/mcp.json"), `{"b":2}`)

	runUpdate(t, env.Engine(), extractManifest())

	// A backup of the pre-merge home file exists.
	matches, err := filepath.Glob(env.RootPath("backups/*/claude/.claude.json"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.JSONEq(t, `{"mcpServers":{"a":1},"other":2}`, testutil.ReadFile(t, matches[0]))
}

func TestExtractDryRunMutatesNothing(t *testing.T) {
	env := testutil.NewEnv(t)
	home := env.HomePath(".claude.json")
	before := `{"mcpServers":{"a":1}}`
	testutil.WriteFile(t, home, before)
	testutil.WriteFile(t, env.RootPath("files/claude/mcp.json"), `{"b":2}`)

	eng := env.Engine()
	eng.DryRun = true
	summary := runUpdate(t, eng, extractManifest())
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, report.StatusSynced, summary.Outcomes[0].Status)
	assert.True(t, summary.Outcomes[0].DryRun)

	assert.Equal(t, before, testutil.ReadFile(t, home))
}
