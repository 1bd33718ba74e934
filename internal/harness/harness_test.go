package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios_Golden runs every scenario under testdata/scenarios
// against each backend it lists and compares the normalized transcript
// against the scenario's golden file. One golden per scenario covers all
// of its backends; a drifting backend shows up as a goldie diff.
func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "no scenario files found")

	for _, path := range files {
		scenario, err := LoadScenario(path)
		require.NoError(t, err, "load %s", path)

		for _, backend := range scenario.Backends {
			t.Run(scenario.Name+"/"+backend, func(t *testing.T) {
				result, err := RunWithGolden(t, scenario, backend)
				require.NoError(t, err)
				assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
			})
		}
	}
}

func TestRun_UnknownBackend(t *testing.T) {
	scenario := &Scenario{
		Name:  "x",
		Steps: []Step{{Op: OpAll}},
	}

	_, err := Run(scenario, "etcd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "etcd"`)
}

func TestRun_NormalizesIdentitiesAcrossBackends(t *testing.T) {
	scenario := &Scenario{
		Name: "identities",
		Steps: []Step{
			{Op: OpSave, User: &UserSpec{Name: "Ann"}},
			{Op: OpSave, User: &UserSpec{Name: "Ben"}},
		},
	}

	var transcripts [][]Event
	for _, backend := range Backends {
		result, err := Run(scenario, backend)
		require.NoError(t, err, backend)
		transcripts = append(transcripts, result.Events)
	}

	for i := 1; i < len(transcripts); i++ {
		assert.Equal(t, transcripts[0], transcripts[i],
			"transcript for %s differs from %s", Backends[i], Backends[0])
	}
	assert.Equal(t, "id#0", transcripts[0][0].ID)
	assert.Equal(t, "id#1", transcripts[0][1].ID)
}

func TestRun_RawIDsStayBackendNative(t *testing.T) {
	scenario := &Scenario{
		Name: "raw",
		Steps: []Step{
			{Op: OpSave, User: &UserSpec{Name: "Ann"}},
			{Op: OpSave, User: &UserSpec{Name: "Ben"}},
		},
	}

	list, err := Run(scenario, BackendList)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, list.RawIDs)

	sqlite, err := Run(scenario, BackendSQLite)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, sqlite.RawIDs)

	hash, err := Run(scenario, BackendHash)
	require.NoError(t, err)
	require.Len(t, hash.RawIDs, 2)
	assert.NotEqual(t, hash.RawIDs[0], hash.RawIDs[1])
}

func TestRun_GetRendersLoadedRecord(t *testing.T) {
	scenario := &Scenario{
		Name: "loaded",
		Steps: []Step{
			{Op: OpSave, User: &UserSpec{Name: "Ann"}},
			{Op: OpGet, Ref: 0},
		},
	}

	result, err := Run(scenario, BackendList)
	require.NoError(t, err)

	event := result.Events[1]
	require.NotNil(t, event.Found)
	assert.True(t, *event.Found)
	assert.Equal(t, "Ann", event.User)
}

func TestRun_FindOnListBackendFails(t *testing.T) {
	scenario := &Scenario{
		Name: "no-find",
		Steps: []Step{
			{Op: OpFind, Name: "Ann"},
		},
	}

	_, err := Run(scenario, BackendList)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support find")
}
