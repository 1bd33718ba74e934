package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the golden-file shape: the scenario name plus its
// normalized transcript. Because the transcript carries no backend-native
// identities and sorts unordered lists, every backend a scenario runs on
// compares against the same snapshot.
type Snapshot struct {
	ScenarioName string  `json:"scenario_name"`
	Events       []Event `json:"events"`
}

// RunWithGolden executes a scenario against one backend and compares the
// transcript against testdata/scenarios/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error when the run itself fails; a transcript mismatch fails
// the test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario, backend string) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, backend)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a finished result's transcript against the
// scenario's golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/scenarios/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

// MarshalSnapshot serializes a transcript in golden-file form.
func MarshalSnapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{ScenarioName: scenarioName, Events: result.Events}
	return json.MarshalIndent(snapshot, "", "  ")
}
