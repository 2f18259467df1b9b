package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures the trace and outcomes of a scenario run for
// golden comparison. Serialization is plain indented JSON; struct
// field order keeps the bytes stable.
type TraceSnapshot struct {
	ScenarioName string           `json:"scenario_name"`
	Trace        []TraceEvent     `json:"trace"`
	Outcomes     []CommandOutcome `json:"outcomes"`
}

// RunWithGolden executes a scenario and compares its trace against a
// golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails; trace mismatches fail
// the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}

	return result, nil
}

// AssertGolden compares a result's trace and outcomes against the
// golden file for scenarioName. Useful when the scenario has already
// run and the result is in hand.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Outcomes:     result.Outcomes,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
