package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden-file representation of a scenario run: the
// final canonical document state plus every recorded change batch.
type TraceSnapshot struct {
	Scenario string          `json:"scenario"`
	Final    json.RawMessage `json:"final"`
	Batches  []Batch         `json:"batches"`
}

// RunWithGolden executes a scenario and compares its trace against the
// golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-executed result against the named
// golden file. The final snapshot is canonical JSON, and struct field
// order fixes the rest, so the serialization is byte-stable across runs.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		Scenario: name,
		Final:    json.RawMessage(result.Snapshot),
		Batches:  result.Batches,
	}
	if snapshot.Batches == nil {
		snapshot.Batches = []Batch{}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
