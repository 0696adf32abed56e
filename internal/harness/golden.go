package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/stationcache/internal/value"
)

// Snapshot is the deterministic part of a Result: everything except the
// attach run id.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// Value converts the snapshot to a value.Map for canonical JSON.
func (s Snapshot) Value() value.Map {
	decisions := make(value.List, len(s.Result.Decisions))
	for i, d := range s.Result.Decisions {
		decisions[i] = value.MapOf(
			value.P("slice", value.String(d.Slice)),
			value.P("source", value.String(d.Source)),
			value.P("repaired", value.Bool(d.Repaired)),
		)
	}

	commits := make(value.List, len(s.Result.Commits))
	for i, c := range s.Result.Commits {
		commits[i] = value.MapOf(
			value.P("phase", value.String(c.Phase)),
			value.P("kind", value.String(c.Kind)),
			value.P("seq", value.Int(c.Seq)),
		)
	}

	state := value.Map{}
	for name, v := range s.Result.State {
		state[string(name)] = v
	}
	cached := value.Map{}
	for name, v := range s.Result.Cache {
		cached[string(name)] = v
	}
	writes := value.Map{}
	for name, n := range s.Result.Writes {
		writes[string(name)] = value.Int(n)
	}

	return value.MapOf(
		value.P("scenario", value.String(s.ScenarioName)),
		value.P("decisions", decisions),
		value.P("commits", commits),
		value.P("state", state),
		value.P("cache", cached),
		value.P("writes", writes),
	)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass. An error means the
// scenario could not run.
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

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := value.Marshal(Snapshot{ScenarioName: scenarioName, Result: result}.Value())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
