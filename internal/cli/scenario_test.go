package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioDir = "../harness/testdata/scenarios"

func writeScenario(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const failingScenario = `name: wrong_expectation
description: Expects a cache decision that cannot happen
network:
  - kind: setStations
    payload: [{id: a}]
expect:
  decisions:
    stations: cache
`

func TestScenario_Pass(t *testing.T) {
	isolate(t)
	files, err := filepath.Glob(filepath.Join(scenarioDir, "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	stdout, _, err := execute(t, append([]string{"scenario"}, files...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ network_wins\n")
	assert.NotContains(t, stdout, "✗")
	assert.Contains(t, stdout, "0 failed")
}

func TestScenario_Failure(t *testing.T) {
	isolate(t)
	path := writeScenario(t, "fail.yaml", failingScenario)

	stdout, _, err := execute(t, "scenario", filepath.Join(scenarioDir, "network_wins.yaml"), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✓ network_wins\n")
	assert.Contains(t, stdout, "✗ wrong_expectation\n")
	assert.Contains(t, stdout, "Assertion failed: decisions.stations")
	assert.Contains(t, stdout, "1 passed, 1 failed, 2 total\n")
}

func TestScenario_JSON(t *testing.T) {
	isolate(t)
	path := writeScenario(t, "fail.yaml", failingScenario)

	stdout, _, err := execute(t, "scenario", "--format", "json", filepath.Join(scenarioDir, "network_wins.yaml"), path)
	require.Error(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   ScenarioReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)

	first := resp.Data.Scenarios[0]
	assert.True(t, first.Pass)
	assert.Equal(t, "memory", first.Decisions["stations"])
	assert.Equal(t, "default", first.Decisions["settings"])

	second := resp.Data.Scenarios[1]
	assert.False(t, second.Pass)
	assert.NotEmpty(t, second.Errors)
}

func TestScenario_RepairedDecision(t *testing.T) {
	isolate(t)
	stdout, _, err := execute(t, "scenario", "--format", "json", filepath.Join(scenarioDir, "corrupt_repaired.yaml"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "(repaired)")
}

func TestScenario_LoadError(t *testing.T) {
	isolate(t)
	path := writeScenario(t, "bad.yaml", "name: x\nunknown_field: 1\n")

	stdout, _, err := execute(t, "scenario", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ bad.yaml\n")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestScenario_RequiresFile(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "scenario")
	assert.Error(t, err)
}
