package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inspectResponse struct {
	Status string         `json:"status"`
	Data   []InspectEntry `json:"data"`
}

func TestInspect_FreshStoreShowsDefaults(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "nested", "c.db")

	stdout, _, err := execute(t, "inspect", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp inspectResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 4)

	want := map[string]string{
		"dashboard": "[]",
		"sensors":   "{}",
		"settings":  "{}",
		"stations":  "[]",
	}
	for _, e := range resp.Data {
		assert.Equal(t, "ok", e.Status, e.Slice)
		assert.Equal(t, want[e.Slice], string(e.Value), e.Slice)
		assert.Empty(t, e.Error)
	}
}

func TestInspect_TextAfterPut(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "c.db")

	_, _, err := execute(t, "put", "stations", `[{"id":"a"}]`, "--db", db)
	require.NoError(t, err)

	stdout, _, err := execute(t, "inspect", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "stations   ok       [{\"id\":\"a\"}]\n")
	assert.Contains(t, stdout, "settings   ok       {}\n")
}

func TestInspect_Bolt(t *testing.T) {
	isolate(t)
	db := filepath.Join(t.TempDir(), "c.bolt")

	_, _, err := execute(t, "put", "settings", `{"units":"metric"}`, "--db", db, "--backend", "bolt")
	require.NoError(t, err)

	stdout, _, err := execute(t, "inspect", "--db", db, "--backend", "bolt", "--format", "json")
	require.NoError(t, err)

	var resp inspectResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	for _, e := range resp.Data {
		if e.Slice == "settings" {
			assert.JSONEq(t, `{"units":"metric"}`, string(e.Value))
		}
	}
}

func TestInspect_RejectsArgs(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "inspect", "extra")
	assert.Error(t, err)
}
