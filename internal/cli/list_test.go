package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedCatalog applies a manifest to a fresh catalog and returns the
// database path.
func seedCatalog(t *testing.T, manifestCUE string) string {
	t.Helper()
	dir := writeManifestDir(t, manifestCUE)
	db := tempCatalogPath(t)

	cmd := NewApplyCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{dir, "--db", db})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("seeding catalog: %v", err)
	}
	return db
}

func TestList_GroupsByEvent(t *testing.T) {
	db := seedCatalog(t, validManifest)

	buf := &bytes.Buffer{}
	cmd := NewListCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db})

	err := cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "command_start (1)")
	assert.Contains(t, out, "command_end (1)")
	assert.Contains(t, out, "drop_guard: before, always → cb.guard [DROP TABLE, DROP SCHEMA]")
	assert.Contains(t, out, "audit: after, always → cb.audit [any command]")
}

func TestList_EventFilter(t *testing.T) {
	db := seedCatalog(t, validManifest)

	buf := &bytes.Buffer{}
	cmd := NewListCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db, "--event", "command_end"})

	err := cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "audit")
	assert.NotContains(t, out, "drop_guard")
}

func TestList_JSON(t *testing.T) {
	db := seedCatalog(t, validManifest)

	buf := &bytes.Buffer{}
	cmd := NewListCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db})

	err := cmd.Execute()
	require.NoError(t, err)

	var response struct {
		Status string     `json:"status"`
		Data   ListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, 2, response.Data.Total)
}

func TestList_EmptyCatalog(t *testing.T) {
	db := tempCatalogPath(t)

	buf := &bytes.Buffer{}
	cmd := NewListCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No registrations in catalog")
}

func TestList_UnknownEvent(t *testing.T) {
	db := seedCatalog(t, validManifest)

	buf := &bytes.Buffer{}
	cmd := NewListCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db, "--event", "command_middle"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "EVENT_UNKNOWN")
}
