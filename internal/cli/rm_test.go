package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemove_Success(t *testing.T) {
	db := seedCatalog(t, validManifest)

	buf := &bytes.Buffer{}
	cmd := NewRemoveCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db, "command_end", "audit"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "command_end/audit removed")

	list := &bytes.Buffer{}
	listCmd := NewListCommand(&RootOptions{Format: "json"})
	listCmd.SetOut(list)
	listCmd.SetArgs([]string{"--db", db})
	require.NoError(t, listCmd.Execute())

	var response struct {
		Data ListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(list.Bytes(), &response))
	assert.Equal(t, 1, response.Data.Total)
}

func TestRemove_NameNotFound(t *testing.T) {
	db := seedCatalog(t, validManifest)

	buf := &bytes.Buffer{}
	cmd := NewRemoveCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db, "command_end", "phantom"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "NAME_NOT_FOUND")
}

func TestRemove_SecondRemovalFails(t *testing.T) {
	// The second removal reports not found instead of silently
	// succeeding.
	db := seedCatalog(t, validManifest)

	first := NewRemoveCommand(&RootOptions{Format: "text"})
	first.SetOut(&bytes.Buffer{})
	first.SetArgs([]string{"--db", db, "command_end", "audit"})
	require.NoError(t, first.Execute())

	second := NewRemoveCommand(&RootOptions{Format: "text"})
	second.SetOut(&bytes.Buffer{})
	second.SetArgs([]string{"--db", db, "command_end", "audit"})
	require.Error(t, second.Execute())
}
