package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRename_Success(t *testing.T) {
	db := seedCatalog(t, validManifest)

	buf := &bytes.Buffer{}
	cmd := NewRenameCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db, "command_end", "audit", "audit_v2"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "command_end/audit renamed to audit_v2")

	// The old name is gone, the new one resolves.
	list := &bytes.Buffer{}
	listCmd := NewListCommand(&RootOptions{Format: "text"})
	listCmd.SetOut(list)
	listCmd.SetArgs([]string{"--db", db, "--event", "command_end"})
	require.NoError(t, listCmd.Execute())
	assert.Contains(t, list.String(), "audit_v2:")
	assert.NotContains(t, list.String(), " audit:")
}

func TestRename_OldNameNotFound(t *testing.T) {
	db := seedCatalog(t, validManifest)

	buf := &bytes.Buffer{}
	cmd := NewRenameCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db, "command_end", "phantom", "renamed"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "NAME_NOT_FOUND")
}

func TestRename_CollisionRejected(t *testing.T) {
	db := seedCatalog(t, `
registrations: first: {
	event:    "command_end"
	callback: "cb.first"
}
registrations: second: {
	event:    "command_end"
	callback: "cb.second"
}
`)

	buf := &bytes.Buffer{}
	cmd := NewRenameCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db, "command_end", "first", "second"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "DUPLICATE_NAME")
}
