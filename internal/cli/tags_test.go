package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTagsCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "26 command tags")
	assert.Contains(t, output, "  CREATE TABLE\n")
	assert.Contains(t, output, "  ALTER DOMAIN\n")
	assert.Contains(t, output, "  DROP TRIGGER\n")
}

func TestTags_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTagsCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)

	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal(data, &names))
	require.Len(t, names, 26)
	assert.Equal(t, "CREATE TABLE", names[0])
	assert.Equal(t, "DROP TRIGGER", names[25])
}

func TestTags_RejectsArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTagsCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"extra"})

	err := cmd.Execute()
	require.Error(t, err)
}
