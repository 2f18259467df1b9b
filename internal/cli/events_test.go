package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewEventsCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "5 lifecycle events")
	assert.Contains(t, output, "command_start")
	assert.Contains(t, output, "name_lookup")
	assert.Contains(t, output, "command_end")
	assert.Contains(t, output, "cancelable")
}

func TestEvents_JSON_FiringOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewEventsCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)

	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var infos []EventInfo
	require.NoError(t, json.Unmarshal(data, &infos))
	require.Len(t, infos, 5)

	assert.Equal(t, "command_start", infos[0].Event)
	assert.Equal(t, "security_check", infos[1].Event)
	assert.Equal(t, "consistency_check", infos[2].Event)
	assert.Equal(t, "name_lookup", infos[3].Event)
	assert.Equal(t, "command_end", infos[4].Event)

	// Everything up to command_end runs before the command body and may
	// be vetoed; command_end itself may not.
	for _, info := range infos[:4] {
		assert.Equal(t, "before", info.Class, info.Event)
		assert.True(t, info.CanCancel, info.Event)
	}
	assert.Equal(t, "after", infos[4].Class)
	assert.False(t, infos[4].CanCancel)
}
