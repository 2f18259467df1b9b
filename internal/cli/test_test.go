package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: single_audit
registrations:
  - name: audit
    event: command_end
    callback: cb.audit
commands:
  - label: make_users
    node:
      create_table:
        table:
          name: users
        columns:
          - name: id
            type:
              name: bigint
expect:
  - type: fired
    registration: audit
`

const failingScenario = `name: wrong_count
registrations:
  - name: audit
    event: command_end
    callback: cb.audit
commands:
  - label: make_users
    node:
      create_table:
        table:
          name: users
        columns:
          - name: id
            type:
              name: bigint
expect:
  - type: count
    registration: audit
    count: 2
`

func writeScenario(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTestCommand_PassingScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "single_audit.yaml", passingScenario)

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ single_audit")
	assert.Contains(t, output, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, output, "✓ All scenarios passed")
}

func TestTestCommand_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong_count.yaml", failingScenario)

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 scenario(s) failed")

	output := buf.String()
	assert.Contains(t, output, "✗ wrong_count")
	assert.Contains(t, output, "Assertion failed")
	assert.Contains(t, output, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "alpha.yaml", passingScenario)
	writeScenario(t, dir, "beta.yaml", failingScenario)

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir, "--filter", "alpha"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "single_audit")
	assert.NotContains(t, output, "wrong_count")
	assert.Contains(t, output, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommand_UpdateGoldenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "single_audit.yaml", passingScenario)

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir, "--update"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ single_audit (golden updated)")

	goldenPath := filepath.Join(dir, "golden", "single_audit.golden")
	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "single_audit"`)

	// A second run must reproduce the trace byte for byte.
	buf.Reset()
	rerun := NewTestCommand(&RootOptions{Format: "text"})
	rerun.SetOut(buf)
	rerun.SetArgs([]string{dir})

	err = rerun.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ single_audit")
	assert.Contains(t, buf.String(), "1 passed, 0 failed")
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "single_audit.yaml", passingScenario)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	stale := []byte("{\n  \"scenario_name\": \"stale\"\n}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "single_audit.golden"), stale, 0o644))

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Golden file mismatch")
}

func TestTestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "single_audit.yaml", passingScenario)
	writeScenario(t, dir, "wrong_count.yaml", failingScenario)

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, "E_TEST_FAILED", response.Error.Code)

	data, err := json.Marshal(response.Data)
	require.NoError(t, err)
	var result TestResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
}

func TestTestCommand_NoScenarios(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scenarios found.")
}

func TestTestCommand_MissingDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommand_LoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\ncommands: [unclosed")

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)

	output := buf.String()
	assert.Contains(t, output, "✗ broken.yaml")
	assert.Contains(t, output, "Load error:")
	assert.Contains(t, output, "0 passed, 1 failed, 1 total")
}
