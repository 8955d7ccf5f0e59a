package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactdb/internal/harness"
)

const passingScenario = `name: add_two
description: two creates get consecutive keys
steps:
  - op: save
    contacts:
      - label: Ada
      - label: Bob
assertions:
  - type: event_keys
    event: contactsAdded
    keys: [1, 2]
`

const failingScenario = `name: wrong_code
description: removing a missing contact is not NO_ERROR
steps:
  - op: remove
    ids: [9]
`

func TestTestCommandMissingArgs(t *testing.T) {
	clearEnv(t)
	_, err := runCLI(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	clearEnv(t)
	_, err := runCLI(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory")
}

func TestTestCommandEmptyDir(t *testing.T) {
	clearEnv(t)
	out, err := runCLI(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandPassAndUpdate(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "add_two.yaml", passingScenario)

	out, err := runCLI(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ add_two")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")

	out, err = runCLI(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "(golden updated)")
	_, err = os.Stat(filepath.Join(dir, "golden", "add_two.golden"))
	require.NoError(t, err)

	out, err = runCLI(t, "test", dir, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Status string              `json:"status"`
		Data   harness.SuiteResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, harness.GoldenMatched, resp.Data.Scenarios[0].Golden)
}

func TestTestCommandFailure(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "add_two.yaml", passingScenario)
	writeFile(t, dir, "wrong_code.yaml", failingScenario)

	out, err := runCLI(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_code")
	assert.Contains(t, out, "DOES_NOT_EXIST")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")

	out, err = runCLI(t, "test", dir, "--filter", "add_*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}
