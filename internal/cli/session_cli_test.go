package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leveller/internal/model"
)

// writeTestConfig points the CLI at an isolated data directory.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: "+dir+"\n"), 0o600))
	return path
}

// runCLI executes one root-command invocation, as a user would.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSessionLifecycleAcrossInvocations(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCLI(t, "session", "start",
		"--config", cfg, "--mantra", "om mani padme hum", "--target", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "started session")

	// Each invocation is a fresh process-equivalent; the pointer and
	// the session survive in the data dir.
	out, err = runCLI(t, "session", "count", "--config", cfg, "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2/3")

	out, err = runCLI(t, "session", "count", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")

	// Completion ended the session; further counting has no target.
	_, err = runCLI(t, "session", "count", "--config", cfg)
	require.Error(t, err)
}

func TestSessionStartValidation(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCLI(t, "session", "start", "--config", cfg, "--target", "3")
	require.Error(t, err, "missing mantra must be rejected")

	_, err = runCLI(t, "session", "start",
		"--config", cfg, "--mantra", "om", "--target", "0")
	require.Error(t, err, "non-positive target must be rejected")
}

func TestSessionListJSON(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCLI(t, "session", "start",
		"--config", cfg, "--mantra", "om", "--target", "108", "--name", "First")
	require.NoError(t, err)

	out, err := runCLI(t, "session", "list", "--config", cfg, "--format", "json")
	require.NoError(t, err)

	var sessions []model.MantraSession
	require.NoError(t, json.Unmarshal([]byte(out), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "First", sessions[0].Name)
	assert.True(t, sessions[0].IsActive)
}

func TestSessionEndBelowTarget(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCLI(t, "session", "start",
		"--config", cfg, "--mantra", "om", "--target", "108")
	require.NoError(t, err)

	out, err := runCLI(t, "session", "end", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "ended session")

	// No active session remains.
	_, err = runCLI(t, "session", "end", "--config", cfg)
	require.Error(t, err)
}

func TestInvalidFormatRejected(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCLI(t, "session", "list", "--config", cfg, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSettingsRoundTrip(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCLI(t, "settings", "show", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "active module: radionics")
	assert.Contains(t, out, "mic permission: false")

	_, err = runCLI(t, "settings", "grant-mic", "--config", cfg)
	require.NoError(t, err)
	_, err = runCLI(t, "settings", "module", "mantra", "--config", cfg)
	require.NoError(t, err)

	out, err = runCLI(t, "settings", "show", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "active module: mantra")
	assert.Contains(t, out, "mic permission: true")
}
