// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/kpiprobe/internal/observability"
)

// executeCommand runs a fresh command tree with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	t.Setenv("ENV", "")
	t.Setenv("URL", "")

	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "kpiprobe version "+Version)
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "kpiprobe version "+Version+"\n", out)
}

func TestRootCmd_NoArgs(t *testing.T) {
	out, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "end-to-end checks against the Ottoviz KPI dashboard")
}

func TestListCmd(t *testing.T) {
	cfgFile := writeConfig(t, "logger:\n  level: fatal\n")
	out, err := executeCommand(t, "--config", cfgFile, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "login-logout")
	assert.Contains(t, out, "[qa.ottoviz.ominf.net] @smoke Verify that user can login and logout")
	assert.Contains(t, out, "details-timeline-events")
}

func TestListCmd_ConfigOverridesTarget(t *testing.T) {
	cfgFile := writeConfig(t, "logger:\n  level: fatal\ntarget:\n  environment: prod\n")
	out, err := executeCommand(t, "--config", cfgFile, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[prod.ottoviz.ominf.net]")
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	cfgFile := writeConfig(t, "logger:\n  level: fatal\ntarget:\n  environment: staging\n")
	_, err := executeCommand(t, "--config", cfgFile, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid environment 'staging'")
}

func TestRootCmd_UnreadableConfig(t *testing.T) {
	_, err := executeCommand(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfigFrom_Missing(t *testing.T) {
	_, err := configFrom(context.Background())
	assert.EqualError(t, err, "configuration not loaded")
}
