package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claycmd/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("CLAY_LOG_LEVEL", "error")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestExecCommand(t *testing.T) {
	out, err := execute(t, "exec", "add", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestExecCommand_Error(t *testing.T) {
	_, err := execute(t, "exec", "add", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected 2 positional argument(s), 1 given`)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.GetFormattedVersion()+"\n", out)
}
