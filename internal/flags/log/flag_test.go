package log

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func command(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	RegisterLoggingFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(args))

	return cmd, &stdout, &stderr
}

func TestGetBaseLogger_Defaults(t *testing.T) {
	cmd, stdout, stderr := command(t)

	logger, err := GetBaseLogger(cmd)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "level=WARN msg=shown key=value")
	assert.NotContains(t, stderr.String(), "hidden")
}

func TestGetBaseLogger_JSONStdout(t *testing.T) {
	cmd, stdout, stderr := command(t, "--logformat", "json", "--loglevel", "debug", "--logoutput", "stdout")

	logger, err := GetBaseLogger(cmd)
	require.NoError(t, err)

	logger.Debug("details")

	assert.Empty(t, stderr.String())
	assert.Contains(t, stdout.String(), `"level":"DEBUG","msg":"details"`)
}

func TestGetBaseLogger_MissingFlags(t *testing.T) {
	_, err := GetBaseLogger(&cobra.Command{Use: "bare"})
	require.Error(t, err)
}
