package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_RegistersCommands(t *testing.T) {
	for _, name := range []string{"serve", "report", "digest"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Empty(t, flag.DefValue)
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	configPath = ""
	t.Cleanup(func() { configPath = "" })
	assert.Equal(t, defaultConfigPath, resolveConfigPath())

	t.Setenv("CONFIG_PATH", "/etc/alert-insights.yaml")
	assert.Equal(t, "/etc/alert-insights.yaml", resolveConfigPath())

	configPath = "local.yaml"
	assert.Equal(t, "local.yaml", resolveConfigPath())
}

func TestParseDurationFlag(t *testing.T) {
	d, err := parseDurationFlag("")
	require.NoError(t, err)
	assert.Zero(t, d)

	d, err = parseDurationFlag("3d")
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, d)

	_, err = parseDurationFlag("soon")
	assert.Error(t, err)
}

func TestRunReport_RequiresAccount(t *testing.T) {
	err := runReport(&bytes.Buffer{}, "ccu", reportFlags{})

	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 2, ee.code)
}

func TestRunDigest_RequiresAccount(t *testing.T) {
	err := runDigest(&bytes.Buffer{}, 0, "")

	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 2, ee.code)
}

func TestExitCodeForError(t *testing.T) {
	var stderr bytes.Buffer

	assert.Equal(t, 0, runMain(func() error { return nil }, &stderr))
	assert.Equal(t, 1, runMain(func() error { return errors.New("boom") }, &stderr))
	assert.Equal(t, 130, runMain(func() error { return context.Canceled }, &stderr))
	assert.Equal(t, 3, runMain(func() error { return &exitError{code: 3, silent: true} }, &stderr))

	assert.Contains(t, stderr.String(), "boom")
	assert.Contains(t, stderr.String(), "canceled")
}
