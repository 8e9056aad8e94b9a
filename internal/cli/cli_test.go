package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/icebridge/internal/app"
)

func TestParse_VerbAndDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"plan", "-stack", "stacks/landing"}, &out)

	require.NoError(t, err)
	assert.False(t, exit)
	require.NotNil(t, cfg)
	assert.Equal(t, app.VerbPlan, cfg.Verb)
	assert.Equal(t, "stacks/landing", cfg.StackPath)
	assert.Equal(t, "icebridge.state.db", cfg.StatePath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.WorkerCount)
}

func TestParse_PositionalStackPath(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"apply", "stacks/landing"}, &out)

	require.NoError(t, err)
	assert.Equal(t, app.VerbApply, cfg.Verb)
	assert.Equal(t, "stacks/landing", cfg.StackPath)
}

func TestParse_AllFlags(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{
		"sync-trust",
		"-stack", "s.hcl",
		"-state", "custom.db",
		"-log-format", "json",
		"-log-level", "DEBUG",
		"-workers", "8",
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, app.VerbSyncTrust, cfg.Verb)
	assert.Equal(t, "custom.db", cfg.StatePath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.WorkerCount)
}

func TestParse_NoArgsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)

	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "sync-trust")
}

func TestParse_HelpExitsCleanly(t *testing.T) {
	var out bytes.Buffer
	_, exit, err := Parse([]string{"help"}, &out)

	require.NoError(t, err)
	assert.True(t, exit)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_MissingStackPathFails(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"plan"}, &out)

	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "stack path")
}

func TestParse_UnknownVerbFails(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"frobnicate", "-stack", "x"}, &out)

	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "unknown command")
}

func TestParse_InvalidLogSettingsFail(t *testing.T) {
	var out bytes.Buffer
	_, _, err := Parse([]string{"plan", "-stack", "x", "-log-format", "yaml"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log-format")

	_, _, err = Parse([]string{"plan", "-stack", "x", "-log-level", "loud"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log-level")
}
