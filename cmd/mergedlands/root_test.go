package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidVonDerau/merged-lands/internal/domain/landscape"
)

func TestFormatError_UserError(t *testing.T) {
	err := &landscape.UserError{
		Code:       landscape.ErrCodePatchInvalid,
		Message:    "patch descriptor is invalid",
		Context:    "Mod.patch.toml",
		Suggestion: "fix the descriptor",
		Underlying: errors.New("unknown key"),
	}

	verbose = false
	msg := formatError(err)
	assert.Contains(t, msg, "patch descriptor is invalid")
	assert.Contains(t, msg, "Mod.patch.toml")
	assert.Contains(t, msg, "Suggestion: fix the descriptor")
	assert.NotContains(t, msg, "unknown key")

	verbose = true
	defer func() { verbose = false }()
	assert.Contains(t, formatError(err), "unknown key")
}

func TestFormatError_PlainError(t *testing.T) {
	assert.Equal(t, "boom", formatError(errors.New("boom")))
}

func TestPrintErrorTo(t *testing.T) {
	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(buf.String(), "mergedlands "))
}
