package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersionInfo(t *testing.T) {
	origVersion := versionInfo.Version
	origCommit := versionInfo.Commit
	origBuildDate := versionInfo.BuildDate
	defer func() {
		versionInfo.Version = origVersion
		versionInfo.Commit = origCommit
		versionInfo.BuildDate = origBuildDate
	}()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
	}{
		{name: "release build", version: "1.0.0", commit: "abc123", buildDate: "2026-08-01"},
		{name: "dev build", version: "dev", commit: "HEAD", buildDate: "unknown"},
		{name: "empty values", version: "", commit: "", buildDate: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersionInfo(tt.version, tt.commit, tt.buildDate)

			assert.Equal(t, tt.version, versionInfo.Version)
			assert.Equal(t, tt.commit, versionInfo.Commit)
			assert.Equal(t, tt.buildDate, versionInfo.BuildDate)
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"plan", "candidates", "groups", "threshold", "restrict",
		"export", "serve", "version",
	}
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, names[name], "command %q not registered", name)
	}

	var plan *cobra.Command
	for _, c := range rootCmd.Commands() {
		if c.Name() == "plan" {
			plan = c
		}
	}
	require.NotNil(t, plan)
	sub := make(map[string]bool)
	for _, c := range plan.Commands() {
		sub[c.Name()] = true
	}
	assert.True(t, sub["auto"])
	assert.True(t, sub["interactive"])
}

func TestNewExportWriterRejectsUnknownFormat(t *testing.T) {
	_, err := newExportWriter("xlsx", nil, "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
