package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/aiflashcard/internal/testutil"
)

// setupBrokenConfigFile creates a config file with invalid YAML that causes Load() to fail.
func setupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	return cfgPath
}

// setupTestEnvironment isolates the environment and returns a config file
// with every directory inside a temporary directory.
func setupTestEnvironment(t *testing.T) (string, testutil.TestDirectories) {
	t.Helper()
	testutil.IsolateEnvironment(t)

	logger := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(logger)
	})
	return testutil.SetupTestConfig(t, t.TempDir())
}

// executeCommand runs the root command with args and returns its standard output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	rootCommand := newRootCommand()
	rootCommand.SetArgs(args)
	rootCommand.SetOut(&stdout)
	rootCommand.SetErr(&bytes.Buffer{})
	err := rootCommand.ExecuteContext(context.Background())
	return stdout.String(), err
}
