// Package testutil provides shared test helpers for creating config files and note fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Environment variables read by the configuration, cleared by IsolateEnvironment.
var environmentVariables = []string{
	"AI_PROVIDER", "AI_MODEL", "GEMINI_MODEL", "OPENAI_MODEL",
	"GEMINI_TEMPERATURE", "GEMINI_MAX_OUTPUT_TOKENS", "AI_MAX_RETRIES", "AI_REQUEST_TIMEOUT",
	"GEMINI_API_KEY", "GEMINI_2.5_API_KEY", "GEMINI_BASE_URL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
	"NOTES_DIR", "NOTES_PATTERN", "INSTRUCTIONS_PATH", "STUDY_SHEET_TEMPLATE", "OUTPUT_DIR",
	"AI_FLASHCARD_PDF", "LOGS_DIR", "APP_LOG_FILE", "APP_LOG_LEVEL",
}

// IsolateEnvironment clears the application's environment variables and points
// HOME at a temporary directory for the duration of the test.
func IsolateEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, env := range environmentVariables {
		t.Setenv(env, "")
	}
}

// TestDirectories are the directories referenced by a test config file.
type TestDirectories struct {
	Notes  string
	Output string
	Logs   string
}

// SetupTestConfig creates a config file pointing every directory into tmpDir.
// The notes directory is created; output and logs directories are left to the application.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) (string, TestDirectories) {
	t.Helper()

	dirs := TestDirectories{
		Notes:  filepath.Join(tmpDir, "notes"),
		Output: filepath.Join(tmpDir, "output"),
		Logs:   filepath.Join(tmpDir, "logs"),
	}
	require.NoError(t, os.MkdirAll(dirs.Notes, 0755))

	configContent := fmt.Sprintf(`notes:
  directory: %s
outputs:
  directory: %s
logging:
  directory: %s
`, dirs.Notes, dirs.Output, dirs.Logs)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath, dirs
}

// WriteNotes writes note files, keyed by slash-separated paths relative to dir.
func WriteNotes(t *testing.T, dir string, notes map[string]string) {
	t.Helper()
	for name, content := range notes {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}
