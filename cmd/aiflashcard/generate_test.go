package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
	"github.com/at-ishikawa/aiflashcard/internal/testutil"
)

const photosynthesisNote = "Photosynthesis is the process by which green plants use sunlight, water and carbon dioxide to make glucose. It takes place in the chloroplasts and releases oxygen."

const photosynthesisResponse = `question,answer
"What is photosynthesis?","It is the process by which green plants use sunlight, water and carbon dioxide to make glucose."
"Where does photosynthesis take place?","In the chloroplasts."
"What are the inputs of photosynthesis?","Sunlight, water and carbon dioxide."
"Which gas is released during photosynthesis?","Oxygen."
`

func newGeminiServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-3-flash-preview:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
					"finishReason": "STOP",
				},
			},
		}))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGenerateCommand(t *testing.T) {
	cfgPath, dirs := setupTestEnvironment(t)
	testutil.WriteNotes(t, dirs.Notes, map[string]string{"photosynthesis.txt": photosynthesisNote})

	server := newGeminiServer(t, photosynthesisResponse)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_BASE_URL", server.URL)

	for _, args := range [][]string{
		{"generate", "--config", cfgPath},
		{"--config", cfgPath},
	} {
		_, err := executeCommand(t, args...)
		require.NoError(t, err)

		tsv, err := os.ReadFile(filepath.Join(dirs.Output, "flashcards.txt"))
		require.NoError(t, err)
		assert.Equal(t, "What is photosynthesis?\tIt is the process by which green plants use sunlight, water and carbon dioxide to make glucose.\n"+
			"Where does photosynthesis take place?\tIn the chloroplasts.\n"+
			"What are the inputs of photosynthesis?\tSunlight, water and carbon dioxide.\n"+
			"Which gas is released during photosynthesis?\tOxygen.\n", string(tsv))

		raw, err := os.ReadFile(filepath.Join(dirs.Logs, "response.csv"))
		require.NoError(t, err)
		assert.Equal(t, photosynthesisResponse, string(raw))

		logContent, err := os.ReadFile(filepath.Join(dirs.Logs, "aiflashcard.log"))
		require.NoError(t, err)
		assert.Contains(t, string(logContent), "Generated flashcards")
	}
}

func TestGenerateCommand_DryRun(t *testing.T) {
	cfgPath, dirs := setupTestEnvironment(t)
	testutil.WriteNotes(t, dirs.Notes, map[string]string{"photosynthesis.txt": photosynthesisNote})

	instructionsPath := filepath.Join(t.TempDir(), "instructions.txt")
	require.NoError(t, os.WriteFile(instructionsPath, []byte("Make flashcards."), 0644))

	got, err := executeCommand(t, "generate", "--config", cfgPath, "--dry-run", "--instructions", instructionsPath)
	require.NoError(t, err)
	assert.Equal(t, "Make flashcards.\n\n# photosynthesis\n\n"+photosynthesisNote+"\n", got)
	assert.NoFileExists(t, filepath.Join(dirs.Output, "flashcards.txt"))
}

func TestGenerateCommand_Errors(t *testing.T) {
	tests := []struct {
		name            string
		args            func(cfgPath string) []string
		env             map[string]string
		wantKind        apperr.Kind
		wantErrContains string
	}{
		{
			name:            "missing gemini api key",
			args:            func(cfgPath string) []string { return []string{"generate", "--config", cfgPath} },
			wantKind:        apperr.KindConfiguration,
			wantErrContains: "GEMINI_API_KEY environment variable is required",
		},
		{
			name:            "missing openai api key",
			args:            func(cfgPath string) []string { return []string{"generate", "--config", cfgPath, "--provider", "openai"} },
			wantKind:        apperr.KindConfiguration,
			wantErrContains: "OPENAI_API_KEY environment variable is required",
		},
		{
			name:            "broken config file",
			args:            func(string) []string { return []string{"generate", "--config", setupBrokenConfigFile(t)} },
			wantKind:        apperr.KindConfiguration,
			wantErrContains: "could not be read",
		},
		{
			name:            "temperature out of range",
			args:            func(cfgPath string) []string { return []string{"generate", "--config", cfgPath, "--temperature", "3"} },
			wantKind:        apperr.KindConfiguration,
			wantErrContains: "temperature",
		},
		{
			name: "notes directory not found",
			args: func(cfgPath string) []string {
				return []string{"generate", "--config", cfgPath, "--notes-dir", filepath.Join(t.TempDir(), "missing")}
			},
			env:             map[string]string{"GEMINI_API_KEY": "test-key"},
			wantKind:        apperr.KindConfiguration,
			wantErrContains: "notes directory not found",
		},
		{
			name: "response without the header",
			args: func(cfgPath string) []string { return []string{"generate", "--config", cfgPath} },
			env: map[string]string{
				"GEMINI_API_KEY":  "test-key",
				"GEMINI_BASE_URL": newGeminiServer(t, "\"Q\",\"A\"\n").URL,
			},
			wantKind:        apperr.KindFormat,
			wantErrContains: "header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath, dirs := setupTestEnvironment(t)
			testutil.WriteNotes(t, dirs.Notes, map[string]string{"photosynthesis.txt": photosynthesisNote})
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := executeCommand(t, tt.args(cfgPath)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantErrContains)
			assert.NoFileExists(t, filepath.Join(dirs.Output, "flashcards.txt"))
		})
	}
}
