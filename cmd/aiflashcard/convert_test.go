package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
)

func TestConvertCommand(t *testing.T) {
	cfgPath, dirs := setupTestEnvironment(t)
	responsePath := filepath.Join(t.TempDir(), "response.csv")
	require.NoError(t, os.WriteFile(responsePath, []byte(photosynthesisResponse), 0644))

	got, err := executeCommand(t, "convert", "--config", cfgPath, responsePath)
	require.NoError(t, err)

	importPath := filepath.Join(dirs.Output, "flashcards.txt")
	assert.Equal(t, "4 flashcards written to "+importPath+"\n", got)
	tsv, err := os.ReadFile(importPath)
	require.NoError(t, err)
	assert.Contains(t, string(tsv), "Which gas is released during photosynthesis?\tOxygen.\n")
}

func TestConvertCommand_Errors(t *testing.T) {
	t.Run("requires a response file", func(t *testing.T) {
		cfgPath, _ := setupTestEnvironment(t)
		_, err := executeCommand(t, "convert", "--config", cfgPath)
		require.Error(t, err)
	})

	t.Run("invalid response", func(t *testing.T) {
		cfgPath, dirs := setupTestEnvironment(t)
		responsePath := filepath.Join(t.TempDir(), "response.csv")
		require.NoError(t, os.WriteFile(responsePath, []byte("Sorry, I can't help with that."), 0644))

		_, err := executeCommand(t, "convert", "--config", cfgPath, responsePath)
		require.Error(t, err)
		assert.Equal(t, apperr.KindFormat, apperr.KindOf(err))
		assert.NoFileExists(t, filepath.Join(dirs.Output, "flashcards.txt"))
	})
}
