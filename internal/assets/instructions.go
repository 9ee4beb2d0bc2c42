package assets

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
)

//go:embed templates/instructions.txt
var defaultInstructions string

// DefaultInstructions returns the embedded instruction template.
func DefaultInstructions() string {
	return defaultInstructions
}

// LoadInstructions reads the instruction template at path.
// An empty path selects the embedded template.
func LoadInstructions(path string) (string, error) {
	if path == "" {
		slog.Default().Debug("Using embedded instructions")
		return defaultInstructions, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.Configuration("assets.LoadInstructions", fmt.Errorf("instructions file not found at %s: %w", path, err))
	}
	slog.Default().Info("Loaded instructions", slog.String("path", path))
	return string(contents), nil
}
