package inference

import (
	"context"

	"github.com/at-ishikawa/aiflashcard/internal/prompt"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client sends a prompt to a hosted model and returns its text completion.
// Failures are returned as ApiErrors.
type Client interface {
	Complete(ctx context.Context, p prompt.Prompt, config GenerationConfig) (string, error)
}

// GenerationConfig holds the sampling parameters of one request
type GenerationConfig struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}
