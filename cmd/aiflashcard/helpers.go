package main

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
	"github.com/at-ishikawa/aiflashcard/internal/config"
	"github.com/at-ishikawa/aiflashcard/internal/inference"
	"github.com/at-ishikawa/aiflashcard/internal/inference/gemini"
	"github.com/at-ishikawa/aiflashcard/internal/inference/openai"
	"github.com/at-ishikawa/aiflashcard/internal/logging"
)

func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// setupFileLogger adds the log file of the configuration to the console logger.
func setupFileLogger(cfg *config.Config) (func() error, error) {
	return logging.Setup(logging.Options{
		File:  cfg.LogFilePath(),
		Level: cfg.Logging.Level,
		Debug: debugMode,
	})
}

type closableClient interface {
	inference.Client
	Close() error
}

func newInferenceClient(cfg *config.Config) (closableClient, error) {
	credentials := cfg.Credentials()
	retryConfig := inference.DefaultRetryConfig(cfg.Model.MaxRetries)

	switch cfg.Model.Provider {
	case config.ProviderOpenAI:
		if credentials.APIKey == "" {
			return nil, apperr.Configuration("newInferenceClient", errors.New("OPENAI_API_KEY environment variable is required"))
		}
		return openai.NewClient(credentials.APIKey, credentials.BaseURL, retryConfig, cfg.Model.RequestTimeout), nil
	case config.ProviderGemini:
		if credentials.APIKey == "" {
			return nil, apperr.Configuration("newInferenceClient", errors.New("GEMINI_API_KEY environment variable is required"))
		}
		return gemini.NewClient(credentials.APIKey, credentials.BaseURL, retryConfig, cfg.Model.RequestTimeout), nil
	}
	return nil, apperr.Configuration("newInferenceClient", fmt.Errorf("unsupported provider: %s", cfg.Model.Provider))
}

func generationConfig(cfg *config.Config) inference.GenerationConfig {
	return inference.GenerationConfig{
		Model:           cfg.ModelName(),
		Temperature:     cfg.Model.Temperature,
		MaxOutputTokens: cfg.Model.MaxOutputTokens,
	}
}
