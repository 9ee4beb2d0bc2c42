package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultGeminiModel = "gemini-3-flash-preview"
	DefaultOpenAIModel = "gpt-4o-mini"
)

type Config struct {
	Model     ModelConfig     `mapstructure:"model"`
	Gemini    ProviderConfig  `mapstructure:"gemini"`
	OpenAI    ProviderConfig  `mapstructure:"openai"`
	Notes     NotesConfig     `mapstructure:"notes"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Outputs   OutputsConfig   `mapstructure:"outputs"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ModelConfig struct {
	Provider        string        `mapstructure:"provider" validate:"oneof=gemini openai"`
	Name            string        `mapstructure:"name"`
	Temperature     float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens" validate:"gt=0"`
	MaxRetries      uint          `mapstructure:"max_retries" validate:"lte=5"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gte=0"`
}

// ProviderConfig holds the settings of one provider. APIKey is only read from the environment.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	// Model is used when model.name isn't set and this provider is selected.
	Model string `mapstructure:"model"`
}

type NotesConfig struct {
	Directory string `mapstructure:"directory" validate:"required"`
	Pattern   string `mapstructure:"pattern"`
}

type TemplatesConfig struct {
	Instructions string `mapstructure:"instructions" validate:"omitempty,file"`
	StudySheet   string `mapstructure:"study_sheet" validate:"omitempty,file"`
}

type OutputsConfig struct {
	Directory string `mapstructure:"directory" validate:"required"`
	PDF       bool   `mapstructure:"pdf"`
}

type LoggingConfig struct {
	Directory string `mapstructure:"directory" validate:"required"`
	File      string `mapstructure:"file" validate:"required"`
	Level     string `mapstructure:"level" validate:"oneof=DEBUG INFO WARN WARNING ERROR CRITICAL"`
}

// ModelName returns model.name, then the selected provider's model, then
// the provider's default model.
func (cfg Config) ModelName() string {
	if cfg.Model.Name != "" {
		return cfg.Model.Name
	}
	if model := cfg.Credentials().Model; model != "" {
		return model
	}
	if cfg.Model.Provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

// Credentials returns the settings of the selected provider.
func (cfg Config) Credentials() ProviderConfig {
	if cfg.Model.Provider == ProviderOpenAI {
		return cfg.OpenAI
	}
	return cfg.Gemini
}

// LogFilePath is the application log inside the logs directory.
func (cfg Config) LogFilePath() string {
	return filepath.Join(cfg.Logging.Directory, cfg.Logging.File)
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"provider":          "model.provider",
	"model":             "model.name",
	"temperature":       "model.temperature",
	"max-output-tokens": "model.max_output_tokens",
	"max-retries":       "model.max_retries",
	"request-timeout":   "model.request_timeout",
	"notes-dir":         "notes.directory",
	"notes-pattern":     "notes.pattern",
	"instructions":      "templates.instructions",
	"output-dir":        "outputs.directory",
	"pdf":               "outputs.pdf",
	"logs-dir":          "logging.directory",
	"log-file":          "logging.file",
	"log-level":         "logging.level",
}

// envKeys maps configuration keys to the environment variables they fall back to.
// The first variable that is set wins.
var envKeys = map[string][]string{
	"model.provider":          {"AI_PROVIDER"},
	"model.name":              {"AI_MODEL"},
	"model.temperature":       {"GEMINI_TEMPERATURE"},
	"model.max_output_tokens": {"GEMINI_MAX_OUTPUT_TOKENS"},
	"model.max_retries":       {"AI_MAX_RETRIES"},
	"model.request_timeout":   {"AI_REQUEST_TIMEOUT"},
	"gemini.api_key":          {"GEMINI_API_KEY", "GEMINI_2.5_API_KEY"},
	"gemini.base_url":         {"GEMINI_BASE_URL"},
	"gemini.model":            {"GEMINI_MODEL"},
	"openai.api_key":          {"OPENAI_API_KEY"},
	"openai.base_url":         {"OPENAI_BASE_URL"},
	"openai.model":            {"OPENAI_MODEL"},
	"notes.directory":         {"NOTES_DIR"},
	"notes.pattern":           {"NOTES_PATTERN"},
	"templates.instructions":  {"INSTRUCTIONS_PATH"},
	"templates.study_sheet":   {"STUDY_SHEET_TEMPLATE"},
	"outputs.directory":       {"OUTPUT_DIR"},
	"outputs.pdf":             {"AI_FLASHCARD_PDF"},
	"logging.directory":       {"LOGS_DIR"},
	"logging.file":            {"APP_LOG_FILE"},
	"logging.level":           {"APP_LOG_LEVEL"},
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
	flags      *pflag.FlagSet
}

// NewConfigLoader returns a loader reading configFile, or config.yml from the
// working directory or $HOME/.config/aiflashcard when it's empty.
// Flags of the given set override the environment and the file.
func NewConfigLoader(configFile string, flags *pflag.FlagSet) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("newValidator() > %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/aiflashcard")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
		flags:      flags,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("model.provider", ProviderGemini)
	v.SetDefault("model.name", "")
	v.SetDefault("gemini.model", "")
	v.SetDefault("openai.model", "")
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.max_output_tokens", 8192)
	v.SetDefault("model.max_retries", 0)
	v.SetDefault("model.request_timeout", time.Duration(0))
	v.SetDefault("notes.directory", "./notes/")
	v.SetDefault("notes.pattern", "*")
	// Empty templates select the embedded ones
	v.SetDefault("templates.instructions", "")
	v.SetDefault("templates.study_sheet", "")
	v.SetDefault("outputs.directory", "./output/")
	v.SetDefault("outputs.pdf", false)
	v.SetDefault("logging.directory", "./logs")
	v.SetDefault("logging.file", "aiflashcard.log")
	v.SetDefault("logging.level", "INFO")

	for key, envs := range envKeys {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, apperr.Configuration("config.Load", fmt.Errorf("failed to bind %s environment variable: %w", strings.Join(envs, ","), err))
		}
	}
	if loader.flags != nil {
		for name, key := range flagKeys {
			flag := loader.flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, apperr.Configuration("config.Load", fmt.Errorf("failed to bind --%s flag: %w", name, err))
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apperr.Configuration("config.Load", fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperr.Configuration("config.Load", fmt.Errorf("invalid configuration format: %w", err))
	}
	cfg.Model.Provider = strings.ToLower(strings.TrimSpace(cfg.Model.Provider))
	cfg.Logging.Level = strings.ToUpper(strings.TrimSpace(cfg.Logging.Level))

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, apperr.Configuration("config.Load", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, apperr.Configuration("config.Load", fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", ")))
	}

	return &cfg, nil
}
