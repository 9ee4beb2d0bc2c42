package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/aiflashcard/internal/assets"
	"github.com/at-ishikawa/aiflashcard/internal/cli"
	"github.com/at-ishikawa/aiflashcard/internal/config"
	"github.com/at-ishikawa/aiflashcard/internal/inference"
	"github.com/at-ishikawa/aiflashcard/internal/note"
	"github.com/at-ishikawa/aiflashcard/internal/output"
)

func newGenerateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "generate",
		Short: "Generate an Anki import file from a directory of notes",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	addGenerateFlags(command.Flags())
	return command
}

// addGenerateFlags registers the flags of a generation run.
// Unset flags fall back to the environment and then to the config file.
func addGenerateFlags(flags *pflag.FlagSet) {
	flags.String("provider", config.ProviderGemini, "model provider: gemini or openai")
	flags.String("model", "", fmt.Sprintf("model name (default %s, or %s for openai)", config.DefaultGeminiModel, config.DefaultOpenAIModel))
	flags.Float64("temperature", 0.2, "sampling temperature")
	flags.Int("max-output-tokens", 8192, "maximum number of tokens in the response")
	flags.Uint("max-retries", 0, "retries of rate-limited or failed model requests")
	flags.Duration("request-timeout", 0, "timeout of a model request, 0 for none")
	flags.String("notes-dir", "./notes/", "directory of the notes")
	flags.String("notes-pattern", note.DefaultPattern, "glob pattern of note files, relative to the notes directory (\"**/*\" includes subdirectories)")
	flags.String("instructions", "", "instruction template file (default embedded)")
	flags.Bool("dry-run", false, "print the prompt without calling the model")
	addOutputFlags(flags)
}

func addOutputFlags(flags *pflag.FlagSet) {
	flags.String("output-dir", "./output/", "directory of the Anki import file")
	flags.String("logs-dir", "./logs", "directory of the log file and the raw response")
	flags.String("log-file", "aiflashcard.log", "name of the log file")
	flags.String("log-level", "INFO", "log level: DEBUG, INFO, WARNING, ERROR or CRITICAL")
	flags.Bool("pdf", false, "also render a PDF study sheet of the flashcards")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	startedAt := time.Now()

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	closeLog, err := setupFileLogger(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog()
	}()

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("cmd.Flags().GetBool(dry-run) > %w", err)
	}
	instructions, err := assets.LoadInstructions(cfg.Templates.Instructions)
	if err != nil {
		return err
	}
	writer := output.NewWriter(cfg.Logging.Directory, cfg.Outputs.Directory)
	// The tool's own files are never sent back to the model as notes
	loader, err := note.NewLoader(cfg.Notes.Pattern,
		cfg.Outputs.Directory,
		cfg.Logging.Directory,
		writer.ImportPath(),
		writer.TracePath(),
		writer.StudySheetPath(),
		cfg.LogFilePath(),
	)
	if err != nil {
		return err
	}

	var client inference.Client
	if !dryRun {
		inferenceClient, err := newInferenceClient(cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = inferenceClient.Close()
		}()
		client = inferenceClient
	}

	generator := cli.NewGenerator(
		loader,
		client,
		writer,
		cmd.OutOrStdout(),
		cli.GeneratorOptions{
			NotesDirectory:     cfg.Notes.Directory,
			Instructions:       instructions,
			Generation:         generationConfig(cfg),
			DryRun:             dryRun,
			PDF:                cfg.Outputs.PDF,
			StudySheetTemplate: cfg.Templates.StudySheet,
		},
	)
	result, err := generator.Run(cmd.Context())
	if err != nil {
		return err
	}
	slog.Debug("Finished", "notes", len(result.Notes), "elapsed", time.Since(startedAt))
	return nil
}
