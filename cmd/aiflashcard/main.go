package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/aiflashcard/internal/logging"
)

var (
	configFile string
	debugMode  bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "aiflashcard",
		Short:         "Generate Anki flashcards from study notes with an LLM",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(debugMode)
		},
		// Without a subcommand, generate
		RunE: runGenerate,
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")
	addGenerateFlags(rootCommand.Flags())

	rootCommand.AddCommand(
		newGenerateCommand(),
		newConvertCommand(),
	)
	return rootCommand
}

// setupLogger installs a console logger used until the configuration is loaded.
func setupLogger(debugMode bool) error {
	_, err := logging.Setup(logging.Options{Debug: debugMode})
	return err
}
