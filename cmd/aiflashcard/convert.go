package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/aiflashcard/internal/cli"
	"github.com/at-ishikawa/aiflashcard/internal/output"
)

func newConvertCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "convert <response.csv>",
		Short: "Convert a saved model response into an Anki import file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			generator := cli.NewGenerator(
				nil,
				nil,
				output.NewWriter(cfg.Logging.Directory, cfg.Outputs.Directory),
				cmd.OutOrStdout(),
				cli.GeneratorOptions{
					PDF:                cfg.Outputs.PDF,
					StudySheetTemplate: cfg.Templates.StudySheet,
				},
			)
			result, err := generator.Convert(args[0])
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d flashcards written to %s\n", result.Cards, result.ImportPath); err != nil {
				return fmt.Errorf("fmt.Fprintf() > %w", err)
			}
			return nil
		},
	}
	addOutputFlags(command.Flags())
	return command
}
