package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/at-ishikawa/aiflashcard/internal/anki"
	"github.com/at-ishikawa/aiflashcard/internal/apperr"
	"github.com/at-ishikawa/aiflashcard/internal/assets"
	"github.com/at-ishikawa/aiflashcard/internal/flashcard"
	"github.com/at-ishikawa/aiflashcard/internal/inference"
	"github.com/at-ishikawa/aiflashcard/internal/note"
	"github.com/at-ishikawa/aiflashcard/internal/output"
	"github.com/at-ishikawa/aiflashcard/internal/pdf"
	"github.com/at-ishikawa/aiflashcard/internal/prompt"
)

type NoteLoader interface {
	Load(directory string) ([]note.Note, error)
}

type GeneratorOptions struct {
	NotesDirectory string
	// Instructions is the text of the instruction template.
	Instructions string
	Generation   inference.GenerationConfig

	// DryRun prints the prompt and stops before calling the model.
	DryRun bool
	// PDF renders a study sheet of the deck after the import file is written.
	PDF                bool
	StudySheetTemplate string
}

// Result summarizes a finished run.
type Result struct {
	RunID          string
	Notes          []string
	Cards          int
	TracePath      string
	ImportPath     string
	StudySheetPath string
}

// Generator turns a directory of notes into an Anki import file.
// A Generator runs once; create a new one for every run.
type Generator struct {
	loader  NoteLoader
	client  inference.Client
	writer  *output.Writer
	stdout  io.Writer
	options GeneratorOptions
	runID   string
	logger  *slog.Logger

	stage       Stage
	failedStage Stage
}

// NewGenerator returns a generator. client may be nil for dry runs and conversions.
func NewGenerator(
	loader NoteLoader,
	client inference.Client,
	writer *output.Writer,
	stdout io.Writer,
	options GeneratorOptions,
) *Generator {
	runID := uuid.NewString()
	return &Generator{
		loader:  loader,
		client:  client,
		writer:  writer,
		stdout:  stdout,
		options: options,
		runID:   runID,
		logger:  slog.Default().With("run_id", runID),
		stage:   StageInit,
	}
}

func (generator *Generator) Stage() Stage {
	return generator.stage
}

// FailedStage is the stage a failed run stopped at.
func (generator *Generator) FailedStage() Stage {
	return generator.failedStage
}

// Run loads the notes, asks the model for flashcards and writes the deck.
func (generator *Generator) Run(ctx context.Context) (Result, error) {
	result := Result{RunID: generator.runID}

	generator.transition(StageLoadingNotes)
	notes, err := generator.loader.Load(generator.options.NotesDirectory)
	if err != nil {
		return result, generator.fail(err)
	}
	for _, n := range notes {
		result.Notes = append(result.Notes, n.Path)
	}

	generator.transition(StagePrompting)
	p, err := prompt.Build(generator.options.Instructions, notes)
	if err != nil {
		return result, generator.fail(err)
	}
	if generator.options.DryRun {
		if _, err := fmt.Fprintln(generator.stdout, p.String()); err != nil {
			return result, generator.fail(apperr.IO("cli.Generator.Run", fmt.Errorf("failed to print the prompt: %w", err)))
		}
		generator.transition(StageDone)
		return result, nil
	}
	if generator.client == nil {
		return result, generator.fail(apperr.Configuration("cli.Generator.Run", errors.New("no model client is configured")))
	}

	generator.transition(StageAwaitingModel)
	generator.logger.Info("Requesting flashcards", "model", generator.options.Generation.Model, "notes", len(notes))
	raw, err := generator.client.Complete(ctx, p, generator.options.Generation)
	if err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.API("cli.Generator.Run", err)
		}
		return result, generator.fail(err)
	}

	generator.transition(StageValidating)
	return generator.finish(raw, notes, result, true)
}

// Convert validates a previously archived response and writes the deck from it
// without calling the model.
func (generator *Generator) Convert(responsePath string) (Result, error) {
	result := Result{RunID: generator.runID, TracePath: responsePath}

	generator.transition(StageValidating)
	content, err := os.ReadFile(responsePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, generator.fail(apperr.Configuration("cli.Generator.Convert", fmt.Errorf("response file not found at %s", responsePath)))
		}
		return result, generator.fail(apperr.IO("cli.Generator.Convert", fmt.Errorf("os.ReadFile(%s) > %w", responsePath, err)))
	}
	return generator.finish(string(content), nil, result, false)
}

// finish validates, converts and writes a response. The raw response is
// archived when archive is set, even if it turns out to be invalid.
func (generator *Generator) finish(raw string, notes []note.Note, result Result, archive bool) (Result, error) {
	deck, err := flashcard.ParseCSV(raw)
	if err != nil {
		if apperr.Is(err, apperr.KindFormat) {
			generator.logger.Error("The model response is not valid flashcard CSV", "response", raw)
		}
		if archive {
			if archiveErr := generator.writer.Archive(raw); archiveErr != nil {
				generator.logger.Warn("Failed to keep the invalid response", "error", archiveErr)
			} else {
				result.TracePath = generator.writer.TracePath()
			}
		}
		return result, generator.fail(err)
	}

	generator.transition(StageConverting)
	tsv := anki.Format(deck)

	generator.transition(StageWriting)
	if archive {
		err = generator.writer.Write(raw, tsv)
		result.TracePath = generator.writer.TracePath()
	} else {
		err = generator.writer.WriteDeck(tsv)
	}
	if err != nil {
		return result, generator.fail(err)
	}
	result.Cards = len(deck)
	result.ImportPath = generator.writer.ImportPath()

	// The deck is already written, so a study sheet failure doesn't fail the run
	if generator.options.PDF {
		studySheetPath, err := generator.writeStudySheet(deck, notes)
		if err != nil {
			generator.logger.Warn("Failed to render the study sheet", "kind", apperr.KindOf(err), "error", err)
		} else {
			result.StudySheetPath = studySheetPath
		}
	}

	generator.transition(StageDone)
	generator.logger.Info("Generated flashcards", "cards", result.Cards, "path", result.ImportPath)
	return result, nil
}

func (generator *Generator) writeStudySheet(deck flashcard.Deck, notes []note.Note) (string, error) {
	data := assets.StudySheetTemplate{
		Title: "Flashcards",
		Cards: make([]assets.StudySheetCard, 0, len(deck)),
	}
	for _, n := range notes {
		data.Sources = append(data.Sources, n.Path)
	}
	if len(notes) == 1 && notes[0].Title != "" {
		data.Title = notes[0].Title
	}
	for _, card := range deck {
		data.Cards = append(data.Cards, assets.StudySheetCard{
			Question: strings.TrimSpace(card.Question),
			Answer:   strings.TrimSpace(card.Answer),
		})
	}

	var markdown bytes.Buffer
	if err := assets.WriteStudySheet(&markdown, generator.options.StudySheetTemplate, data); err != nil {
		return "", apperr.IO("cli.Generator.writeStudySheet", fmt.Errorf("assets.WriteStudySheet() > %w", err))
	}
	markdownPath, err := generator.writer.WriteStudySheet(markdown.Bytes())
	if err != nil {
		return "", err
	}
	pdfPath, err := pdf.ConvertMarkdownToPDF(markdownPath)
	if err != nil {
		return "", fmt.Errorf("pdf.ConvertMarkdownToPDF(%s) > %w", filepath.Base(markdownPath), err)
	}
	return pdfPath, nil
}

func (generator *Generator) transition(next Stage) {
	generator.logger.Debug("Stage transition", "from", generator.stage, "to", next)
	generator.stage = next
}

func (generator *Generator) fail(err error) error {
	generator.failedStage = generator.stage
	generator.transition(StageFailed)
	generator.logger.Error("Flashcard generation failed",
		"stage", generator.failedStage,
		"kind", apperr.KindOf(err),
		"error", err,
	)
	return err
}
