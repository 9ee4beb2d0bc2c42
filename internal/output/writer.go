// Package output persists the raw model response and the Anki import file.
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
)

const (
	DefaultTraceFile  = "response.csv"
	DefaultImportFile = "flashcards.txt"
	StudySheetFile    = "study-sheet.md"

	tempFilePrefix = ".aiflashcard-tmp-"
)

// Writer writes the traceability file and the import file.
type Writer struct {
	TraceDirectory  string
	TraceFile       string
	ImportDirectory string
	ImportFile      string
}

func NewWriter(traceDirectory, importDirectory string) *Writer {
	return &Writer{
		TraceDirectory:  traceDirectory,
		TraceFile:       DefaultTraceFile,
		ImportDirectory: importDirectory,
		ImportFile:      DefaultImportFile,
	}
}

func (writer Writer) TracePath() string {
	return filepath.Join(writer.TraceDirectory, writer.TraceFile)
}

func (writer Writer) ImportPath() string {
	return filepath.Join(writer.ImportDirectory, writer.ImportFile)
}

func (writer Writer) StudySheetPath() string {
	return filepath.Join(writer.ImportDirectory, StudySheetFile)
}

// Archive writes the raw response, unchanged, to the traceability file.
func (writer Writer) Archive(raw string) error {
	path := writer.TracePath()
	if err := writeFileAtomic(path, []byte(raw), 0644); err != nil {
		return apperr.IO("output.Archive", err)
	}
	slog.Default().Info("Logged csv response", slog.String("path", path))
	return nil
}

// WriteDeck writes the encoded deck to the import file.
// The previous import file is replaced only once the new one is complete.
func (writer Writer) WriteDeck(tsv string) error {
	path := writer.ImportPath()
	if err := writeFileAtomic(path, []byte(tsv), 0644); err != nil {
		return apperr.IO("output.WriteDeck", err)
	}
	slog.Default().Info("Written flashcards", slog.String("path", path))
	return nil
}

// Write persists the raw response, then the deck.
func (writer Writer) Write(raw, tsv string) error {
	if err := writer.Archive(raw); err != nil {
		return err
	}
	return writer.WriteDeck(tsv)
}

// WriteStudySheet writes the markdown study sheet beside the import file and
// returns its path.
func (writer Writer) WriteStudySheet(markdown []byte) (string, error) {
	path := writer.StudySheetPath()
	if err := writeFileAtomic(path, markdown, 0644); err != nil {
		return "", apperr.IO("output.WriteStudySheet", err)
	}
	slog.Default().Info("Written study sheet", slog.String("path", path))
	return path, nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over filename, creating the directory first.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp(%s) > %w", dir, err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("tmpFile.Write > %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("tmpFile.Sync > %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("tmpFile.Close > %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("os.Chmod(%s) > %w", tmpFile.Name(), err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("os.Rename(%s) > %w", filename, err)
	}
	return nil
}
