// Package note reads study notes from a directory.
package note

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
)

// DefaultPattern matches the files directly inside the notes directory.
// "**/*" reads subdirectories too.
const DefaultPattern = "*"

// Note is the text of one note file. Path is relative to the notes directory.
type Note struct {
	Path    string
	Title   string
	Content string
}

type Loader struct {
	pattern  string
	excluded []string
}

// NewLoader returns a loader matching note paths against a doublestar pattern.
// Excluded files and directories, such as the tool's own outputs and logs,
// are never read.
func NewLoader(pattern string, excludedPaths ...string) (*Loader, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, apperr.Configuration("note.NewLoader", fmt.Errorf("invalid notes pattern %q", pattern))
	}

	excluded := make([]string, 0, len(excludedPaths))
	for _, excludedPath := range excludedPaths {
		if excludedPath == "" {
			continue
		}
		abs, err := filepath.Abs(excludedPath)
		if err != nil {
			return nil, apperr.Configuration("note.NewLoader", fmt.Errorf("filepath.Abs(%s) > %w", excludedPath, err))
		}
		excluded = append(excluded, abs)
	}
	return &Loader{pattern: pattern, excluded: excluded}, nil
}

// descends reports whether the pattern can match files below the top level.
func (loader *Loader) descends() bool {
	return strings.Contains(loader.pattern, "/") || strings.Contains(loader.pattern, "**")
}

func (loader *Loader) isExcluded(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, excluded := range loader.excluded {
		if abs == excluded {
			return true
		}
	}
	return false
}

// All lazily yields the notes of directory in lexical path order.
// Hidden files and directories, files outside the pattern, empty files and
// files that aren't UTF-8 text are skipped.
func (loader *Loader) All(directory string) iter.Seq2[Note, error] {
	return func(yield func(Note, error) bool) {
		info, err := os.Stat(directory)
		if err != nil {
			yield(Note{}, apperr.Configuration("note.Load", fmt.Errorf("notes directory not found at %s: %w", directory, err)))
			return
		}
		if !info.IsDir() {
			yield(Note{}, apperr.Configuration("note.Load", fmt.Errorf("notes path %s is not a directory", directory)))
			return
		}

		stopped := false
		walkErr := fs.WalkDir(os.DirFS(directory), ".", func(name string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if name == "." {
				return nil
			}
			if strings.HasPrefix(entry.Name(), ".") {
				slog.Default().Debug("Skipping hidden file", slog.String("path", name))
				if entry.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if entry.IsDir() {
				if !loader.descends() {
					return fs.SkipDir
				}
				if loader.isExcluded(filepath.Join(directory, filepath.FromSlash(name))) {
					slog.Default().Debug("Skipping excluded directory", slog.String("path", name))
					return fs.SkipDir
				}
				return nil
			}
			if !entry.Type().IsRegular() {
				return nil
			}
			if loader.isExcluded(filepath.Join(directory, filepath.FromSlash(name))) {
				slog.Default().Debug("Skipping excluded file", slog.String("path", name))
				return nil
			}
			matched, err := doublestar.Match(loader.pattern, name)
			if err != nil {
				return fmt.Errorf("doublestar.Match(%s, %s) > %w", loader.pattern, name, err)
			}
			if !matched {
				slog.Default().Debug("Skipping file outside the notes pattern", slog.String("path", name))
				return nil
			}

			note, ok, err := readNote(directory, name)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			slog.Default().Debug("Loaded note", slog.String("path", filepath.Join(directory, filepath.FromSlash(name))))
			if !yield(note, nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})
		if walkErr != nil && !stopped {
			yield(Note{}, apperr.IO("note.Load", walkErr))
		}
	}
}

// Load reads every note of directory.
// It fails with a ConfigurationError when the directory has no usable note.
func (loader *Loader) Load(directory string) ([]Note, error) {
	var notes []Note
	for note, err := range loader.All(directory) {
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if len(notes) == 0 {
		return nil, apperr.Configuration("note.Load", fmt.Errorf("no usable notes found in %s", directory))
	}
	slog.Default().Info("Finished loading notes",
		slog.Int("count", len(notes)),
		slog.String("directory", directory),
	)
	return notes, nil
}

func readNote(directory, name string) (Note, bool, error) {
	filePath := filepath.Join(directory, filepath.FromSlash(name))
	contents, err := os.ReadFile(filePath)
	if err != nil {
		return Note{}, false, fmt.Errorf("os.ReadFile(%s) > %w", filePath, err)
	}
	contents = bytes.TrimPrefix(contents, []byte("\ufeff"))
	if !utf8.Valid(contents) || bytes.IndexByte(contents, 0) >= 0 {
		slog.Default().Warn("Skipping file that isn't text", slog.String("path", filePath))
		return Note{}, false, nil
	}

	note := Note{
		Path:  name,
		Title: strings.TrimSuffix(path.Base(name), path.Ext(name)),
	}
	text := string(contents)

	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		title, body, err := extractHTMLText(text)
		if err != nil {
			return Note{}, false, fmt.Errorf("extractHTMLText(%s) > %w", filePath, err)
		}
		if title != "" {
			note.Title = title
		}
		text = body
	case ".md", ".markdown":
		matter, body, err := splitFrontMatter(text)
		if err != nil {
			if !errors.Is(err, errNoFrontMatter) {
				slog.Default().Warn("Ignoring unreadable front matter",
					slog.String("path", filePath),
					slog.Any("error", err),
				)
			}
		} else {
			if matter.Title != "" {
				note.Title = matter.Title
			}
			text = body
		}
	}

	note.Content = strings.TrimSpace(text)
	if note.Content == "" {
		slog.Default().Debug("Skipping empty note", slog.String("path", filePath))
		return Note{}, false, nil
	}
	return note, true, nil
}
