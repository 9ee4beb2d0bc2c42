// Package prompt assembles the model request from the instruction template
// and the loaded notes.
package prompt

import (
	"errors"
	"strings"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
	"github.com/at-ishikawa/aiflashcard/internal/note"
)

// NoteSeparator is placed between two notes in the prompt content.
const NoteSeparator = "\n\n---\n[End of Note]\n---\n\n"

// Prompt is a request to the model: the instructions are sent as the
// system instruction and Content as the user turn.
type Prompt struct {
	Instructions string
	Content      string
}

// String returns the instructions followed by the note content.
func (p Prompt) String() string {
	return strings.TrimRight(p.Instructions, "\n") + "\n\n" + p.Content
}

// Build joins the notes, each introduced by its title, after the instructions.
func Build(instructions string, notes []note.Note) (Prompt, error) {
	if strings.TrimSpace(instructions) == "" {
		return Prompt{}, apperr.Configuration("prompt.Build", errors.New("instructions are empty"))
	}
	if len(notes) == 0 {
		return Prompt{}, apperr.Configuration("prompt.Build", errors.New("no notes to send"))
	}

	bodies := make([]string, 0, len(notes))
	for _, n := range notes {
		if n.Title == "" {
			bodies = append(bodies, n.Content)
			continue
		}
		bodies = append(bodies, "# "+n.Title+"\n\n"+n.Content)
	}
	return Prompt{
		Instructions: instructions,
		Content:      strings.Join(bodies, NoteSeparator),
	}, nil
}
