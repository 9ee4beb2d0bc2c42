// Package anki converts a flashcard deck into Anki's headerless
// tab-separated import format.
package anki

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/at-ishikawa/aiflashcard/internal/flashcard"
)

const separator = "\t"

var delimiterPattern = regexp.MustCompile(`[\t\r\n]+`)

// Sanitize collapses every run of tabs and line breaks into a single space,
// so a field can never split a line or a column. Other characters, spaces
// included, are kept.
func Sanitize(field string) string {
	return delimiterPattern.ReplaceAllString(field, " ")
}

// Lines returns one "question<TAB>answer" line per card, in deck order.
func Lines(deck flashcard.Deck) []string {
	lines := make([]string, 0, len(deck))
	for _, card := range deck {
		lines = append(lines, Sanitize(card.Question)+separator+Sanitize(card.Answer))
	}
	return lines
}

// Encode writes the deck to w, one newline-terminated line per card.
func Encode(w io.Writer, deck flashcard.Deck) error {
	for i, line := range Lines(deck) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("write line %d > %w", i+1, err)
		}
	}
	return nil
}

// Format returns the encoded deck as a string.
func Format(deck flashcard.Deck) string {
	var b strings.Builder
	_ = Encode(&b, deck)
	return b.String()
}
