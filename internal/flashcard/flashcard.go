package flashcard

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
)

// Header is the only accepted header row of a model response.
var Header = []string{"question", "answer"}

// Flashcard is a question/answer pair. Both fields are non-empty.
type Flashcard struct {
	Question string
	Answer   string
}

// Deck is the ordered set of flashcards produced in one run.
type Deck []Flashcard

// StripFence removes a Markdown code fence wrapping the whole response,
// e.g. "```csv\n...\n```". Text that isn't fenced is returned as is.
func StripFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return raw
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return raw
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}

// ParseCSV validates a model response and converts it into a Deck.
// The first structural violation fails the whole response with a FormatError
// carrying the raw text; no partial deck is returned.
func ParseCSV(raw string) (Deck, error) {
	body := strings.TrimPrefix(StripFence(raw), "\ufeff")

	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, formatError(errors.New("response is empty"), raw)
	}
	if err != nil {
		return nil, formatError(fmt.Errorf("reader.Read(header) > %w", err), raw)
	}
	if !isHeader(header) {
		return nil, formatError(fmt.Errorf("header must be %q, got %q", strings.Join(Header, ","), strings.Join(header, ",")), raw)
	}

	var deck Deck
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, formatError(fmt.Errorf("reader.Read() > %w", err), raw)
		}

		line, _ := reader.FieldPos(0)
		if len(record) != len(Header) {
			return nil, formatError(fmt.Errorf("line %d: want %d fields, got %d", line, len(Header), len(record)), raw)
		}

		// Fields are kept as sent; only blank ones are rejected
		card := Flashcard{Question: record[0], Answer: record[1]}
		if strings.TrimSpace(card.Question) == "" || strings.TrimSpace(card.Answer) == "" {
			return nil, formatError(fmt.Errorf("line %d: question and answer must not be empty", line), raw)
		}
		deck = append(deck, card)
	}

	if len(deck) == 0 {
		return nil, formatError(errors.New("response has no flashcards"), raw)
	}
	return deck, nil
}

func isHeader(record []string) bool {
	if len(record) != len(Header) {
		return false
	}
	for i, name := range Header {
		if strings.TrimSpace(record[i]) != name {
			return false
		}
	}
	return true
}

func formatError(err error, raw string) error {
	return apperr.Format("flashcard.ParseCSV", err, raw)
}
