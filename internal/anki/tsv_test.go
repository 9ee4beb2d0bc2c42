package anki

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/at-ishikawa/aiflashcard/internal/flashcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  string
	}{
		{name: "plain", field: "What is ATP?", want: "What is ATP?"},
		{name: "tab", field: "light\tenergy", want: "light energy"},
		{name: "newline", field: "first line\nsecond line", want: "first line second line"},
		{name: "crlf run", field: "a\r\n\r\nb", want: "a b"},
		{name: "mixed run", field: "a\t\n\tb", want: "a b"},
		{name: "leading and trailing breaks", field: "\n\tanswer\n", want: " answer "},
		{name: "surrounding spaces kept", field: "  padded  ", want: "  padded  "},
		{name: "html kept as is", field: "<b>bold</b>, \"quoted\"", want: "<b>bold</b>, \"quoted\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.field))
		})
	}
}

func TestLines(t *testing.T) {
	deck := flashcard.Deck{
		{Question: "What is photosynthesis?", Answer: "It is the process..."},
		{Question: "Multi\nline", Answer: "tab\tinside"},
		{Question: "Q3", Answer: "A3"},
	}

	got := Lines(deck)

	require.Len(t, got, len(deck))
	assert.Equal(t, []string{
		"What is photosynthesis?\tIt is the process...",
		"Multi line\ttab inside",
		"Q3\tA3",
	}, got)
	for _, line := range got {
		assert.Equal(t, 1, strings.Count(line, "\t"))
		assert.NotContains(t, line, "\n")
		assert.NotContains(t, line, "\r")
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		deck flashcard.Deck
		want string
	}{
		{
			name: "two cards",
			deck: flashcard.Deck{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}},
			want: "Q1\tA1\nQ2\tA2\n",
		},
		{
			name: "empty deck",
			deck: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, tt.deck))
			assert.Equal(t, tt.want, buf.String())
			assert.Equal(t, tt.want, Format(tt.deck))
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestEncode_WriteError(t *testing.T) {
	err := Encode(failingWriter{}, flashcard.Deck{{Question: "Q", Answer: "A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"What is photosynthesis?", "It is the process plants use to make food."},
		{"Which gas is released?", "Oxygen, as a by-product"},
		{`What does "C3" mean?`, "A carbon fixation pathway"},
		{" Padded question ", "  padded answer  "},
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	require.NoError(t, writer.Write(flashcard.Header))
	for _, pair := range pairs {
		require.NoError(t, writer.Write(pair[:]))
	}
	writer.Flush()
	require.NoError(t, writer.Error())

	deck, err := flashcard.ParseCSV(buf.String())
	require.NoError(t, err)

	lines := Lines(deck)
	require.Len(t, lines, len(pairs))
	for i, pair := range pairs {
		assert.Equal(t, pair[0]+"\t"+pair[1], lines[i])
	}
}
