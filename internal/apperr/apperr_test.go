package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "configuration error",
			err:  Configuration("note.Load", errors.New("missing directory")),
			want: KindConfiguration,
		},
		{
			name: "wrapped format error",
			err:  fmt.Errorf("generate > %w", Format("flashcard.ParseCSV", errors.New("bad header"), "a,b")),
			want: KindFormat,
		},
		{
			name: "api error",
			err:  API("gemini.Complete", errors.New("unauthorized")),
			want: KindAPI,
		},
		{
			name: "io error",
			err:  IO("output.Write", errors.New("disk full")),
			want: KindIO,
		},
		{
			name: "plain error",
			err:  errors.New("plain"),
			want: "",
		},
		{
			name: "nil",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
			if tt.want != "" {
				assert.True(t, Is(tt.err, tt.want))
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	cause := errors.New("bad header")
	err := Format("flashcard.ParseCSV", cause, "raw")

	assert.Equal(t, "[FormatError] flashcard.ParseCSV: bad header", err.Error())
	assert.Equal(t, "raw", err.Detail)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[IOError] disk full", IO("", errors.New("disk full")).Error())
}
