package tui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapWords(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"breaks at spaces", "Generations data written to /tmp/x.csv", 12, "Generations\ndata\nwritten to\n/tmp/x.csv"},
		{"splits long words", "abcdefgh", 3, "abc\ndef\ngh"},
		{"no width", "a b c", 0, "a b c"},
		{"short text", "short", 40, "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, wrapWords(tt.text, tt.width))
		})
	}
}
