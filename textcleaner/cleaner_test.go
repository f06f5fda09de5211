package textcleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n  \r\n ", ""},
		{"already clean", "Cats are mammals.", "Cats are mammals."},
		{"collapses runs", "a  b\t\tc\n\nd", "a b c d"},
		{"trims edges", "  hello world  ", "hello world"},
		{"strips control characters", "a\x00b\x07c\x1fd", "abcd"},
		{"keeps newline and tab as separators", "line1\nline2\tline3", "line1 line2 line3"},
		{"mixed control and whitespace", "  a\x01 \n b\x02  ", "a b"},
		{"unicode preserved", "naïve — résumé", "naïve — résumé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"", "   ", "plain text", "a\tb\nc", "x\x00y  z ", "Ünïcödé\r\ntext\x1f!",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "Clean must be idempotent for %q", in)
	}
}
