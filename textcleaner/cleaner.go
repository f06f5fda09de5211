// Package textcleaner normalizes raw input text before sentence
// splitting and tokenization.
package textcleaner

import (
	"strings"
)

// Clean strips control characters below code point 32 (newline and tab
// survive the strip but fall to the whitespace collapse), collapses
// every whitespace run into a single space and trims the result.
// Clean is total and idempotent; whitespace-only input yields "".
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 32 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
