package textextractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "summarizer-worker/pkg/errors"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractFromTextFile(t *testing.T) {
	te := NewTextExtractor()
	path := writeTempFile(t, "input.txt", "Cats are mammals. Dogs are mammals too.")

	result, err := te.ExtractFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Cats are mammals. Dogs are mammals too.", result.Text)
	assert.Equal(t, "text", result.SourceType)
	assert.Equal(t, 7, result.WordCount)
	assert.Equal(t, len(result.Text), result.CharCount)
	assert.Equal(t, "input.txt", result.Metadata["source_file"])
}

func TestExtractFromMarkdownFile(t *testing.T) {
	te := NewTextExtractor()
	path := writeTempFile(t, "notes.md", "# Title\n\nSome body text.")

	result, err := te.ExtractFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "text", result.SourceType)
	assert.Contains(t, result.Text, "Some body text.")
}

func TestExtractFromHTMLFile(t *testing.T) {
	te := NewTextExtractor()
	path := writeTempFile(t, "page.html", "<html><body><h1>Heading</h1><p>Paragraph with <b>bold</b> text.</p></body></html>")

	result, err := te.ExtractFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "html", result.SourceType)
	assert.Contains(t, result.Text, "Heading")
	assert.Contains(t, result.Text, "Paragraph with")
	assert.NotContains(t, result.Text, "<p>")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	te := NewTextExtractor()
	path := writeTempFile(t, "image.png", "not really an image")

	_, err := te.ExtractFromFile(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UNSUPPORTED_FORMAT"))
}

func TestExtractMissingFile(t *testing.T) {
	te := NewTextExtractor()
	_, err := te.ExtractFromFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
