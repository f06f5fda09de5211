// Package textextractor turns input files into plain text for
// summarization.
package textextractor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	apperrors "summarizer-worker/pkg/errors"
)

// TextExtractor extracts plain text from supported file formats:
// .txt, .md, .pdf and .html. Any other extension is rejected before
// the file is touched.
type TextExtractor struct {
	htmlConverter *md.Converter
}

// ExtractionResult carries the extracted text plus basic statistics
type ExtractionResult struct {
	Text        string                 `json:"text"`
	SourceType  string                 `json:"source_type"`
	PageCount   int                    `json:"page_count,omitempty"`
	WordCount   int                    `json:"word_count"`
	CharCount   int                    `json:"char_count"`
	Metadata    map[string]interface{} `json:"metadata"`
	ExtractedAt time.Time              `json:"extracted_at"`
	Duration    time.Duration          `json:"duration"`
}

// NewTextExtractor creates a new text extractor
func NewTextExtractor() *TextExtractor {
	converter := md.NewConverter("", true, &md.Options{
		HorizontalRule:   "---",
		BulletListMarker: "*",
		CodeBlockStyle:   "fenced",
		Fence:            "```",
	})

	return &TextExtractor{
		htmlConverter: converter,
	}
}

// ExtractFromFile dispatches on the file extension and extracts text.
// Unsupported extensions fail with UNSUPPORTED_FORMAT.
func (te *TextExtractor) ExtractFromFile(filePath string) (*ExtractionResult, error) {
	startTime := time.Now()
	ext := strings.ToLower(filepath.Ext(filePath))

	var (
		result *ExtractionResult
		err    error
	)

	switch ext {
	case ".txt", ".md":
		result, err = te.extractFromTextFile(filePath)
	case ".pdf":
		result, err = te.extractFromPDF(filePath)
	case ".html", ".htm":
		result, err = te.extractFromHTML(filePath)
	default:
		return nil, apperrors.NewUnsupportedFormatError(ext)
	}

	if err != nil {
		return nil, err
	}

	if mime, mimeErr := mimetype.DetectFile(filePath); mimeErr == nil {
		result.Metadata["mime_type"] = mime.String()
	}
	result.Metadata["source_file"] = filepath.Base(filePath)

	result.Duration = time.Since(startTime)
	result.ExtractedAt = time.Now()
	result.WordCount = len(strings.Fields(result.Text))
	result.CharCount = len(result.Text)

	return result, nil
}

// ExtractText returns only the extracted text, discarding statistics
func (te *TextExtractor) ExtractText(path string) (string, error) {
	result, err := te.ExtractFromFile(path)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func (te *TextExtractor) extractFromTextFile(path string) (*ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	return &ExtractionResult{
		Text:       string(data),
		SourceType: "text",
		Metadata:   map[string]interface{}{"extractor": "plain"},
	}, nil
}

func (te *TextExtractor) extractFromPDF(path string) (*ExtractionResult, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer file.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, fmt.Errorf("failed to read PDF text: %w", err)
	}

	return &ExtractionResult{
		Text:       buf.String(),
		SourceType: "pdf",
		PageCount:  reader.NumPage(),
		Metadata:   map[string]interface{}{"extractor": "pdf"},
	}, nil
}

func (te *TextExtractor) extractFromHTML(path string) (*ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HTML file: %w", err)
	}

	markdown, err := te.htmlConverter.ConvertString(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to convert HTML: %w", err)
	}

	return &ExtractionResult{
		Text:       markdown,
		SourceType: "html",
		Metadata:   map[string]interface{}{"extractor": "html-to-markdown"},
	}, nil
}
