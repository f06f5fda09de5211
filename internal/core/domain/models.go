package domain

import (
	"time"
)

// GenerationParams are passed unchanged to the generation backend for
// every chunk of one summarize call. Temperature and TopP only take
// effect when DoSample is set, mirroring seq2seq generation semantics.
type GenerationParams struct {
	MaxLength   int     `json:"max_length" validate:"gte=1,lte=4096"`
	MinLength   int     `json:"min_length" validate:"gte=0,ltefield=MaxLength"`
	NumBeams    int     `json:"num_beams" validate:"gte=1,lte=16"`
	Temperature float64 `json:"temperature" validate:"gte=0,lte=2"`
	TopP        float64 `json:"top_p" validate:"gt=0,lte=1"`
	DoSample    bool    `json:"do_sample"`
}

// DefaultGenerationParams returns the stock generation parameters
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		MaxLength:   150,
		MinLength:   30,
		NumBeams:    4,
		Temperature: 1.0,
		TopP:        0.95,
		DoSample:    false,
	}
}

// WithDoubledMaxLength returns a copy with MaxLength doubled; used for
// the final recombination pass over concatenated chunk summaries.
// All other parameters are passed through unchanged.
func (p GenerationParams) WithDoubledMaxLength() GenerationParams {
	p.MaxLength *= 2
	return p
}

// SummaryRequest is one summarization call
type SummaryRequest struct {
	Text      string           `json:"text" validate:"required"`
	Model     string           `json:"model,omitempty"`
	Params    GenerationParams `json:"params"`
	SkipCache bool             `json:"skip_cache,omitempty"`
}

// SummaryResult is the outcome of one summarization call
type SummaryResult struct {
	Summary     string        `json:"summary"`
	Model       string        `json:"model"`
	Path        string        `json:"path"` // "short" or "chunked"
	InputChars  int           `json:"input_chars"`
	InputTokens int           `json:"input_tokens"`
	ChunkCount  int           `json:"chunk_count"`
	FromCache   bool          `json:"from_cache"`
	Duration    time.Duration `json:"duration"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Summarization paths
const (
	PathShort   = "short"
	PathChunked = "chunked"
)

// ModelInfo describes one configured model
type ModelInfo struct {
	ID      string `json:"id"`
	Active  bool   `json:"active"`
	Device  string `json:"device,omitempty"`
	Backend string `json:"backend,omitempty"`
}
