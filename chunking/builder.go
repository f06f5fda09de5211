// Package chunking groups sentences into token-budgeted chunks with a
// trailing-sentence overlap between consecutive chunks.
package chunking

import (
	"fmt"
	"strings"
)

// Builder assembles sentence chunks under a token budget. Consecutive
// chunks share an overlap of trailing sentences whose combined token
// count stays within the stride budget.
type Builder struct {
	chunkTokens  int
	strideTokens int
	count        TokenCounter
}

// NewBuilder creates a chunk builder. chunkTokens is the per-chunk
// token budget; strideTokens caps the overlap carried into the next
// chunk. A stride of zero disables overlap entirely.
func NewBuilder(chunkTokens, strideTokens int, count TokenCounter) *Builder {
	return &Builder{
		chunkTokens:  chunkTokens,
		strideTokens: strideTokens,
		count:        count,
	}
}

// Build groups sentences, in order, into chunks. Sentences are never
// split: a single sentence whose token count exceeds the budget forms
// its own oversized chunk. Every sentence appears in at least one
// chunk, and chunk order follows sentence order.
func (b *Builder) Build(sentences []string) (*Result, error) {
	result := &Result{
		Chunks:         []Chunk{},
		TotalSentences: len(sentences),
	}
	if len(sentences) == 0 {
		return result, nil
	}

	var current []string
	currentTokens := 0

	for _, sentence := range sentences {
		sentenceTokens, err := b.count(sentence)
		if err != nil {
			return nil, fmt.Errorf("failed to count sentence tokens: %w", err)
		}

		if currentTokens+sentenceTokens > b.chunkTokens && len(current) > 0 {
			result.Chunks = append(result.Chunks, b.close(len(result.Chunks)+1, current, currentTokens))

			// Rebuild the current chunk as an overlap suffix: walk the
			// closed chunk backwards, keeping whole sentences while the
			// stride budget holds.
			overlapTokens := 0
			var overlap []string
			for i := len(current) - 1; i >= 0; i-- {
				tokens, err := b.count(current[i])
				if err != nil {
					return nil, fmt.Errorf("failed to count overlap tokens: %w", err)
				}
				if overlapTokens+tokens > b.strideTokens {
					break
				}
				overlap = append([]string{current[i]}, overlap...)
				overlapTokens += tokens
			}
			current = overlap
			currentTokens = overlapTokens
		}

		current = append(current, sentence)
		currentTokens += sentenceTokens
	}

	if len(current) > 0 {
		result.Chunks = append(result.Chunks, b.close(len(result.Chunks)+1, current, currentTokens))
	}

	result.TotalChunks = len(result.Chunks)
	if result.TotalChunks > 0 {
		tokenSum := 0
		for _, c := range result.Chunks {
			tokenSum += c.Tokens
		}
		result.AverageTokens = float64(tokenSum) / float64(result.TotalChunks)
	}
	return result, nil
}

func (b *Builder) close(id int, sentences []string, tokens int) Chunk {
	return Chunk{
		ID:        id,
		Text:      strings.Join(sentences, " "),
		Tokens:    tokens,
		Sentences: len(sentences),
	}
}
