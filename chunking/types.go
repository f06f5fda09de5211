package chunking

// TokenCounter reports the token count of a string under the target
// model's vocabulary. Provided by the tokenizer capability.
type TokenCounter func(text string) (int, error)

// Chunk is a token-budgeted grouping of consecutive sentences fed as
// one unit to the generation capability.
type Chunk struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Tokens    int    `json:"tokens"`
	Sentences int    `json:"sentences"`
}

// Result holds the chunking outcome
type Result struct {
	Chunks         []Chunk `json:"chunks"`
	TotalChunks    int     `json:"total_chunks"`
	AverageTokens  float64 `json:"average_tokens"`
	TotalSentences int     `json:"total_sentences"`
}

// Texts returns the chunk texts in order
func (r *Result) Texts() []string {
	texts := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		texts[i] = c.Text
	}
	return texts
}
