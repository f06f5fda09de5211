// Package tokenizer counts tokens using tiktoken BPE encodings.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used when no encoding is configured
const DefaultEncoding = "cl100k_base"

// Tokenizer counts tokens under a fixed BPE encoding. The encoding is
// loaded once, lazily, and reused for every count.
type Tokenizer struct {
	encoding string
	once     sync.Once
	enc      *tiktoken.Tiktoken
	initErr  error
}

// New creates a tokenizer for the named encoding
func New(encoding string) *Tokenizer {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Tokenizer{encoding: encoding}
}

// Init loads the encoding. Idempotent and safe for concurrent use.
func (t *Tokenizer) Init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("failed to load encoding %q: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

// Count returns the number of tokens text occupies under the encoding
func (t *Tokenizer) Count(text string) (int, error) {
	if err := t.Init(); err != nil {
		return 0, err
	}
	return len(t.enc.Encode(text, nil, nil)), nil
}

// Encoding returns the encoding name
func (t *Tokenizer) Encoding() string {
	return t.encoding
}
