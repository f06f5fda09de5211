// Package splitter segments cleaned text into sentences using a
// punkt-style boundary detector.
package splitter

import (
	"fmt"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Splitter wraps the sentence tokenizer behind a one-time, thread-safe
// initialization. Loading the punkt training data happens once, either
// via an explicit Init call at startup or lazily on first Split.
type Splitter struct {
	once      sync.Once
	tokenizer *sentences.DefaultSentenceTokenizer
	initErr   error
}

// NewSplitter creates an uninitialized splitter
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Init loads the sentence boundary model. Safe to call concurrently
// and more than once; only the first call does work.
func (s *Splitter) Init() error {
	s.once.Do(func() {
		tokenizer, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			s.initErr = fmt.Errorf("failed to load sentence tokenizer: %w", err)
			return
		}
		s.tokenizer = tokenizer
	})
	return s.initErr
}

// Split returns the ordered, trimmed, non-empty sentences of text.
// Empty input yields an empty slice.
func (s *Splitter) Split(text string) ([]string, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	raw := s.tokenizer.Tokenize(text)
	result := make([]string, 0, len(raw))
	for _, sentence := range raw {
		if trimmed := strings.TrimSpace(sentence.Text); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result, nil
}
