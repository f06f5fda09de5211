package splitter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	s := NewSplitter()

	t.Run("empty input", func(t *testing.T) {
		out, err := s.Split("")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("whitespace only", func(t *testing.T) {
		out, err := s.Split("   ")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("single sentence", func(t *testing.T) {
		out, err := s.Split("Cats are mammals.")
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Cats are mammals.", out[0])
	})

	t.Run("multiple sentences in order", func(t *testing.T) {
		out, err := s.Split("Cats are mammals. Dogs are mammals too. Birds are not.")
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "Cats are mammals.", out[0])
		assert.Equal(t, "Dogs are mammals too.", out[1])
		assert.Equal(t, "Birds are not.", out[2])
	})

	t.Run("abbreviations do not split", func(t *testing.T) {
		out, err := s.Split("Dr. Smith arrived early. The meeting started.")
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("sentences are trimmed", func(t *testing.T) {
		out, err := s.Split("First one.   Second one.")
		require.NoError(t, err)
		for _, sentence := range out {
			assert.Equal(t, sentence, string([]byte(sentence)))
			assert.NotEqual(t, " ", sentence[:1])
		}
	})
}

func TestInitIdempotent(t *testing.T) {
	s := NewSplitter()
	require.NoError(t, s.Init())
	require.NoError(t, s.Init())

	// concurrent use after init
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.Split("One sentence. Another sentence.")
			assert.NoError(t, err)
			assert.Len(t, out, 2)
		}()
	}
	wg.Wait()
}
