package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	assert.Equal(t, DefaultEncoding, New("").Encoding())
	assert.Equal(t, "p50k_base", New("p50k_base").Encoding())
}

func TestCount(t *testing.T) {
	tok := New(DefaultEncoding)
	if err := tok.Init(); err != nil {
		// encoding data is fetched on first use; skip when unavailable
		t.Skipf("encoding not available: %v", err)
	}

	t.Run("empty string", func(t *testing.T) {
		n, err := tok.Count("")
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})

	t.Run("counts grow with text", func(t *testing.T) {
		short, err := tok.Count("Cats are mammals.")
		require.NoError(t, err)
		long, err := tok.Count("Cats are mammals. Dogs are mammals too. Birds are not mammals.")
		require.NoError(t, err)
		assert.Greater(t, short, 0)
		assert.Greater(t, long, short)
	})

	t.Run("deterministic", func(t *testing.T) {
		a, err := tok.Count("The same text twice.")
		require.NoError(t, err)
		b, err := tok.Count("The same text twice.")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestCountUnknownEncoding(t *testing.T) {
	tok := New("no_such_encoding")
	_, err := tok.Count("text")
	assert.Error(t, err)
}
