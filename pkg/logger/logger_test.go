package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		logger, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("console format", func(t *testing.T) {
		logger, err := New(&Config{Level: "debug", Format: "console", Output: "stderr"})
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := New(&Config{Level: "loud", Format: "json", Output: "stdout"})
		assert.Error(t, err)
	})
}

func TestContextValues(t *testing.T) {
	ctx := WithCorrelationID(context.Background())
	ctx = WithRequestID(ctx, "req-42")
	ctx = WithJobID(ctx, "job-7")

	assert.NotEmpty(t, ctx.Value(CorrelationIDKey))
	assert.Equal(t, "req-42", ctx.Value(RequestIDKey))
	assert.Equal(t, "job-7", ctx.Value(JobIDKey))

	logger, err := New(nil)
	require.NoError(t, err)
	assert.NotNil(t, logger.FromContext(ctx))
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Init(DefaultConfig()))
	assert.NotNil(t, Get())
}
