package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"summarizer-worker/config"
	"summarizer-worker/internal/core/domain"
	"summarizer-worker/internal/core/ports"
	apperrors "summarizer-worker/pkg/errors"
	"summarizer-worker/pkg/logger"
	"summarizer-worker/pkg/metrics"
)

// genCall records one generation invocation
type genCall struct {
	Text   string
	Params domain.GenerationParams
}

// stubGenerator returns "P1", "P2", ... per call unless fn overrides it
type stubGenerator struct {
	id    string
	calls []genCall
	fn    func(call int, text string) (string, error)
}

func (g *stubGenerator) Generate(_ context.Context, text string, params domain.GenerationParams) (string, error) {
	g.calls = append(g.calls, genCall{Text: text, Params: params})
	if g.fn != nil {
		return g.fn(len(g.calls), text)
	}
	return fmt.Sprintf("P%d", len(g.calls)), nil
}

func (g *stubGenerator) ModelID() string { return g.id }

type stubProvider struct {
	gen       *stubGenerator
	available []string
}

func (p *stubProvider) Current() ports.Generator { return p.gen }

func (p *stubProvider) Select(modelID string) error {
	for _, m := range p.available {
		if m == modelID {
			return nil
		}
	}
	return apperrors.NewModelNotAvailableError(modelID, p.available)
}

func (p *stubProvider) Generator(modelID string) (ports.Generator, error) {
	if modelID != "" && modelID != p.gen.id {
		return nil, apperrors.NewModelNotAvailableError(modelID, p.available)
	}
	return p.gen, nil
}

func (p *stubProvider) Models() []domain.ModelInfo {
	return []domain.ModelInfo{{ID: p.gen.id, Active: true}}
}

// stubSplitter splits on terminal periods, keeping them attached
type stubSplitter struct{}

func (stubSplitter) Split(text string) ([]string, error) {
	var out []string
	for _, part := range strings.SplitAfter(text, ".") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out, nil
}

// wordCounter stands in for a real tokenizer
type wordCounter struct{}

func (wordCounter) Count(text string) (int, error) {
	return len(strings.Fields(text)), nil
}

type stubExtractor struct {
	text string
	err  error
}

func (e *stubExtractor) ExtractText(string) (string, error) {
	return e.text, e.err
}

type stubCache struct {
	entries map[string]string
	sets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string]string{}}
}

func (c *stubCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *stubCache) Set(_ context.Context, key, summary string, _ time.Duration) error {
	c.entries[key] = summary
	c.sets++
	return nil
}

func (c *stubCache) Close() error { return nil }

func newTestService(t *testing.T, summarizerCfg config.SummarizerConfig, gen *stubGenerator, cache ports.SummaryCache) *SummarizerService {
	t.Helper()
	cacheCfg := config.CacheConfig{Enabled: cache != nil, TTL: time.Minute}
	provider := &stubProvider{gen: gen, available: []string{gen.id}}
	return NewSummarizerService(
		summarizerCfg, cacheCfg, provider,
		stubSplitter{}, wordCounter{}, &stubExtractor{},
		cache, logger.Get(), metrics.Get(),
	)
}

func defaultCfg() config.SummarizerConfig {
	return config.SummarizerConfig{
		MaxInputChars: 10000,
		ChunkTokens:   512,
		StrideTokens:  64,
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	svc := newTestService(t, defaultCfg(), &stubGenerator{id: "m"}, nil)

	for _, text := range []string{"", "   \t\n  ", "\x01\x02"} {
		_, err := svc.Summarize(context.Background(), domain.SummaryRequest{
			Text:   text,
			Params: domain.DefaultGenerationParams(),
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "EMPTY_INPUT"), "input %q", text)
	}
}

func TestSummarizeInputTooLarge(t *testing.T) {
	cfg := defaultCfg()
	cfg.MaxInputChars = 20
	gen := &stubGenerator{id: "m"}
	svc := newTestService(t, cfg, gen, nil)

	_, err := svc.Summarize(context.Background(), domain.SummaryRequest{
		Text:   "This sentence is comfortably longer than twenty characters.",
		Params: domain.DefaultGenerationParams(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INPUT_TOO_LARGE"))
	assert.Empty(t, gen.calls, "no generation before validation passes")
}

func TestSummarizeInputLimitCountsCharactersNotBytes(t *testing.T) {
	cfg := defaultCfg()
	cfg.MaxInputChars = 40
	gen := &stubGenerator{id: "m"}
	svc := newTestService(t, cfg, gen, nil)

	// 31 characters but 61 bytes; the limit applies to characters
	text := strings.Repeat("é", 30) + "."
	result, err := svc.Summarize(context.Background(), domain.SummaryRequest{
		Text:   text,
		Params: domain.DefaultGenerationParams(),
	})
	require.NoError(t, err)
	assert.Equal(t, 31, result.InputChars)
	require.Len(t, gen.calls, 1)

	// genuinely oversized multibyte input reports its character count
	_, err = svc.Summarize(context.Background(), domain.SummaryRequest{
		Text:   strings.Repeat("é", 50),
		Params: domain.DefaultGenerationParams(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INPUT_TOO_LARGE"))
	assert.Contains(t, err.Error(), "got 50")
}

func TestSummarizeShortPath(t *testing.T) {
	gen := &stubGenerator{id: "m"}
	svc := newTestService(t, defaultCfg(), gen, nil)
	params := domain.DefaultGenerationParams()

	result, err := svc.Summarize(context.Background(), domain.SummaryRequest{
		Text:   "Cats are mammals.   Dogs \t are mammals too.",
		Params: params,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PathShort, result.Path)
	assert.Equal(t, 1, result.ChunkCount)
	assert.Equal(t, "P1", result.Summary)
	assert.Equal(t, "m", result.Model)
	assert.False(t, result.FromCache)

	require.Len(t, gen.calls, 1)
	assert.Equal(t, "Cats are mammals. Dogs are mammals too.", gen.calls[0].Text)
	assert.Equal(t, params, gen.calls[0].Params)
}

func TestSummarizeChunkedPath(t *testing.T) {
	// 12 five-word sentences (60 tokens) against a 20-token budget and
	// zero stride force the chunked path with three chunks of four
	// sentences each.
	cfg := defaultCfg()
	cfg.ChunkTokens = 20
	cfg.StrideTokens = 0

	var sentences []string
	for i := 1; i <= 12; i++ {
		sentences = append(sentences, fmt.Sprintf("Sentence %d has five words.", i))
	}
	text := strings.Join(sentences, " ")

	gen := &stubGenerator{id: "m"}
	svc := newTestService(t, cfg, gen, nil)
	params := domain.DefaultGenerationParams()

	result, err := svc.Summarize(context.Background(), domain.SummaryRequest{Text: text, Params: params})
	require.NoError(t, err)

	assert.Equal(t, domain.PathChunked, result.Path)
	assert.Equal(t, 3, result.ChunkCount)
	assert.Equal(t, 60, result.InputTokens)

	// three chunk calls plus one recombination call
	require.Len(t, gen.calls, 4)
	for i := 0; i < 3; i++ {
		assert.Equal(t, params, gen.calls[i].Params)
		assert.True(t, strings.HasPrefix(gen.calls[i].Text, fmt.Sprintf("Sentence %d ", i*4+1)))
	}

	combine := gen.calls[3]
	assert.Equal(t, "P1 P2 P3", combine.Text)
	assert.Equal(t, params.MaxLength*2, combine.Params.MaxLength)
	assert.Equal(t, params.MinLength, combine.Params.MinLength)
	assert.Equal(t, "P4", result.Summary)
}

func TestSummarizeChunkedOrderIsDeterministic(t *testing.T) {
	cfg := defaultCfg()
	cfg.ChunkTokens = 10
	cfg.StrideTokens = 0

	var sentences []string
	for i := 1; i <= 8; i++ {
		sentences = append(sentences, fmt.Sprintf("Line %d with five words.", i))
	}
	text := strings.Join(sentences, " ")

	run := func() []genCall {
		gen := &stubGenerator{id: "m"}
		svc := newTestService(t, cfg, gen, nil)
		_, err := svc.Summarize(context.Background(), domain.SummaryRequest{
			Text:   text,
			Params: domain.DefaultGenerationParams(),
		})
		require.NoError(t, err)
		return gen.calls
	}

	assert.Equal(t, run(), run())
}

func TestSummarizeGenerationFailure(t *testing.T) {
	cfg := defaultCfg()
	cfg.ChunkTokens = 20
	cfg.StrideTokens = 0

	var sentences []string
	for i := 1; i <= 12; i++ {
		sentences = append(sentences, fmt.Sprintf("Sentence %d has five words.", i))
	}

	gen := &stubGenerator{id: "m"}
	gen.fn = func(call int, _ string) (string, error) {
		if call == 3 {
			return "", fmt.Errorf("backend unavailable")
		}
		return fmt.Sprintf("P%d", call), nil
	}
	svc := newTestService(t, cfg, gen, nil)

	result, err := svc.Summarize(context.Background(), domain.SummaryRequest{
		Text:   strings.Join(sentences, " "),
		Params: domain.DefaultGenerationParams(),
	})
	require.Error(t, err)
	assert.Nil(t, result, "no partial result on failure")
	assert.True(t, apperrors.IsCode(err, "GENERATION_FAILED"))
	assert.Len(t, gen.calls, 3, "processing stops at the failing chunk")
}

func TestSummarizeUnknownModel(t *testing.T) {
	gen := &stubGenerator{id: "m"}
	svc := newTestService(t, defaultCfg(), gen, nil)

	_, err := svc.Summarize(context.Background(), domain.SummaryRequest{
		Text:   "Some text.",
		Model:  "other-model",
		Params: domain.DefaultGenerationParams(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "MODEL_NOT_AVAILABLE"))
	assert.Empty(t, gen.calls)
}

func TestSummarizeCache(t *testing.T) {
	params := domain.DefaultGenerationParams()

	t.Run("stores then serves from cache", func(t *testing.T) {
		gen := &stubGenerator{id: "m"}
		cache := newStubCache()
		svc := newTestService(t, defaultCfg(), gen, cache)
		req := domain.SummaryRequest{Text: "Cats are mammals.", Params: params}

		first, err := svc.Summarize(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, first.FromCache)
		assert.Equal(t, 1, cache.sets)

		second, err := svc.Summarize(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, second.FromCache)
		assert.Equal(t, first.Summary, second.Summary)
		assert.Len(t, gen.calls, 1, "cache hit skips generation")
	})

	t.Run("skip_cache bypasses lookup and store", func(t *testing.T) {
		gen := &stubGenerator{id: "m"}
		cache := newStubCache()
		svc := newTestService(t, defaultCfg(), gen, cache)
		req := domain.SummaryRequest{Text: "Cats are mammals.", Params: params, SkipCache: true}

		_, err := svc.Summarize(context.Background(), req)
		require.NoError(t, err)
		_, err = svc.Summarize(context.Background(), req)
		require.NoError(t, err)
		assert.Zero(t, cache.sets)
		assert.Len(t, gen.calls, 2)
	})

	t.Run("key varies with model, params and text", func(t *testing.T) {
		base := CacheKey("m", params, "text")
		assert.NotEqual(t, base, CacheKey("other", params, "text"))
		assert.NotEqual(t, base, CacheKey("m", params, "other text"))

		doubled := params.WithDoubledMaxLength()
		assert.NotEqual(t, base, CacheKey("m", doubled, "text"))
		assert.Equal(t, base, CacheKey("m", params, "text"))
	})
}

func TestSummarizeFile(t *testing.T) {
	t.Run("extracted text flows through the pipeline", func(t *testing.T) {
		gen := &stubGenerator{id: "m"}
		svc := newTestService(t, defaultCfg(), gen, nil)
		svc.extractor = &stubExtractor{text: "Extracted sentence one. Extracted sentence two."}

		result, err := svc.SummarizeFile(context.Background(), "doc.txt", domain.SummaryRequest{
			Params: domain.DefaultGenerationParams(),
		})
		require.NoError(t, err)
		assert.Equal(t, "P1", result.Summary)
		require.Len(t, gen.calls, 1)
		assert.Equal(t, "Extracted sentence one. Extracted sentence two.", gen.calls[0].Text)
	})

	t.Run("extraction errors propagate", func(t *testing.T) {
		gen := &stubGenerator{id: "m"}
		svc := newTestService(t, defaultCfg(), gen, nil)
		svc.extractor = &stubExtractor{err: apperrors.NewUnsupportedFormatError(".xyz")}

		_, err := svc.SummarizeFile(context.Background(), "doc.xyz", domain.SummaryRequest{})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "UNSUPPORTED_FORMAT"))
		assert.Empty(t, gen.calls)
	})
}

func TestSelectModelAndModels(t *testing.T) {
	gen := &stubGenerator{id: "m"}
	svc := newTestService(t, defaultCfg(), gen, nil)

	assert.NoError(t, svc.SelectModel("m"))
	assert.Error(t, svc.SelectModel("nope"))

	models := svc.Models()
	require.Len(t, models, 1)
	assert.Equal(t, "m", models[0].ID)
}
