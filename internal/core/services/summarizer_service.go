// Package services holds the core orchestration logic behind the
// primary ports.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"summarizer-worker/chunking"
	"summarizer-worker/config"
	"summarizer-worker/internal/core/domain"
	"summarizer-worker/internal/core/ports"
	apperrors "summarizer-worker/pkg/errors"
	"summarizer-worker/pkg/logger"
	"summarizer-worker/pkg/metrics"
	"summarizer-worker/textcleaner"
)

// SummarizerService orchestrates one summarization call: clean the
// input, validate it, pick the short or chunked path by token count,
// and delegate all generation to the model provider. The service is
// stateless across calls and never retries a failed generation.
type SummarizerService struct {
	cfg       config.SummarizerConfig
	cacheCfg  config.CacheConfig
	provider  ports.ModelProvider
	splitter  ports.SentenceSplitter
	counter   ports.TokenCounter
	extractor ports.TextExtractor
	cache     ports.SummaryCache
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

// NewSummarizerService creates the orchestrator. cache may be nil when
// caching is disabled.
func NewSummarizerService(
	cfg config.SummarizerConfig,
	cacheCfg config.CacheConfig,
	provider ports.ModelProvider,
	splitter ports.SentenceSplitter,
	counter ports.TokenCounter,
	extractor ports.TextExtractor,
	cache ports.SummaryCache,
	log *logger.Logger,
	m *metrics.Metrics,
) *SummarizerService {
	return &SummarizerService{
		cfg:       cfg,
		cacheCfg:  cacheCfg,
		provider:  provider,
		splitter:  splitter,
		counter:   counter,
		extractor: extractor,
		cache:     cache,
		logger:    log,
		metrics:   m,
	}
}

// Summarize runs the full pipeline for one request
func (s *SummarizerService) Summarize(ctx context.Context, req domain.SummaryRequest) (*domain.SummaryResult, error) {
	startTime := time.Now()

	cleaned := textcleaner.Clean(req.Text)
	if cleaned == "" {
		return nil, apperrors.NewEmptyInputError()
	}
	// the input limit counts characters, not bytes
	inputChars := utf8.RuneCountInString(cleaned)
	if inputChars > s.cfg.MaxInputChars {
		return nil, apperrors.NewInputTooLargeError(s.cfg.MaxInputChars, inputChars)
	}

	gen, err := s.provider.Generator(req.Model)
	if err != nil {
		return nil, err
	}
	modelID := gen.ModelID()

	if summary, ok := s.cacheLookup(ctx, modelID, req, cleaned); ok {
		s.metrics.RecordCacheHit(modelID)
		// the cache stores only the summary text, so path and token
		// counts of the original computation are not reproduced
		return &domain.SummaryResult{
			Summary:     summary,
			Model:       modelID,
			InputChars:  inputChars,
			FromCache:   true,
			Duration:    time.Since(startTime),
			CompletedAt: time.Now(),
		}, nil
	}

	totalTokens, err := s.counter.Count(cleaned)
	if err != nil {
		return nil, apperrors.NewGenerationError("tokenize", err)
	}

	s.logger.LogSummarizeStart(ctx, modelID, inputChars, totalTokens)

	result := &domain.SummaryResult{
		Model:       modelID,
		InputChars:  inputChars,
		InputTokens: totalTokens,
	}

	if totalTokens <= s.cfg.ChunkTokens {
		result.Path = domain.PathShort
		result.ChunkCount = 1
		result.Summary, err = s.generate(ctx, gen, cleaned, req.Params, "short")
	} else {
		result.Path = domain.PathChunked
		result.Summary, result.ChunkCount, err = s.summarizeChunked(ctx, gen, cleaned, req.Params)
	}
	if err != nil {
		s.metrics.RecordSummaryError(modelID, errorCode(err))
		return nil, err
	}

	result.Duration = time.Since(startTime)
	result.CompletedAt = time.Now()

	s.cacheStore(ctx, modelID, req, cleaned, result.Summary)
	s.metrics.RecordSummary(modelID, result.Path, result.ChunkCount, totalTokens, result.Duration)
	s.logger.LogSummarizeComplete(ctx, modelID, result.ChunkCount, result.Duration, len(result.Summary))

	return result, nil
}

// SummarizeFile extracts text from path and summarizes it. The request
// text field is ignored in favor of the extracted content.
func (s *SummarizerService) SummarizeFile(ctx context.Context, path string, req domain.SummaryRequest) (*domain.SummaryResult, error) {
	text, err := s.extractor.ExtractText(path)
	if err != nil {
		return nil, err
	}
	req.Text = text
	return s.Summarize(ctx, req)
}

// Models lists the configured models
func (s *SummarizerService) Models() []domain.ModelInfo {
	return s.provider.Models()
}

// SelectModel switches the active model
func (s *SummarizerService) SelectModel(modelID string) error {
	return s.provider.Select(modelID)
}

// summarizeChunked splits the text into sentences, packs them into
// token-budgeted chunks, summarizes each chunk in order and then runs
// one recombination pass over the joined chunk summaries with a
// doubled length budget.
func (s *SummarizerService) summarizeChunked(ctx context.Context, gen ports.Generator, text string, params domain.GenerationParams) (string, int, error) {
	sentences, err := s.splitter.Split(text)
	if err != nil {
		return "", 0, apperrors.NewGenerationError("split", err)
	}

	builder := chunking.NewBuilder(s.cfg.ChunkTokens, s.cfg.StrideTokens, s.counter.Count)
	chunks, err := builder.Build(sentences)
	if err != nil {
		return "", 0, apperrors.NewGenerationError("chunk", err)
	}
	if chunks.TotalChunks == 0 {
		return "", 0, apperrors.NewEmptyInputError()
	}

	for _, c := range chunks.Chunks {
		s.metrics.ChunkTokens.WithLabelValues(gen.ModelID()).Observe(float64(c.Tokens))
	}

	partials := make([]string, 0, chunks.TotalChunks)
	for _, c := range chunks.Chunks {
		partial, err := s.generate(ctx, gen, c.Text, params, "chunk")
		if err != nil {
			return "", 0, err
		}
		partials = append(partials, partial)
	}

	combined := strings.Join(partials, " ")
	summary, err := s.generate(ctx, gen, combined, params.WithDoubledMaxLength(), "combine")
	if err != nil {
		return "", 0, err
	}
	return summary, chunks.TotalChunks, nil
}

// generate runs one generation call and wraps failures with the stage
func (s *SummarizerService) generate(ctx context.Context, gen ports.Generator, text string, params domain.GenerationParams, stage string) (string, error) {
	startTime := time.Now()
	output, err := gen.Generate(ctx, text, params)
	if err != nil {
		return "", apperrors.NewGenerationError(stage, err)
	}
	s.metrics.RecordGeneration(gen.ModelID(), stage, time.Since(startTime))
	return output, nil
}

func (s *SummarizerService) cacheLookup(ctx context.Context, modelID string, req domain.SummaryRequest, cleaned string) (string, bool) {
	if s.cache == nil || !s.cacheCfg.Enabled || req.SkipCache {
		return "", false
	}

	key := CacheKey(modelID, req.Params, cleaned)
	summary, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.FromContext(ctx).Warn().Err(err).Msg("Summary cache lookup failed")
		return "", false
	}
	if !found {
		s.metrics.RecordCacheMiss(modelID)
		return "", false
	}
	return summary, true
}

func (s *SummarizerService) cacheStore(ctx context.Context, modelID string, req domain.SummaryRequest, cleaned, summary string) {
	if s.cache == nil || !s.cacheCfg.Enabled || req.SkipCache {
		return
	}

	key := CacheKey(modelID, req.Params, cleaned)
	if err := s.cache.Set(ctx, key, summary, s.cacheCfg.TTL); err != nil {
		s.logger.FromContext(ctx).Warn().Err(err).Msg("Summary cache store failed")
	}
}

// CacheKey derives a deterministic cache key from the model, the
// generation parameters and the cleaned input text.
func CacheKey(modelID string, params domain.GenerationParams, cleaned string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%d|%g|%g|%t|", modelID,
		params.MaxLength, params.MinLength, params.NumBeams,
		params.Temperature, params.TopP, params.DoSample)
	h.Write([]byte(cleaned))
	return hex.EncodeToString(h.Sum(nil))
}

// errorCode extracts the structured code for metrics labels
func errorCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}
