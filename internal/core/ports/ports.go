package ports

import (
	"context"
	"time"

	"summarizer-worker/internal/core/domain"
)

// Primary Ports (inbound)

// SummarizerService defines the core summarization operations
type SummarizerService interface {
	Summarize(ctx context.Context, req domain.SummaryRequest) (*domain.SummaryResult, error)
	SummarizeFile(ctx context.Context, path string, req domain.SummaryRequest) (*domain.SummaryResult, error)
	Models() []domain.ModelInfo
	SelectModel(modelID string) error
}

// Secondary Ports (outbound)

// Generator produces generated text for input text and parameters.
// Implementations truncate input to the backend's own token limit;
// the orchestrator never does.
type Generator interface {
	Generate(ctx context.Context, text string, params domain.GenerationParams) (string, error)
	ModelID() string
}

// ModelProvider holds the active generation capability and swaps it on
// selection. Selecting an identifier outside the configured set fails
// before any generation is attempted.
type ModelProvider interface {
	Current() Generator
	Select(modelID string) error
	Generator(modelID string) (Generator, error)
	Models() []domain.ModelInfo
}

// TokenCounter counts tokens of a string under the target model's vocabulary
type TokenCounter interface {
	Count(text string) (int, error)
}

// SentenceSplitter segments cleaned text into trimmed non-empty sentences
type SentenceSplitter interface {
	Split(text string) ([]string, error)
}

// TextExtractor extracts plain text from an input file
type TextExtractor interface {
	ExtractText(path string) (string, error)
}

// SummaryCache caches final summaries keyed by model, parameters and input
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, summary string, ttl time.Duration) error
	Close() error
}

// Queue defines async summarize-job operations
type Queue interface {
	Enqueue(ctx context.Context, job *SummarizeJob) error
	Dequeue(ctx context.Context) (*SummarizeJob, error)
	Complete(ctx context.Context, jobID string, result *domain.SummaryResult) error
	Fail(ctx context.Context, jobID string, errorMsg string) error
	Get(ctx context.Context, jobID string) (*SummarizeJob, error)
	Depth(ctx context.Context) (int64, error)
	Close() error
}

// SummarizeJob is an async summarization request travelling through the queue
type SummarizeJob struct {
	ID          string                `json:"id"`
	Status      JobStatus             `json:"status"`
	Request     domain.SummaryRequest `json:"request"`
	Result      *domain.SummaryResult `json:"result,omitempty"`
	Error       string                `json:"error,omitempty"`
	RetryCount  int                   `json:"retry_count"`
	MaxRetries  int                   `json:"max_retries"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
}

// JobStatus represents the job processing status
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)
