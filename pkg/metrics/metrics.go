package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec
	HTTPResponseSize    prometheus.HistogramVec

	// Summarization metrics
	SummariesTotal    prometheus.CounterVec
	SummaryDuration   prometheus.HistogramVec
	SummaryErrors     prometheus.CounterVec
	InputTokens       prometheus.HistogramVec
	ChunksPerSummary  prometheus.HistogramVec
	ChunkTokens       prometheus.HistogramVec
	GenerationLatency prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Queue metrics
	QueueDepth          prometheus.GaugeVec
	JobsProcessedTotal  prometheus.CounterVec
	JobsFailedTotal     prometheus.CounterVec
	JobProcessingActive prometheus.Gauge
}

// New creates a new metrics instance
func New(namespace, subsystem string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "endpoint"},
		),

		SummariesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "summaries_total",
				Help:      "Total number of summaries produced",
			},
			[]string{"model", "path"}, // path: short or chunked
		),

		SummaryDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "summary_duration_seconds",
				Help:      "End-to-end duration of summarize calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"model", "path"},
		),

		SummaryErrors: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "summary_errors_total",
				Help:      "Total number of failed summarize calls",
			},
			[]string{"model", "code"},
		),

		InputTokens: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "input_tokens",
				Help:      "Token count of cleaned input text",
				Buckets:   prometheus.ExponentialBuckets(64, 2, 12),
			},
			[]string{"model"},
		),

		ChunksPerSummary: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "chunks_per_summary",
				Help:      "Number of chunks produced per chunked summary",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34, 55},
			},
			[]string{"model"},
		),

		ChunkTokens: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "chunk_tokens",
				Help:      "Token count per produced chunk",
				Buckets:   prometheus.ExponentialBuckets(32, 2, 8),
			},
			[]string{"model"},
		),

		GenerationLatency: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "generation_latency_seconds",
				Help:      "Latency of individual generation calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"model", "stage"}, // stage: short, chunk, combine
		),

		CacheHitsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of summary cache hits",
			},
			[]string{"model"},
		),

		CacheMissesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of summary cache misses",
			},
			[]string{"model"},
		),

		QueueDepth: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queue_depth",
				Help:      "Current number of pending jobs in the queue",
			},
			[]string{"queue"},
		),

		JobsProcessedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_processed_total",
				Help:      "Total number of queue jobs processed",
			},
			[]string{"status"},
		),

		JobsFailedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "jobs_failed_total",
				Help:      "Total number of queue jobs that failed",
			},
			[]string{"code"},
		),

		JobProcessingActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "job_processing_active",
				Help:      "Number of jobs currently being processed",
			},
		),
	}
}

// RecordHTTPRequest records metrics for a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// RecordSummary records metrics for a completed summarize call
func (m *Metrics) RecordSummary(model, path string, chunks, inputTokens int, duration time.Duration) {
	m.SummariesTotal.WithLabelValues(model, path).Inc()
	m.SummaryDuration.WithLabelValues(model, path).Observe(duration.Seconds())
	m.InputTokens.WithLabelValues(model).Observe(float64(inputTokens))
	if path == "chunked" {
		m.ChunksPerSummary.WithLabelValues(model).Observe(float64(chunks))
	}
}

// RecordSummaryError records a failed summarize call
func (m *Metrics) RecordSummaryError(model, code string) {
	m.SummaryErrors.WithLabelValues(model, code).Inc()
}

// RecordGeneration records the latency of a single generation call
func (m *Metrics) RecordGeneration(model, stage string, duration time.Duration) {
	m.GenerationLatency.WithLabelValues(model, stage).Observe(duration.Seconds())
}

// RecordCacheHit records a summary cache hit
func (m *Metrics) RecordCacheHit(model string) {
	m.CacheHitsTotal.WithLabelValues(model).Inc()
}

// RecordCacheMiss records a summary cache miss
func (m *Metrics) RecordCacheMiss(model string) {
	m.CacheMissesTotal.WithLabelValues(model).Inc()
}

// Global metrics instance
var globalMetrics *Metrics

// Init initializes the global metrics
func Init(namespace, subsystem string) {
	globalMetrics = New(namespace, subsystem)
}

// Get returns the global metrics instance
func Get() *Metrics {
	if globalMetrics == nil {
		globalMetrics = New("summarizer", "worker")
	}
	return globalMetrics
}
