// Package worker drains the summarize-job queue and runs each job
// through the summarizer service.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"summarizer-worker/internal/core/ports"
	apperrors "summarizer-worker/pkg/errors"
	"summarizer-worker/pkg/logger"
	"summarizer-worker/pkg/metrics"
)

// Worker runs a single dequeue-process loop
type Worker struct {
	id           string
	queue        ports.Queue
	service      ports.SummarizerService
	logger       *logger.Logger
	metrics      *metrics.Metrics
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	isRunning    bool
	runningMutex sync.RWMutex
}

// NewWorker creates a worker over the queue and summarizer service
func NewWorker(q ports.Queue, service ports.SummarizerService, log *logger.Logger, m *metrics.Metrics) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:      uuid.New().String(),
		queue:   q,
		service: service,
		logger:  log,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// ID returns the worker identifier
func (w *Worker) ID() string {
	return w.id
}

// Start launches the worker loop. Calling Start on a running worker
// is a no-op.
func (w *Worker) Start() {
	w.runningMutex.Lock()
	defer w.runningMutex.Unlock()

	if w.isRunning {
		return
	}

	w.logger.Info().Str("worker_id", w.id).Msg("Worker starting")
	w.isRunning = true

	w.wg.Add(1)
	go w.run()
}

// Stop cancels the loop and waits for the in-flight job to finish
func (w *Worker) Stop() {
	w.runningMutex.Lock()
	if !w.isRunning {
		w.runningMutex.Unlock()
		return
	}
	w.isRunning = false
	w.runningMutex.Unlock()

	w.cancel()
	w.wg.Wait()
	w.logger.Info().Str("worker_id", w.id).Msg("Worker stopped")
}

// IsRunning reports whether the worker loop is active
func (w *Worker) IsRunning() bool {
	w.runningMutex.RLock()
	defer w.runningMutex.RUnlock()
	return w.isRunning
}

func (w *Worker) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		job, err := w.queue.Dequeue(w.ctx)
		if err != nil {
			if w.ctx.Err() != nil {
				return
			}
			if errors.Is(err, redis.Nil) {
				continue // queue empty, poll again
			}
			w.logger.Error().Err(err).Str("worker_id", w.id).Msg("Failed to dequeue job")
			time.Sleep(1 * time.Second)
			continue
		}

		w.processJob(job)
	}
}

func (w *Worker) processJob(job *ports.SummarizeJob) {
	ctx := logger.WithJobID(w.ctx, job.ID)
	log := w.logger.FromContext(ctx)

	log.Info().Str("worker_id", w.id).Msg("Processing summarize job")

	w.metrics.JobProcessingActive.Inc()
	defer w.metrics.JobProcessingActive.Dec()

	startTime := time.Now()
	result, err := w.service.Summarize(ctx, job.Request)
	if err != nil {
		log.Error().Err(err).Msg("Summarize job failed")
		w.metrics.JobsFailedTotal.WithLabelValues(failureCode(err)).Inc()
		// status updates use a fresh context so shutdown cannot lose them
		if failErr := w.queue.Fail(context.Background(), job.ID, err.Error()); failErr != nil {
			log.Error().Err(failErr).Msg("Failed to record job failure")
		}
		return
	}

	if err := w.queue.Complete(context.Background(), job.ID, result); err != nil {
		log.Error().Err(err).Msg("Failed to record job completion")
		return
	}

	w.metrics.JobsProcessedTotal.WithLabelValues(string(ports.JobStatusCompleted)).Inc()
	log.Info().
		Str("worker_id", w.id).
		Dur("duration", time.Since(startTime)).
		Str("path", result.Path).
		Int("chunks", result.ChunkCount).
		Msg("Summarize job completed")
}

func failureCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}
