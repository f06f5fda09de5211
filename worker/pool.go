package worker

import (
	"context"
	"sync"
	"time"

	"summarizer-worker/config"
	"summarizer-worker/internal/core/ports"
	"summarizer-worker/pkg/logger"
	"summarizer-worker/pkg/metrics"
)

// Pool runs a fixed number of workers and keeps the queue depth gauge
// current while running.
type Pool struct {
	queue        ports.Queue
	service      ports.SummarizerService
	cfg          config.WorkerConfig
	logger       *logger.Logger
	metrics      *metrics.Metrics
	workers      []*Worker
	workersMutex sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewPool creates a worker pool sized by the configured concurrency
func NewPool(q ports.Queue, service ports.SummarizerService, cfg config.WorkerConfig, log *logger.Logger, m *metrics.Metrics) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		queue:   q,
		service: service,
		cfg:     cfg,
		logger:  log,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the configured number of workers and the depth monitor
func (p *Pool) Start() {
	concurrency := p.cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	p.logger.Info().Int("concurrency", concurrency).Msg("Worker pool starting")

	p.workersMutex.Lock()
	for i := 0; i < concurrency; i++ {
		w := NewWorker(p.queue, p.service, p.logger, p.metrics)
		p.workers = append(p.workers, w)
		w.Start()
	}
	p.workersMutex.Unlock()

	p.wg.Add(1)
	go p.depthMonitor()
}

// Stop shuts down the depth monitor and all workers
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()

	p.workersMutex.Lock()
	var workerWg sync.WaitGroup
	for _, w := range p.workers {
		workerWg.Add(1)
		go func(w *Worker) {
			defer workerWg.Done()
			w.Stop()
		}(w)
	}
	p.workers = nil
	p.workersMutex.Unlock()

	workerWg.Wait()
	p.logger.Info().Msg("Worker pool stopped")
}

// WorkerCount returns the current number of workers
func (p *Pool) WorkerCount() int {
	p.workersMutex.RLock()
	defer p.workersMutex.RUnlock()
	return len(p.workers)
}

// Stats returns pool statistics for the health and stats endpoints
func (p *Pool) Stats(ctx context.Context) map[string]interface{} {
	depth, err := p.queue.Depth(ctx)
	if err != nil {
		depth = -1
	}

	return map[string]interface{}{
		"active_workers": p.WorkerCount(),
		"concurrency":    p.cfg.Concurrency,
		"queue_depth":    depth,
		"queue_name":     p.cfg.QueueName,
	}
}

func (p *Pool) depthMonitor() {
	defer p.wg.Done()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			depth, err := p.queue.Depth(p.ctx)
			if err != nil {
				if p.ctx.Err() == nil {
					p.logger.Warn().Err(err).Msg("Failed to read queue depth")
				}
				continue
			}
			p.metrics.QueueDepth.WithLabelValues(p.cfg.QueueName).Set(float64(depth))
		}
	}
}
