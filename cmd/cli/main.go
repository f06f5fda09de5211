package main

import (
	"fmt"
	"log"
	"os"

	"summarizer-worker/cache"
	"summarizer-worker/config"
	"summarizer-worker/internal/adapters/primary/cli"
	"summarizer-worker/internal/core/ports"
	"summarizer-worker/internal/core/services"
	"summarizer-worker/llm"
	"summarizer-worker/pkg/logger"
	"summarizer-worker/pkg/metrics"
	"summarizer-worker/queue"
	"summarizer-worker/splitter"
	"summarizer-worker/textextractor"
	"summarizer-worker/tokenizer"
)

func main() {
	cfg := config.Load()

	// CLI output stays readable; structured logs go to stderr.
	loggerConfig := &logger.Config{
		Level:      cfg.Logging.Level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: cfg.Logging.TimeFormat,
	}
	if err := logger.Init(loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
	}

	// Redis is optional on the command line; without it only async
	// submission and stats are unavailable.
	var jobQueue ports.Queue
	if cfg.Redis.Host != "" {
		redisQueue, err := queue.NewRedisQueue(&cfg.Redis, &cfg.Worker)
		if err != nil {
			log.Printf("Redis not available, continuing without queue support: %v", err)
		} else {
			defer redisQueue.Close()
			jobQueue = redisQueue
		}
	}

	var summaryCache ports.SummaryCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(&cfg.Redis, &cfg.Cache)
		if err == nil {
			defer redisCache.Close()
			summaryCache = redisCache
		}
	}

	summarizerService := services.NewSummarizerService(
		cfg.Summarizer,
		cfg.Cache,
		llm.NewProvider(cfg.Model),
		splitter.NewSplitter(),
		tokenizer.New(cfg.Summarizer.TokenizerEncoding),
		textextractor.NewTextExtractor(),
		summaryCache,
		logger.Get(),
		metrics.Get(),
	)

	cliHandler := cli.NewCLI(summarizerService, jobQueue, cfg)

	if err := cliHandler.GetRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
