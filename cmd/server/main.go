package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"summarizer-worker/cache"
	"summarizer-worker/config"
	"summarizer-worker/health"
	httpadapter "summarizer-worker/internal/adapters/primary/http"
	"summarizer-worker/internal/core/ports"
	"summarizer-worker/internal/core/services"
	"summarizer-worker/llm"
	apperrors "summarizer-worker/pkg/errors"
	"summarizer-worker/pkg/logger"
	"summarizer-worker/pkg/metrics"
	"summarizer-worker/pkg/validator"
	"summarizer-worker/queue"
	"summarizer-worker/splitter"
	"summarizer-worker/textextractor"
	"summarizer-worker/tokenizer"
	"summarizer-worker/worker"
)

func main() {
	// Config comes from config.yaml when present, with hot-reload, and
	// falls back to environment variables otherwise.
	cfg := config.Load()
	configManager := config.NewManager(cfg.Server.Environment)
	if err := configManager.LoadFromFile("config.yaml"); err == nil {
		configManager.StartWatching()
		defer configManager.StopWatching()
		cfg = configManager.GetConfig()
	}

	if err := cfg.Validate(); err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	loggerConfig := &logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		Filename:   cfg.Logging.Filename,
		TimeFormat: cfg.Logging.TimeFormat,
	}
	if err := logger.Init(loggerConfig); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
	}

	log := logger.Get()
	ctx := logger.WithCorrelationID(context.Background())

	log.FromContext(ctx).Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("provider", cfg.Model.Provider).
		Str("model", cfg.Model.DefaultModel).
		Msg("Starting summarizer worker")

	if cfg.Metrics.Enabled {
		metrics.Init(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	}
	m := metrics.Get()

	validator.Init()

	redisQueue, err := queue.NewRedisQueue(&cfg.Redis, &cfg.Worker)
	if err != nil {
		log.FromContext(ctx).Fatal().Err(err).Msg("Failed to connect to Redis queue")
	}
	defer redisQueue.Close()

	// Caching degrades to a no-op when Redis is unreachable for it;
	// summarization itself does not depend on the cache.
	var summaryCache ports.SummaryCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(&cfg.Redis, &cfg.Cache)
		if err != nil {
			log.FromContext(ctx).Warn().Err(err).Msg("Summary cache unavailable, continuing without it")
		} else {
			summaryCache = redisCache
			defer redisCache.Close()
		}
	}

	tok := tokenizer.New(cfg.Summarizer.TokenizerEncoding)
	if err := tok.Init(); err != nil {
		log.FromContext(ctx).Warn().Err(err).
			Str("encoding", cfg.Summarizer.TokenizerEncoding).
			Msg("Tokenizer encoding not preloaded, will retry on first use")
	}

	sentenceSplitter := splitter.NewSplitter()
	extractor := textextractor.NewTextExtractor()
	provider := llm.NewProvider(cfg.Model)

	summarizerService := services.NewSummarizerService(
		cfg.Summarizer,
		cfg.Cache,
		provider,
		sentenceSplitter,
		tok,
		extractor,
		summaryCache,
		log,
		m,
	)

	pool := worker.NewPool(redisQueue, summarizerService, cfg.Worker, log, m)
	pool.Start()

	app := fiber.New(fiber.Config{
		ErrorHandler: httpadapter.ErrorHandler,
		BodyLimit:    int(cfg.Security.MaxRequestBodySize),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: !cfg.IsProduction(),
	}))
	app.Use(httpadapter.RequestLogging(log, m))

	if cfg.Security.RateLimitEnabled {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.Security.RateLimitPerMinute,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return apperrors.NewRateLimitError("Rate limit exceeded")
			},
		}))
	}

	if cfg.Security.CorsEnabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins: func() string {
				if len(cfg.Security.CorsAllowedOrigins) > 0 {
					return cfg.Security.CorsAllowedOrigins[0]
				}
				return "*"
			}(),
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
		}))
	}

	handler := httpadapter.NewSummarizeHandler(summarizerService, redisQueue, validator.Get())
	handler.SetupRoutes(app)

	if cfg.Health.Enabled {
		healthChecker := health.NewHealthChecker(cfg, redisQueue, provider, tok)
		app.Get(cfg.Health.Path, healthChecker.HealthHandler)
		app.Get(cfg.Health.ReadinessPath, healthChecker.ReadinessHandler)
		app.Get(cfg.Health.LivenessPath, healthChecker.LivenessHandler)
	}

	if cfg.Metrics.Enabled {
		go func() {
			metricsApp := fiber.New(fiber.Config{DisableStartupMessage: true})
			metricsApp.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))

			log.FromContext(ctx).Info().
				Str("port", cfg.Metrics.Port).
				Str("path", cfg.Metrics.Path).
				Msg("Metrics server starting")

			if err := metricsApp.Listen(":" + cfg.Metrics.Port); err != nil {
				log.FromContext(ctx).Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	go func() {
		log.FromContext(ctx).Info().
			Str("port", cfg.Server.Port).
			Msg("HTTP server starting")

		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.FromContext(ctx).Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.FromContext(ctx).Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.FromContext(ctx).Error().Err(err).Msg("Server shutdown error")
	}

	pool.Stop()
	log.FromContext(ctx).Info().Msg("Server stopped")
}
