package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the summarizer worker
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Redis      RedisConfig      `yaml:"redis"`
	Worker     WorkerConfig     `yaml:"worker"`
	Model      ModelConfig      `yaml:"model"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Security   SecurityConfig   `yaml:"security"`
	Health     HealthConfig     `yaml:"health"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	Environment  string        `yaml:"environment"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// WorkerConfig holds the async summarize-job worker configuration
type WorkerConfig struct {
	Concurrency int           `yaml:"concurrency"`
	QueueName   string        `yaml:"queue_name"`
	RetryCount  int           `yaml:"retry_count"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	JobTTL      time.Duration `yaml:"job_ttl"`
}

// ModelConfig holds generation backend configuration
type ModelConfig struct {
	Provider        string   `yaml:"provider"`
	DefaultModel    string   `yaml:"default_model"`
	AvailableModels []string `yaml:"available_models"`
	Device          string   `yaml:"device"`
	OllamaServerURL string   `yaml:"ollama_server_url"`
	OpenAIBaseURL   string   `yaml:"openai_base_url"`
}

// SummarizerConfig holds chunking and input-limit configuration.
// TargetSentencesPerChunk is accepted for compatibility with older
// deployments; the token-budgeted chunker does not consult it.
type SummarizerConfig struct {
	MaxInputChars           int    `yaml:"max_input_chars"`
	ChunkTokens             int    `yaml:"chunk_tokens"`
	StrideTokens            int    `yaml:"stride_tokens"`
	TargetSentencesPerChunk int    `yaml:"target_sentences_per_chunk"`
	TokenizerEncoding       string `yaml:"tokenizer_encoding"`
}

// CacheConfig holds summary cache configuration
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	TTL       time.Duration `yaml:"ttl"`
	Namespace string        `yaml:"namespace"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format     string `yaml:"format" validate:"oneof=json console"`
	Output     string `yaml:"output" validate:"oneof=stdout stderr file"`
	Filename   string `yaml:"filename,omitempty"`
	TimeFormat string `yaml:"time_format"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      string `yaml:"port"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// SecurityConfig holds HTTP hardening configuration
type SecurityConfig struct {
	RateLimitEnabled   bool          `yaml:"rate_limit_enabled"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	CorsEnabled        bool          `yaml:"cors_enabled"`
	CorsAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`
}

// HealthConfig holds health check configuration
type HealthConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	ReadinessPath string `yaml:"readiness_path"`
	LivenessPath  string `yaml:"liveness_path"`
}

// Load reads configuration from environment variables and returns Config
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3001"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Worker: WorkerConfig{
			Concurrency: getIntEnv("WORKER_CONCURRENCY", 2),
			QueueName:   getEnv("WORKER_QUEUE_NAME", "summarize_queue"),
			RetryCount:  getIntEnv("WORKER_RETRY_COUNT", 0),
			RetryDelay:  getDurationEnv("WORKER_RETRY_DELAY", 5*time.Second),
			JobTTL:      getDurationEnv("WORKER_JOB_TTL", 24*time.Hour),
		},
		Model: ModelConfig{
			Provider:     getEnv("MODEL_PROVIDER", "ollama"),
			DefaultModel: getEnv("MODEL_DEFAULT", "flan-t5-base"),
			AvailableModels: getStringSliceEnv("MODEL_AVAILABLE", []string{
				"flan-t5-base", "flan-t5-large", "bart-large-cnn", "t5-base",
			}),
			Device:          getEnv("MODEL_DEVICE", "cpu"),
			OllamaServerURL: getEnv("OLLAMA_SERVER_URL", "http://localhost:11434"),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		},
		Summarizer: SummarizerConfig{
			MaxInputChars:           getIntEnv("SUMMARIZER_MAX_INPUT_CHARS", 100000),
			ChunkTokens:             getIntEnv("SUMMARIZER_CHUNK_TOKENS", 512),
			StrideTokens:            getIntEnv("SUMMARIZER_STRIDE_TOKENS", 64),
			TargetSentencesPerChunk: getIntEnv("SUMMARIZER_TARGET_SENTENCES_PER_CHUNK", 8),
			TokenizerEncoding:       getEnv("SUMMARIZER_TOKENIZER_ENCODING", "cl100k_base"),
		},
		Cache: CacheConfig{
			Enabled:   getBoolEnv("CACHE_ENABLED", true),
			TTL:       getDurationEnv("CACHE_TTL", 24*time.Hour),
			Namespace: getEnv("CACHE_NAMESPACE", "summarizer"),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			Filename:   getEnv("LOG_FILENAME", "logs/app.log"),
			TimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		},
		Metrics: MetricsConfig{
			Enabled:   getBoolEnv("METRICS_ENABLED", true),
			Port:      getEnv("METRICS_PORT", "9090"),
			Path:      getEnv("METRICS_PATH", "/metrics"),
			Namespace: getEnv("METRICS_NAMESPACE", "summarizer"),
			Subsystem: getEnv("METRICS_SUBSYSTEM", "worker"),
		},
		Security: SecurityConfig{
			RateLimitEnabled:   getBoolEnv("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitPerMinute: getIntEnv("SECURITY_RATE_LIMIT_PER_MINUTE", 60),
			CorsEnabled:        getBoolEnv("SECURITY_CORS_ENABLED", true),
			CorsAllowedOrigins: getStringSliceEnv("SECURITY_CORS_ALLOWED_ORIGINS", []string{"*"}),
			RequestTimeout:     getDurationEnv("SECURITY_REQUEST_TIMEOUT", 300*time.Second),
			MaxRequestBodySize: getInt64Env("SECURITY_MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		},
		Health: HealthConfig{
			Enabled:       getBoolEnv("HEALTH_ENABLED", true),
			Path:          getEnv("HEALTH_PATH", "/health"),
			ReadinessPath: getEnv("HEALTH_READINESS_PATH", "/ready"),
			LivenessPath:  getEnv("HEALTH_LIVENESS_PATH", "/live"),
		},
	}
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: Invalid integer value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if int64Value, err := strconv.ParseInt(value, 10, 64); err == nil {
			return int64Value
		}
		log.Printf("Warning: Invalid int64 value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		log.Printf("Warning: Invalid boolean value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: Invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// GetRedisAddr returns the Redis connection address
func (c *Config) GetRedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// HasModel reports whether the given model identifier is configured
func (c *ModelConfig) HasModel(id string) bool {
	for _, m := range c.AvailableModels {
		if m == id {
			return true
		}
	}
	return false
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if !c.Model.HasModel(c.Model.DefaultModel) {
		log.Printf("Warning: default model %q not in available models, requests must select one explicitly", c.Model.DefaultModel)
	}
	if c.Summarizer.StrideTokens >= c.Summarizer.ChunkTokens {
		log.Printf("Warning: stride_tokens (%d) >= chunk_tokens (%d), overlap will dominate chunks",
			c.Summarizer.StrideTokens, c.Summarizer.ChunkTokens)
	}
	return nil
}
