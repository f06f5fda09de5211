// Package health reports readiness of the summarizer's dependencies.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"summarizer-worker/config"
	"summarizer-worker/internal/core/ports"
)

// TokenizerCheck is the slice of the tokenizer the checker needs
type TokenizerCheck interface {
	Init() error
	Encoding() string
}

// HealthChecker aggregates dependency checks into one status
type HealthChecker struct {
	config    *config.Config
	queue     ports.Queue
	provider  ports.ModelProvider
	tokenizer TokenizerCheck

	serviceMutex     sync.Mutex
	cachedServices   map[string]ServiceInfo
	lastServiceCheck time.Time
	serviceCheckTTL  time.Duration
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Services  map[string]ServiceInfo `json:"services"`
	Queue     QueueInfo              `json:"queue"`
	System    SystemInfo             `json:"system"`
}

type ServiceInfo struct {
	Status    string `json:"status"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
}

type QueueInfo struct {
	Connected bool   `json:"connected"`
	Depth     int64  `json:"depth"`
	Error     string `json:"error,omitempty"`
}

type SystemInfo struct {
	Environment string `json:"environment"`
	Provider    string `json:"provider"`
}

var startTime = time.Now()

// NewHealthChecker creates a checker. queue may be nil when the async
// surface is disabled; its check then reports unavailable.
func NewHealthChecker(cfg *config.Config, q ports.Queue, provider ports.ModelProvider, tok TokenizerCheck) *HealthChecker {
	return &HealthChecker{
		config:          cfg,
		queue:           q,
		provider:        provider,
		tokenizer:       tok,
		cachedServices:  make(map[string]ServiceInfo),
		serviceCheckTTL: 5 * time.Minute,
	}
}

// GetHealthStatus runs all checks and derives the overall status.
// Degraded model or tokenizer checks keep the service up; a lost queue
// makes it unhealthy.
func (h *HealthChecker) GetHealthStatus() HealthStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:    "healthy",
		Version:   "1.0.0",
		Timestamp: time.Now(),
		Uptime:    time.Since(startTime).String(),
		Services:  make(map[string]ServiceInfo),
		System: SystemInfo{
			Environment: h.config.Server.Environment,
			Provider:    h.config.Model.Provider,
		},
	}

	h.checkServicesWithCache(&status)
	h.checkQueue(ctx, &status)

	for _, service := range status.Services {
		if !service.Available {
			status.Status = "degraded"
		}
	}

	if !status.Queue.Connected {
		status.Status = "unhealthy"
	}

	return status
}

// checkServicesWithCache serves concurrent health requests, so the
// cache refresh happens under the mutex.
func (h *HealthChecker) checkServicesWithCache(status *HealthStatus) {
	h.serviceMutex.Lock()
	defer h.serviceMutex.Unlock()

	if time.Since(h.lastServiceCheck) > h.serviceCheckTTL || len(h.cachedServices) == 0 {
		h.refreshServiceCache()
		h.lastServiceCheck = time.Now()
	}

	for name, service := range h.cachedServices {
		status.Services[name] = service
	}
}

func (h *HealthChecker) refreshServiceCache() {
	services := make(map[string]ServiceInfo)
	services["tokenizer"] = h.checkTokenizer()
	services["model"] = h.checkModel()
	h.cachedServices = services
}

func (h *HealthChecker) checkTokenizer() ServiceInfo {
	if h.tokenizer == nil {
		return ServiceInfo{Status: "unavailable", Available: false, Error: "tokenizer not initialized"}
	}
	if err := h.tokenizer.Init(); err != nil {
		return ServiceInfo{Status: "unavailable", Available: false, Error: err.Error()}
	}
	return ServiceInfo{Status: "available", Available: true, Detail: h.tokenizer.Encoding()}
}

func (h *HealthChecker) checkModel() ServiceInfo {
	if h.provider == nil {
		return ServiceInfo{Status: "unavailable", Available: false, Error: "model provider not initialized"}
	}

	models := h.provider.Models()
	if len(models) == 0 {
		return ServiceInfo{Status: "unavailable", Available: false, Error: "no models configured"}
	}

	active := ""
	for _, m := range models {
		if m.Active {
			active = m.ID
			break
		}
	}
	if _, err := h.provider.Generator(active); err != nil {
		return ServiceInfo{Status: "unavailable", Available: false, Error: err.Error()}
	}
	return ServiceInfo{Status: "available", Available: true, Detail: active}
}

func (h *HealthChecker) checkQueue(ctx context.Context, status *HealthStatus) {
	if h.queue == nil {
		status.Queue = QueueInfo{
			Connected: false,
			Error:     "queue not initialized",
		}
		return
	}

	queueCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	depth, err := h.queue.Depth(queueCtx)
	if err != nil {
		status.Queue = QueueInfo{
			Connected: false,
			Error:     err.Error(),
		}
		return
	}

	status.Queue = QueueInfo{
		Connected: true,
		Depth:     depth,
	}
}

// Fiber handlers

func (h *HealthChecker) HealthHandler(c *fiber.Ctx) error {
	health := h.GetHealthStatus()

	var statusCode int
	switch health.Status {
	case "healthy", "degraded":
		statusCode = fiber.StatusOK
	case "unhealthy":
		statusCode = fiber.StatusServiceUnavailable
	default:
		statusCode = fiber.StatusInternalServerError
	}

	return c.Status(statusCode).JSON(health)
}

func (h *HealthChecker) ReadinessHandler(c *fiber.Ctx) error {
	health := h.GetHealthStatus()

	if !health.Queue.Connected {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not_ready",
			"reason": "queue not available",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

func (h *HealthChecker) LivenessHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "alive",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	})
}
