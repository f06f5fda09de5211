// Package http exposes the summarizer over a fiber HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"summarizer-worker/internal/core/domain"
	"summarizer-worker/internal/core/ports"
	apperrors "summarizer-worker/pkg/errors"
	"summarizer-worker/pkg/validator"
)

// SummarizeHandler handles HTTP requests for summarization operations
type SummarizeHandler struct {
	service   ports.SummarizerService
	queue     ports.Queue
	validator *validator.Validator
}

// NewSummarizeHandler creates a new summarize handler. queue may be
// nil; async requests then fail with a configuration error.
func NewSummarizeHandler(service ports.SummarizerService, queue ports.Queue, v *validator.Validator) *SummarizeHandler {
	return &SummarizeHandler{
		service:   service,
		queue:     queue,
		validator: v,
	}
}

// SummarizeRequest is the JSON body of a summarize call. Generation
// parameters not present in the body keep their defaults.
type SummarizeRequest struct {
	Text        string   `json:"text"`
	Model       string   `json:"model,omitempty"`
	MaxLength   *int     `json:"max_length,omitempty"`
	MinLength   *int     `json:"min_length,omitempty"`
	NumBeams    *int     `json:"num_beams,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	DoSample    *bool    `json:"do_sample,omitempty"`
	SkipCache   bool     `json:"skip_cache,omitempty"`
	Async       bool     `json:"async,omitempty"`
}

// toDomain merges the request over the default generation parameters
func (r *SummarizeRequest) toDomain() domain.SummaryRequest {
	params := domain.DefaultGenerationParams()
	if r.MaxLength != nil {
		params.MaxLength = *r.MaxLength
	}
	if r.MinLength != nil {
		params.MinLength = *r.MinLength
	}
	if r.NumBeams != nil {
		params.NumBeams = *r.NumBeams
	}
	if r.Temperature != nil {
		params.Temperature = *r.Temperature
	}
	if r.TopP != nil {
		params.TopP = *r.TopP
	}
	if r.DoSample != nil {
		params.DoSample = *r.DoSample
	}

	return domain.SummaryRequest{
		Text:      r.Text,
		Model:     r.Model,
		Params:    params,
		SkipCache: r.SkipCache,
	}
}

// Summarize handles POST /api/v1/summarize
func (h *SummarizeHandler) Summarize(c *fiber.Ctx) error {
	var req SummarizeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body: " + err.Error())
	}

	domainReq := req.toDomain()
	if err := h.validator.ValidateStruct(domainReq.Params); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	if req.Async {
		return h.enqueue(c, domainReq)
	}

	result, err := h.service.Summarize(c.UserContext(), domainReq)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// SummarizeFile handles POST /api/v1/summarize/file with a multipart
// upload. The file lands in a temp path that is removed after the
// call.
func (h *SummarizeHandler) SummarizeFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("No file provided")
	}

	var req SummarizeRequest
	if raw := c.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return apperrors.NewValidationError("Invalid options: " + err.Error())
		}
	}

	domainReq := req.toDomain()
	if err := h.validator.ValidateStruct(domainReq.Params); err != nil {
		return apperrors.NewValidationError(err.Error())
	}

	tempPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("summarize-%s%s", uuid.New().String(), filepath.Ext(file.Filename)))
	if err := c.SaveFile(file, tempPath); err != nil {
		return apperrors.NewInternalError("Failed to store uploaded file")
	}
	defer os.Remove(tempPath)

	result, err := h.service.SummarizeFile(c.UserContext(), tempPath, domainReq)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Models handles GET /api/v1/models
func (h *SummarizeHandler) Models(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"models": h.service.Models(),
	})
}

// SelectModelRequest is the body of a model selection call
type SelectModelRequest struct {
	Model string `json:"model" validate:"required"`
}

// SelectModel handles POST /api/v1/models/select
func (h *SummarizeHandler) SelectModel(c *fiber.Ctx) error {
	var req SelectModelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body: " + err.Error())
	}
	if req.Model == "" {
		return apperrors.NewValidationError("Model is required")
	}

	if err := h.service.SelectModel(req.Model); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"model":   req.Model,
	})
}

// GetJob handles GET /api/v1/jobs/:jobId
func (h *SummarizeHandler) GetJob(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return apperrors.NewValidationError("Job ID is required")
	}
	if h.queue == nil {
		return apperrors.NewConfigurationError("Async processing is not enabled")
	}

	job, err := h.queue.Get(c.UserContext(), jobID)
	if err != nil {
		return apperrors.NewNotFoundError("Job")
	}
	return c.JSON(job)
}

// QueueStats handles GET /api/v1/stats/queue
func (h *SummarizeHandler) QueueStats(c *fiber.Ctx) error {
	if h.queue == nil {
		return apperrors.NewConfigurationError("Async processing is not enabled")
	}

	depth, err := h.queue.Depth(c.UserContext())
	if err != nil {
		return apperrors.NewQueueError("Failed to get queue stats")
	}
	return c.JSON(fiber.Map{
		"pending": depth,
	})
}

func (h *SummarizeHandler) enqueue(c *fiber.Ctx, req domain.SummaryRequest) error {
	if h.queue == nil {
		return apperrors.NewConfigurationError("Async processing is not enabled")
	}

	job := &ports.SummarizeJob{
		ID:      uuid.New().String(),
		Request: req,
	}
	if err := h.queue.Enqueue(c.UserContext(), job); err != nil {
		return apperrors.NewQueueError("Failed to enqueue job: " + err.Error())
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// SetupRoutes configures the HTTP routes
func (h *SummarizeHandler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/summarize", h.Summarize)
	api.Post("/summarize/file", h.SummarizeFile)

	models := api.Group("/models")
	models.Get("/", h.Models)
	models.Post("/select", h.SelectModel)

	jobs := api.Group("/jobs")
	jobs.Get("/:jobId", h.GetJob)

	api.Get("/stats/queue", h.QueueStats)
}

// ErrorHandler maps structured errors onto their HTTP status and the
// shared error envelope. It is installed as the fiber app error
// handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.HTTPStatus).JSON(apperrors.NewErrorResponse(appErr))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"message": fiberErr.Message},
		})
	}

	internal := apperrors.NewInternalError("Internal server error")
	return c.Status(internal.HTTPStatus).JSON(apperrors.NewErrorResponse(internal))
}
