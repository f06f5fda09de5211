package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"summarizer-worker/internal/core/domain"
	"summarizer-worker/internal/core/ports"
	apperrors "summarizer-worker/pkg/errors"
	"summarizer-worker/pkg/logger"
	"summarizer-worker/pkg/metrics"
	"summarizer-worker/pkg/validator"
)

type stubService struct {
	lastCtx  context.Context
	lastReq  domain.SummaryRequest
	lastPath string
	result   *domain.SummaryResult
	err      error
	models   []domain.ModelInfo
}

func (s *stubService) Summarize(ctx context.Context, req domain.SummaryRequest) (*domain.SummaryResult, error) {
	s.lastCtx = ctx
	s.lastReq = req
	return s.result, s.err
}

func (s *stubService) SummarizeFile(_ context.Context, path string, req domain.SummaryRequest) (*domain.SummaryResult, error) {
	s.lastPath = path
	s.lastReq = req
	return s.result, s.err
}

func (s *stubService) Models() []domain.ModelInfo { return s.models }

func (s *stubService) SelectModel(modelID string) error {
	for _, m := range s.models {
		if m.ID == modelID {
			return nil
		}
	}
	return apperrors.NewModelNotAvailableError(modelID, nil)
}

type stubQueue struct {
	jobs     map[string]*ports.SummarizeJob
	enqueued []*ports.SummarizeJob
	depth    int64
}

func newStubQueue() *stubQueue {
	return &stubQueue{jobs: map[string]*ports.SummarizeJob{}}
}

func (q *stubQueue) Enqueue(_ context.Context, job *ports.SummarizeJob) error {
	job.Status = ports.JobStatusPending
	q.jobs[job.ID] = job
	q.enqueued = append(q.enqueued, job)
	return nil
}

func (q *stubQueue) Dequeue(context.Context) (*ports.SummarizeJob, error) {
	return nil, fmt.Errorf("empty")
}

func (q *stubQueue) Complete(context.Context, string, *domain.SummaryResult) error { return nil }
func (q *stubQueue) Fail(context.Context, string, string) error                    { return nil }

func (q *stubQueue) Get(_ context.Context, jobID string) (*ports.SummarizeJob, error) {
	if job, ok := q.jobs[jobID]; ok {
		return job, nil
	}
	return nil, fmt.Errorf("job not found")
}

func (q *stubQueue) Depth(context.Context) (int64, error) { return q.depth, nil }
func (q *stubQueue) Close() error                         { return nil }

func newTestApp(svc ports.SummarizerService, q ports.Queue) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	handler := NewSummarizeHandler(svc, q, validator.New())
	handler.SetupRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var parsed map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp.StatusCode, parsed
}

func TestSummarizeEndpoint(t *testing.T) {
	svc := &stubService{result: &domain.SummaryResult{
		Summary:    "A summary.",
		Model:      "flan-t5-base",
		Path:       domain.PathShort,
		ChunkCount: 1,
	}}
	app := newTestApp(svc, newStubQueue())

	status, body := postJSON(t, app, "/api/v1/summarize", map[string]interface{}{
		"text": "Cats are mammals. Dogs are mammals too.",
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "A summary.", body["summary"])
	assert.Equal(t, "short", body["path"])

	// defaults flow through when the body omits parameters
	assert.Equal(t, domain.DefaultGenerationParams(), svc.lastReq.Params)
}

func TestSummarizeEndpointParamOverrides(t *testing.T) {
	svc := &stubService{result: &domain.SummaryResult{Summary: "S"}}
	app := newTestApp(svc, newStubQueue())

	status, _ := postJSON(t, app, "/api/v1/summarize", map[string]interface{}{
		"text":        "Some text.",
		"max_length":  200,
		"do_sample":   true,
		"temperature": 0.7,
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 200, svc.lastReq.Params.MaxLength)
	assert.True(t, svc.lastReq.Params.DoSample)
	assert.InDelta(t, 0.7, svc.lastReq.Params.Temperature, 1e-9)
	// untouched params keep defaults
	assert.Equal(t, 30, svc.lastReq.Params.MinLength)
}

func TestSummarizeEndpointInvalidParams(t *testing.T) {
	svc := &stubService{result: &domain.SummaryResult{Summary: "S"}}
	app := newTestApp(svc, newStubQueue())

	status, body := postJSON(t, app, "/api/v1/summarize", map[string]interface{}{
		"text":       "Some text.",
		"max_length": -5,
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestSummarizeEndpointDomainErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        *apperrors.AppError
		wantStatus int
		wantCode   string
	}{
		{"empty input", apperrors.NewEmptyInputError(), fiber.StatusBadRequest, "EMPTY_INPUT"},
		{"too large", apperrors.NewInputTooLargeError(100, 200), fiber.StatusBadRequest, "INPUT_TOO_LARGE"},
		{"model missing", apperrors.NewModelNotAvailableError("x", nil), fiber.StatusNotFound, "MODEL_NOT_AVAILABLE"},
		{"generation failed", apperrors.NewGenerationError("chunk", fmt.Errorf("down")), fiber.StatusBadGateway, "GENERATION_FAILED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&stubService{err: tc.err}, newStubQueue())
			status, body := postJSON(t, app, "/api/v1/summarize", map[string]interface{}{
				"text": "Some text.",
			})

			assert.Equal(t, tc.wantStatus, status)
			errBody, ok := body["error"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, tc.wantCode, errBody["code"])
		})
	}
}

func TestSummarizeCarriesRequestID(t *testing.T) {
	svc := &stubService{result: &domain.SummaryResult{Summary: "S"}}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestLogging(logger.Get(), metrics.Get()))
	handler := NewSummarizeHandler(svc, newStubQueue(), validator.New())
	handler.SetupRoutes(app)

	data, err := json.Marshal(map[string]interface{}{"text": "Some text."})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/summarize", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-42")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, svc.lastCtx)
	assert.Equal(t, "req-42", svc.lastCtx.Value(logger.RequestIDKey))
}

func TestSummarizeAsync(t *testing.T) {
	q := newStubQueue()
	app := newTestApp(&stubService{}, q)

	status, body := postJSON(t, app, "/api/v1/summarize", map[string]interface{}{
		"text":  "Some text.",
		"async": true,
	})

	assert.Equal(t, fiber.StatusAccepted, status)
	require.Len(t, q.enqueued, 1)
	assert.Equal(t, q.enqueued[0].ID, body["job_id"])
	assert.Equal(t, "pending", body["status"])
}

func TestSummarizeFileEndpoint(t *testing.T) {
	svc := &stubService{result: &domain.SummaryResult{Summary: "File summary."}}
	app := newTestApp(svc, newStubQueue())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "input.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Cats are mammals."))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/summarize/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.True(t, strings.HasSuffix(svc.lastPath, ".txt"))
}

func TestModelsEndpoints(t *testing.T) {
	svc := &stubService{models: []domain.ModelInfo{
		{ID: "flan-t5-base", Active: true},
		{ID: "bart-large-cnn"},
	}}
	app := newTestApp(svc, newStubQueue())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/models/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	status, _ := postJSON(t, app, "/api/v1/models/select", map[string]interface{}{
		"model": "bart-large-cnn",
	})
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = postJSON(t, app, "/api/v1/models/select", map[string]interface{}{
		"model": "gpt-7",
	})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = postJSON(t, app, "/api/v1/models/select", map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetJobEndpoint(t *testing.T) {
	q := newStubQueue()
	q.jobs["job-1"] = &ports.SummarizeJob{ID: "job-1", Status: ports.JobStatusCompleted}
	app := newTestApp(&stubService{}, q)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/jobs/job-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/jobs/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestQueueStatsEndpoint(t *testing.T) {
	q := newStubQueue()
	q.depth = 7
	app := newTestApp(&stubService{}, q)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/stats/queue", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(7), body["pending"])
}
