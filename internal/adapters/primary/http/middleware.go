package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"summarizer-worker/pkg/logger"
	"summarizer-worker/pkg/metrics"
)

// RequestLogging attaches a request ID, logs the request and records
// HTTP metrics once the handler chain finishes.
func RequestLogging(log *logger.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("X-Request-ID", requestID)
		c.SetUserContext(logger.WithRequestID(c.UserContext(), requestID))

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		m.RecordHTTPRequest(c.Method(), c.Route().Path, strconv.Itoa(status),
			duration, int64(len(c.Response().Body())))
		log.LogRequest(c.UserContext(), c.Method(), c.Path(), c.Get("User-Agent"), c.IP(), duration)

		return err
	}
}
