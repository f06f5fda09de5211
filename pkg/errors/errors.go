package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ValidationError    ErrorType = "validation_error"
	GenerationFailure  ErrorType = "generation_error"
	InternalError      ErrorType = "internal_error"
	NotFoundError      ErrorType = "not_found_error"
	RateLimitError     ErrorType = "rate_limit_error"
	ResourceError      ErrorType = "resource_error"
	ConfigurationError ErrorType = "configuration_error"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"http_status"`
	Timestamp  time.Time              `json:"timestamp"`
	File       string                 `json:"file,omitempty"`
	Line       int                    `json:"line,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	InnerError error                  `json:"-"` // Not serialized
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the inner error
func (e *AppError) Unwrap() error {
	return e.InnerError
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new AppError
func New(errType ErrorType, code, message string) *AppError {
	err := &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(errType),
		Timestamp:  time.Now(),
	}

	if _, file, line, ok := runtime.Caller(1); ok {
		err.File = file
		err.Line = line
	}

	return err
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, code, message string) *AppError {
	appErr := New(errType, code, message)
	appErr.InnerError = err
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// Newf creates a new AppError with formatted message
func Newf(errType ErrorType, code, format string, args ...interface{}) *AppError {
	return New(errType, code, fmt.Sprintf(format, args...))
}

// Summarizer error constructors

// NewEmptyInputError reports input text that is empty after cleaning
func NewEmptyInputError() *AppError {
	return New(ValidationError, "EMPTY_INPUT", "Input text is empty after cleaning")
}

// NewInputTooLargeError reports cleaned input exceeding the character limit
func NewInputTooLargeError(limit, actual int) *AppError {
	return Newf(ValidationError, "INPUT_TOO_LARGE",
		"Input text exceeds %d characters, got %d", limit, actual).
		WithContext("max_input_chars", limit).
		WithContext("input_chars", actual)
}

// NewModelNotAvailableError reports a model identifier outside the configured set
func NewModelNotAvailableError(model string, available []string) *AppError {
	return Newf(NotFoundError, "MODEL_NOT_AVAILABLE",
		"Model %q is not in the available model set", model).
		WithContext("available_models", available)
}

// NewUnsupportedFormatError reports a file extension the extractor cannot handle
func NewUnsupportedFormatError(ext string) *AppError {
	return Newf(ValidationError, "UNSUPPORTED_FORMAT", "Unsupported file format: %s", ext)
}

// NewGenerationError reports a failure from the generation or tokenization capability
func NewGenerationError(stage string, err error) *AppError {
	return Wrap(err, GenerationFailure, "GENERATION_FAILED",
		fmt.Sprintf("Generation failed during %s", stage)).
		WithContext("stage", stage)
}

// Generic constructors kept for adapters

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return New(ValidationError, "VALIDATION_FAILED", message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return New(InternalError, "INTERNAL_ERROR", message)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return New(NotFoundError, "NOT_FOUND", fmt.Sprintf("%s not found", resource))
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(message string) *AppError {
	return New(RateLimitError, "RATE_LIMIT_EXCEEDED", message)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(message string) *AppError {
	return New(ConfigurationError, "CONFIGURATION_ERROR", message)
}

// NewQueueError creates a queue error
func NewQueueError(message string) *AppError {
	return New(ResourceError, "QUEUE_ERROR", message)
}

// NewCacheError creates a cache error
func NewCacheError(message string) *AppError {
	return New(ResourceError, "CACHE_ERROR", message)
}

// ErrorResponse is the error envelope returned by the HTTP API
type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Success bool      `json:"success"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *AppError) *ErrorResponse {
	return &ErrorResponse{
		Error:   err,
		Success: false,
	}
}

// getHTTPStatus maps error types to HTTP status codes
func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case GenerationFailure:
		return http.StatusBadGateway
	case NotFoundError:
		return http.StatusNotFound
	case RateLimitError:
		return http.StatusTooManyRequests
	case ResourceError:
		return http.StatusServiceUnavailable
	case ConfigurationError, InternalError:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsCode checks if the error has a specific code
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetHTTPStatus returns the HTTP status code for an error
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
