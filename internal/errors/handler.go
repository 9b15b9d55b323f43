package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem types shared by every endpoint (RFC 7807 "type" members)
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeTimeout          = "/errors/timeout"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeUnsupportedMedia = "/errors/unsupported-media-type"
	TypeForbidden        = "/errors/forbidden"
)

// Reconciliation problem types
const (
	TypeUnknownMetric    = "/errors/reconcile/unknown-metric"
	TypeArgumentCount    = "/errors/reconcile/argument-count"
	TypeSchemaResolution = "/errors/reconcile/schema-resolution"
	TypeMetricColumn     = "/errors/reconcile/metric-column-not-found"
	TypeDataNotFound     = "/errors/data/not-found"
	TypeDataCorrupted    = "/errors/data/corrupted"
)

// ErrorHandler renders every handler error as a problem document
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates an error handler. includeStack adds the goroutine
// stack to each problem and is meant for development only.
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts err to RFC 7807 format and responds. Client errors
// are logged at warn level, everything else at error level.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelError
	if problem.Status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	if file, ok := FailedFile(err); ok {
		attrs = append(attrs, slog.String("file", file))
	}
	h.logger.LogAttrs(r.Context(), level, "request failed", attrs...)

	if h.includeStack {
		problem.WithExtension("stack", stackTrace())
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	if problem, ok := reconcileErrorToProblem(err, r.URL.Path); ok {
		return problem
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return h.appErrorToProblem(appErr, r)
	}

	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			TypePayloadTooLarge,
			"Payload Too Large",
			fmt.Sprintf("The request body exceeds the maximum allowed size of %d bytes", maxBytes.Limit),
			r.URL.Path,
		)

	case errors.Is(err, fs.ErrNotExist):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeDataNotFound,
			"Document Not Found",
			err.Error(),
			r.URL.Path,
		)

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request",
			r.URL.Path,
		)
	}
}

func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case CodeValidationFailed, CodeInvalidRequest, CodeMissingParameter:
		problemType = TypeValidation
	case CodePayloadTooLarge:
		problemType = TypePayloadTooLarge
	case CodeUnsupportedMediaType:
		problemType = TypeUnsupportedMedia
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

func (h *ErrorHandler) appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	status, problemType := http.StatusInternalServerError, TypeInternal
	switch appErr.Type {
	case ErrTypeValidation:
		status, problemType = http.StatusBadRequest, TypeValidation
	case ErrTypeNotFound:
		status, problemType = http.StatusNotFound, TypeNotFound
	case ErrTypeParsing:
		status, problemType = http.StatusUnprocessableEntity, TypeDataCorrupted
	}

	problem := NewProblemDetails(status, problemType, http.StatusText(status), appErr.Error(), r.URL.Path).
		WithExtension("error_type", string(appErr.Type))
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

// NotFound answers unknown routes
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed answers known routes called with the wrong method
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeValidation,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

func stackTrace() string {
	buf := make([]byte, 8<<10)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
