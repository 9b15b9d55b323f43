package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Request-level error codes. Reconciliation failures are typed errors (see
// reconcile_errors.go) and never use these.
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeMissingParameter     = "MISSING_PARAMETER"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
)

// APIError is a rejected request, raised before any document is read
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every rejected field of a request body
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message, Details: details}
}

// InvalidRequestWithError reports a body that could not be decoded
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// InvalidJSON reports a body that is not JSON at all
func InvalidJSON() *APIError {
	return New(http.StatusBadRequest, CodeInvalidRequest, "Request body contains invalid JSON")
}

// ErrValidation rejects a single field or query parameter
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// InvalidDateBound rejects a from/to document date filter
func InvalidDateBound(param, value string) *APIError {
	return ErrValidation(param, fmt.Sprintf("%s must be a date in YYYY-MM-DD form, got %q", param, value))
}

// NewValidationErrors rejects several fields of one request body
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationErrors{Errors: errs})
}

// PayloadTooLarge rejects a selection body over the configured limit
func PayloadTooLarge(maxSize, size int64) *APIError {
	return NewWithDetails(http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
		"Request body exceeds maximum allowed size",
		map[string]interface{}{"max_size": maxSize, "size": size})
}

// MissingContentType rejects a body sent without a Content-Type header
func MissingContentType() *APIError {
	return New(http.StatusBadRequest, CodeMissingParameter, "Content-Type header is required")
}

// UnsupportedMediaType rejects a body whose content type is not allowed
func UnsupportedMediaType(contentType string, allowed []string) *APIError {
	return NewWithDetails(http.StatusUnsupportedMediaType, CodeUnsupportedMediaType, "Unsupported content type",
		map[string]interface{}{"content_type": contentType, "allowed": allowed})
}
