package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/config"
	apperrors "github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/files"
)

// ValidationMiddleware provides request validation using struct tags
type ValidationMiddleware struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
	maxBodySize  int64
}

// NewValidationMiddleware creates a new validation middleware.
// A non-positive maxBodySize falls back to the configured default.
func NewValidationMiddleware(logger *slog.Logger, errorHandler *apperrors.ErrorHandler, maxBodySize int64) *ValidationMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBodySize <= 0 {
		maxBodySize = config.DefaultMaxBodyBytes
	}
	return &ValidationMiddleware{
		validator:    NewValidator(),
		logger:       logger.With(slog.String("component", "validation_middleware")),
		errorHandler: errorHandler,
		maxBodySize:  maxBodySize,
	}
}

// NewValidator builds a validator with the request tags registered and JSON field names
func NewValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("isodate", isISODate)
	_ = v.RegisterValidation("groupname", isValidGroupName)
	_ = v.RegisterValidation("filename", isValidFilename)
	_ = v.RegisterValidation("docref", isDocumentRef)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateRequest rejects oversized bodies and malformed JSON before the handler runs
func (m *ValidationMiddleware) ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > m.maxBodySize {
			m.errorHandler.HandleError(w, r, m.tooLarge(r.ContentLength))
			return
		}

		if r.Body != nil && r.Body != http.NoBody {
			body, err := io.ReadAll(io.LimitReader(r.Body, m.maxBodySize+1))
			if err != nil {
				m.logger.ErrorContext(r.Context(), "failed to read request body",
					slog.String("error", err.Error()),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				m.errorHandler.HandleError(w, r, apperrors.InvalidRequestWithError(err))
				return
			}
			if int64(len(body)) > m.maxBodySize {
				m.errorHandler.HandleError(w, r, m.tooLarge(int64(len(body))))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))

			if len(body) > 0 && !json.Valid(body) {
				m.errorHandler.HandleError(w, r, apperrors.InvalidJSON())
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (m *ValidationMiddleware) tooLarge(size int64) *apperrors.APIError {
	return apperrors.PayloadTooLarge(m.maxBodySize, size)
}

// ValidateStruct validates a struct and returns validation errors
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apperrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apperrors.NewValidationErrors(validationErrors)
}

// ContentTypeValidator ensures requests with a body declare an allowed content type
func ContentTypeValidator(errorHandler *apperrors.ErrorHandler, contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				errorHandler.HandleError(w, r, apperrors.MissingContentType())
				return
			}

			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			errorHandler.HandleError(w, r, apperrors.UnsupportedMediaType(contentType, contentTypes))
		})
	}
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is not set", field, param)
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD form", field)
	case "groupname":
		return fmt.Sprintf("%s must be a plain folder name", field)
	case "filename":
		return fmt.Sprintf("%s must be a valid filename", field)
	case "docref":
		return fmt.Sprintf("%s must be a group/document reference inside the data directory", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(files.DateLayout, fl.Field().String())
	return err == nil
}

func isValidGroupName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || name == "." || name == ".." || len(name) > 255 {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func isValidFilename(fl validator.FieldLevel) bool {
	filename := fl.Field().String()
	if filename == "" || len(filename) > 255 {
		return false
	}
	return !strings.Contains(filename, "..") && !strings.ContainsAny(filename, `/\`)
}

// isDocumentRef accepts relative slash-separated references without ".."
// elements. The file manager repeats the check against the data directory.
func isDocumentRef(fl validator.FieldLevel) bool {
	ref := fl.Field().String()
	if ref == "" || len(ref) > 512 || strings.HasPrefix(ref, "/") || strings.ContainsAny(ref, "\\:\x00") {
		return false
	}
	for _, elem := range strings.Split(ref, "/") {
		if elem == ".." {
			return false
		}
	}
	return true
}

// QueryParamValidator validates query parameters
type QueryParamValidator struct {
	errorHandler *apperrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(errorHandler *apperrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{errorHandler: errorHandler}
}

// ValidateEnum validates an enum query parameter
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return a, true
		}
	}

	v.errorHandler.HandleError(w, r, apperrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", "))))
	return "", false
}

// ValidateDate validates an optional YYYY-MM-DD query parameter; a missing value yields the zero time
func (v *QueryParamValidator) ValidateDate(w http.ResponseWriter, r *http.Request, param string) (time.Time, bool) {
	value := r.URL.Query().Get(param)
	t, err := files.ParseDateBound(value)
	if err != nil {
		v.errorHandler.HandleError(w, r, apperrors.InvalidDateBound(param, value))
		return time.Time{}, false
	}
	return t, true
}
