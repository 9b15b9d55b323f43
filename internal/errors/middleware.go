package errors

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorMiddleware logs failed requests together with the body that caused
// them, so a rejected merge can be replayed from the log. Successful requests
// are left to the access logger.
type ErrorMiddleware struct {
	logger      *slog.Logger
	maxBodyLog  int
	maxBodyKeep int64
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorMiddleware{
		logger:      logger.With(slog.String("component", "error_middleware")),
		maxBodyLog:  500,
		maxBodyKeep: 1 << 20,
	}
}

// Handler returns the middleware handler function
func (m *ErrorMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		// Selection bodies list document paths; keep them for 4xx/5xx logs
		var requestBody []byte
		if r.Body != nil && r.ContentLength > 0 && r.ContentLength < m.maxBodyKeep {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status < http.StatusBadRequest {
			return
		}

		logLevel := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			logLevel = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		}
		if r.URL.RawQuery != "" {
			attrs = append(attrs, slog.String("query", r.URL.RawQuery))
		}
		if len(requestBody) > 0 {
			bodyStr := sanitizeRequestBody(string(requestBody))
			if len(bodyStr) > m.maxBodyLog {
				bodyStr = bodyStr[:m.maxBodyLog] + "..."
			}
			attrs = append(attrs, slog.String("request_body", bodyStr))
		}

		m.logger.LogAttrs(r.Context(), logLevel, "request failed", attrs...)
	})
}

// sanitizeRequestBody removes sensitive data from request body for logging
func sanitizeRequestBody(body string) string {
	// Parse as JSON if possible
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err == nil {
		sensitiveFields := []string{"password", "token", "secret", "api_key", "apiKey"}

		for _, field := range sensitiveFields {
			if _, exists := data[field]; exists {
				data[field] = "[REDACTED]"
			}
		}

		sanitized, _ := json.Marshal(data)
		return string(sanitized)
	}

	return body
}
