package errors

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/shared/testutil"
)

func TestErrorMiddleware_Handler(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		body       string
		wantStatus int
		wantLevel  slog.Level
		wantLogged bool
	}{
		{
			name: "successful request is not logged",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			body:       `{"metric":"Count"}`,
			wantStatus: http.StatusOK,
		},
		{
			name: "client error keeps body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			body:       `{"metric":"Conteo","files":["a.tsv"]}`,
			wantStatus: http.StatusBadRequest,
			wantLevel:  slog.LevelWarn,
			wantLogged: true,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
			wantLevel:  slog.LevelError,
			wantLogged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			mw := NewErrorMiddleware(logger)

			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				seen = string(b)
				tt.handler(w, r)
			})

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/v1/merge", strings.NewReader(tt.body))
			mw.Handler(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.body, seen, "body is replayed to the handler")
			if !tt.wantLogged {
				assert.Equal(t, 0, logHandler.Count())
				return
			}
			records := logHandler.GetRecordsByLevel(tt.wantLevel)
			require.Len(t, records, 1)
			assert.Equal(t, "request failed", records[0].Message)
			if tt.body != "" {
				assert.Contains(t, records[0].Attrs["request_body"], "Conteo")
			}
		})
	}
}

func TestSanitizeRequestBody(t *testing.T) {
	out := sanitizeRequestBody(`{"token":"abc","metric":"Count"}`)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, "[REDACTED]", data["token"])
	assert.Equal(t, "Count", data["metric"])

	assert.Equal(t, "not json", sanitizeRequestBody("not json"))
}
