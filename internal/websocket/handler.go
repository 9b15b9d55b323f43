package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	apperrors "github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/infrastructure"
)

// Handler upgrades requests to the run event stream
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	allowed  map[string]struct{}
	logger   *slog.Logger
}

// NewHandler serves hub to same-host browsers and to allowedOrigins
func NewHandler(hub *Hub, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		hub:     hub,
		allowed: make(map[string]struct{}, len(allowedOrigins)),
		logger:  logger.With(slog.String("component", "websocket.handler")),
	}
	for _, o := range allowedOrigins {
		h.allowed[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
		Error:           h.upgradeError,
	}
	return h
}

// ServeHTTP handles GET /api/v1/events
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetReqID(r.Context())
	ctx := infrastructure.WithTraceID(r.Context(), traceID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgradeError already answered
		return
	}

	client := NewClient(h.hub, NewConnectionWrapper(conn), traceID, h.logger)
	if !h.hub.Register(client) {
		h.logger.WarnContext(ctx, "Event stream closed, rejecting subscriber")
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// checkOrigin accepts requests without an Origin header, same-host origins
// and configured origins
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	if _, ok := h.allowed[strings.TrimRight(strings.ToLower(origin), "/")]; ok {
		return true
	}

	h.logger.WarnContext(r.Context(), "WebSocket origin not allowed",
		slog.String("origin", origin),
		slog.String("host", r.Host))
	return false
}

// upgradeError answers a failed upgrade with an RFC 7807 problem
func (h *Handler) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	problemType := apperrors.TypeValidation
	if status == http.StatusForbidden {
		problemType = apperrors.TypeForbidden
	}
	problem := apperrors.NewProblemDetails(status, problemType, http.StatusText(status), reason.Error(), r.URL.Path)
	if traceID := middleware.GetReqID(r.Context()); traceID != "" {
		problem = problem.WithExtension("trace_id", traceID)
	}

	h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
		slog.Int("status", status),
		slog.String("reason", reason.Error()))

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem)
}
