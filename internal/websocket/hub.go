package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/infrastructure"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/events"
)

// broadcastQueue bounds the events waiting for the hub loop. Publish drops
// events beyond it so a slow subscriber never stalls a reconcile run.
const broadcastQueue = 256

// Hub maintains the set of active clients and fans run events out to them
type Hub struct {
	clients map[*Client]struct{}

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool
	quit    chan struct{}
	done    chan struct{}

	logger *slog.Logger

	activeClients metric.Int64UpDownCounter
	messagesSent  metric.Int64Counter
	dropped       metric.Int64Counter
}

// NewHub creates a hub recording its instruments on meter. A nil meter
// records nothing.
func NewHub(logger *slog.Logger, meter metric.Meter) (*Hub, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(infrastructure.MeterName)
	}

	hub := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}

	var err error
	hub.activeClients, err = meter.Int64UpDownCounter("websocket_clients_active",
		metric.WithDescription("Connected event stream subscribers"))
	if err != nil {
		return nil, err
	}
	hub.messagesSent, err = meter.Int64Counter("websocket_messages_sent_total",
		metric.WithDescription("Events queued to subscribers"))
	if err != nil {
		return nil, err
	}
	hub.dropped, err = meter.Int64Counter("websocket_messages_dropped_total",
		metric.WithDescription("Events dropped because a queue was full"))
	if err != nil {
		return nil, err
	}
	return hub, nil
}

// Start runs the hub loop in the background. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop disconnects every client and waits for the hub loop to exit
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)
	h.mu.Unlock()

	<-h.done
}

// Publish implements events.Publisher. It never blocks: when the queue is
// full the event is dropped and counted.
func (h *Hub) Publish(ctx context.Context, event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.Type)))
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "hub_queue_full")))
		h.logger.WarnContext(ctx, "Event queue full, dropping event",
			slog.String("event_type", string(event.Type)))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client. It returns false when the hub is stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client. Safe to call after Stop.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

func (h *Hub) run() {
	defer close(h.done)
	ctx := context.Background()

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				h.removeLocked(ctx, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.activeClients.Add(ctx, 1)

			h.logger.InfoContext(client.context(), "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))
			h.greet(client)

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				h.removeLocked(ctx, client)
			}
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				h.logger.InfoContext(client.context(), "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))
			}

		case message := <-h.broadcast:
			h.fanOut(ctx, message)
		}
	}
}

// fanOut queues message on every client. A client whose buffer is full is
// disconnected rather than allowed to hold the others back.
func (h *Hub) fanOut(ctx context.Context, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var delivered, failed int
	for client := range h.clients {
		select {
		case client.send <- message:
			delivered++
		default:
			failed++
			h.removeLocked(ctx, client)
			h.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "client_buffer_full")))
			h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}
	h.messagesSent.Add(ctx, int64(delivered))

	h.logger.Debug("Broadcast event",
		slog.Int("delivered", delivered),
		slog.Int("failed", failed),
		slog.Int("message_size", len(message)))
}

// greet tells a new client its id and the protocol version
func (h *Hub) greet(client *Client) {
	event := events.New(events.TypeConnection, "", client.traceID, map[string]interface{}{
		"status":    "connected",
		"client_id": client.id,
		"protocol":  events.ProtocolVersion,
	})
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
		h.logger.Warn("Failed to send connection message, client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeLocked(ctx context.Context, client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.activeClients.Add(ctx, -1)
}
