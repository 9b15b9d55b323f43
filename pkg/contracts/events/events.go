// Package events defines the run events streamed to WebSocket subscribers
package events

import (
	"context"
	"time"
)

// ProtocolVersion is sent in the connection greeting
const ProtocolVersion = "1.0"

// Type names an event on the stream
type Type string

const (
	TypeConnection      Type = "connection"
	TypeRunStarted      Type = "run:started"
	TypeRunCompleted    Type = "run:completed"
	TypeRunFailed       Type = "run:failed"
	TypeDocumentSkipped Type = "document:skipped"
)

// Event is one message on the stream. Data carries type-specific fields.
type Event struct {
	Type      Type                   `json:"type"`
	Operation string                 `json:"operation,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// New stamps an event with the current time
func New(t Type, operation, traceID string, data map[string]interface{}) Event {
	return Event{
		Type:      t,
		Operation: operation,
		TraceID:   traceID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Publisher receives run events. Implementations must not block the caller.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Discard drops every event
type Discard struct{}

// Publish implements Publisher
func (Discard) Publish(context.Context, Event) {}
