package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/shared/testutil"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/events"
)

// fakeConn is an in-memory Connection
type fakeConn struct {
	mu        sync.Mutex
	written   [][]byte
	reads     chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan []byte, 4), closed: make(chan struct{})}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closed:
		return websocket.ErrCloseSent
	default:
	}
	if messageType == websocket.TextMessage {
		c.mu.Lock()
		c.written = append(c.written, append([]byte(nil), data...))
		c.mu.Unlock()
	}
	return nil
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case m := <-c.reads:
		return websocket.TextMessage, m, nil
	case <-c.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetReadLimit(int64)                {}
func (c *fakeConn) SetPongHandler(func(string) error) {}
func (c *fakeConn) RemoteAddr() string                { return "10.0.0.1:5000" }

func (c *fakeConn) messages() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Event, 0, len(c.written))
	for _, w := range c.written {
		var e events.Event
		if json.Unmarshal(w, &e) == nil {
			out = append(out, e)
		}
	}
	return out
}

func newTestHub(t *testing.T, meter *sdkmetric.MeterProvider) *Hub {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	var hub *Hub
	var err error
	if meter != nil {
		hub, err = NewHub(logger, meter.Meter("test"))
	} else {
		hub, err = NewHub(logger, nil)
	}
	require.NoError(t, err)
	return hub
}

func receive(t *testing.T, c *Client) events.Event {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var e events.Event
		require.NoError(t, json.Unmarshal(payload, &e))
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return events.Event{}
	}
}

func TestHub_RegisterGreetsAndBroadcasts(t *testing.T) {
	hub := newTestHub(t, nil)
	hub.Start()
	defer hub.Stop()

	a := NewClient(hub, newFakeConn(), "trace-a", nil)
	b := NewClient(hub, newFakeConn(), "", nil)
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))

	greeting := receive(t, a)
	assert.Equal(t, events.TypeConnection, greeting.Type)
	assert.Equal(t, a.ID(), greeting.Data["client_id"])
	assert.Equal(t, "trace-a", greeting.TraceID)
	receive(t, b)
	assert.Equal(t, 2, hub.ClientCount())

	hub.Publish(context.Background(), events.New(events.TypeRunStarted, "merge", "t1", map[string]interface{}{"metric": "Count"}))

	for _, c := range []*Client{a, b} {
		e := receive(t, c)
		assert.Equal(t, events.TypeRunStarted, e.Type)
		assert.Equal(t, "merge", e.Operation)
		assert.Equal(t, "Count", e.Data["metric"])
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := newTestHub(t, nil)
	hub.Start()
	defer hub.Stop()

	c := NewClient(hub, newFakeConn(), "", nil)
	require.True(t, hub.Register(c))
	receive(t, c)

	hub.Unregister(c)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	_, ok := <-c.send
	assert.False(t, ok)

	// a second unregister is ignored
	hub.Unregister(c)
}

func TestHub_SlowClientIsDisconnected(t *testing.T) {
	hub := newTestHub(t, nil)
	hub.Start()
	defer hub.Stop()

	slow := NewClient(hub, newFakeConn(), "", nil)
	require.True(t, hub.Register(slow))

	// greeting plus fillers leave no room
	for i := 1; i < sendBuffer; i++ {
		slow.send <- []byte(`{}`)
	}
	hub.Publish(context.Background(), events.New(events.TypeRunCompleted, "pivot", "", nil))

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	// not started, so nothing drains the queue
	hub := newTestHub(t, provider)

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastQueue+10; i++ {
			hub.Publish(context.Background(), events.New(events.TypeRunStarted, "merge", "", nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.Equal(t, int64(10), counterValue(t, rm, "websocket_messages_dropped_total"))
}

func TestHub_StopDisconnectsClients(t *testing.T) {
	hub := newTestHub(t, nil)
	hub.Start()

	conn := newFakeConn()
	c := NewClient(hub, conn, "", nil)
	require.True(t, hub.Register(c))
	go c.WritePump()
	go c.ReadPump()

	assert.Eventually(t, func() bool { return len(conn.messages()) == 1 }, time.Second, 10*time.Millisecond)

	hub.Stop()
	hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.Register(NewClient(hub, newFakeConn(), "", nil)))
	select {
	case <-conn.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("connection not closed")
	}
}

func TestClient_PumpsDeliverEvents(t *testing.T) {
	hub := newTestHub(t, nil)
	hub.Start()
	defer hub.Stop()

	conn := newFakeConn()
	c := NewClient(hub, conn, "", nil)
	require.True(t, hub.Register(c))
	go c.WritePump()
	go c.ReadPump()

	hub.Publish(context.Background(), events.New(events.TypeDocumentSkipped, "pivot", "", map[string]interface{}{"file": "nogrp.tsv"}))

	assert.Eventually(t, func() bool { return len(conn.messages()) == 2 }, time.Second, 10*time.Millisecond)
	msgs := conn.messages()
	assert.Equal(t, events.TypeConnection, msgs[0].Type)
	assert.Equal(t, events.TypeDocumentSkipped, msgs[1].Type)
	assert.Equal(t, "nogrp.tsv", msgs[1].Data["file"])

	// a peer close unregisters the client
	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
