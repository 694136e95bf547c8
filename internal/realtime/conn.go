package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Event is the wire envelope in both directions.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Conn is one client connection attached to the hub. Send must be safe
// for concurrent use.
type Conn interface {
	ID() string
	Send(event string, data any) error
	Close() error
}

type wsConn struct {
	id string
	c  *websocket.Conn
	mu sync.Mutex
}

func newWSConn(id string, c *websocket.Conn) *wsConn {
	return &wsConn{id: id, c: c}
}

func (w *wsConn) ID() string { return w.id }

func (w *wsConn) Send(event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	msg, err := json.Marshal(Event{Event: event, Data: b})
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(writeTimeout))
	return w.c.WriteMessage(websocket.TextMessage, msg)
}

func (w *wsConn) Close() error { return w.c.Close() }
