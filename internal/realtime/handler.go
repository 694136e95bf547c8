package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lanbix/interview-backend/internal/metrics"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 25 * time.Second
)

// Relay dispatches decoded events for one connection and cleans up
// after it on transport loss.
type Relay interface {
	Dispatch(ctx context.Context, c Conn, event string, data json.RawMessage)
	Disconnect(ctx context.Context, c Conn)
}

// Handler upgrades HTTP requests and pumps events between the socket
// and a relay.
type Handler struct {
	relay    Relay
	upgrader websocket.Upgrader
	metrics  *metrics.Registry
	log      *logrus.Logger
}

func NewHandler(relay Relay, reg *metrics.Registry, log *logrus.Logger) *Handler {
	return &Handler{
		relay:   relay,
		metrics: reg,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

func (h *Handler) Serve(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response in most cases
		return
	}

	conn := newWSConn(uuid.NewString(), ws)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.metrics.WSConnected()
	h.log.WithField("conn_id", conn.ID()).Debug("websocket connected")

	// keepalive pings; the read deadline is pushed on every pong
	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				conn.mu.Lock()
				ws.SetWriteDeadline(time.Now().Add(writeTimeout))
				err := ws.WriteMessage(websocket.PingMessage, nil)
				conn.mu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, data, rerr := ws.ReadMessage()
		if rerr != nil {
			break
		}
		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))

		h.metrics.WSMessage()
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Event == "" {
			_ = conn.Send("error", errorOut{Error: "Invalid message format"})
			continue
		}
		h.relay.Dispatch(ctx, conn, ev.Event, ev.Data)
	}

	h.metrics.WSDisconnected()
	h.relay.Disconnect(context.Background(), conn)
	_ = conn.Close()
	h.log.WithField("conn_id", conn.ID()).Debug("websocket disconnected")
}
