package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"murmurnet/internal/infrastructure/broadcast"
)

// LiveHandler streams new posts to connected viewers as they are published.
// Two transports share the hub: server-sent events for the browser feed and
// a websocket for clients that want a bidirectional socket.
type LiveHandler struct {
	hub          *broadcast.Hub
	pingInterval time.Duration
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
	logger       *zap.SugaredLogger
}

func NewLiveHandler(hub *broadcast.Hub, pingInterval, writeTimeout time.Duration, logger *zap.SugaredLogger) *LiveHandler {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &LiveHandler{
		hub:          hub,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

func (h *LiveHandler) SetupRoutes(protected *gin.RouterGroup) {
	protected.GET("/live", h.StreamSSE)
	protected.GET("/live/ws", h.StreamWebSocket)
}

// StreamSSE delivers feed events as server-sent events. The subscription
// lives exactly as long as the request: it is registered here and always
// unregistered when the client goes away.
func (h *LiveHandler) StreamSSE(c *gin.Context) {
	sub := h.hub.Register()
	defer h.hub.Unregister(sub.ID)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	h.logger.Debugw("sse viewer connected", "connection_id", sub.ID)

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.C:
			if !ok {
				// dropped by the hub for falling behind, or shutdown
				return false
			}
			c.SSEvent(string(event.Kind), event)
			return true
		case <-ping.C:
			// comment line keeps intermediaries from timing out the stream
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-clientGone:
			return false
		}
	})

	h.logger.Debugw("sse viewer disconnected", "connection_id", sub.ID)
}

// StreamWebSocket delivers feed events over a websocket. Reads are drained
// only to notice the close handshake; clients are not expected to send data.
func (h *LiveHandler) StreamWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	sub := h.hub.Register()
	h.logger.Debugw("websocket viewer connected", "connection_id", sub.ID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		h.hub.Unregister(sub.ID)
		conn.Close()
		h.logger.Debugw("websocket viewer disconnected", "connection_id", sub.ID)
	}()

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				deadline := time.Now().Add(h.writeTimeout)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "falling behind"), deadline)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
