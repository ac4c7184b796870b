// Package ws is the two-way game connection: clients send commands as JSON
// packets and receive command results plus every activity log entry as it
// happens.
package ws

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kasuganosora/idlerpg/cache"
	"github.com/kasuganosora/idlerpg/game/session"
	"go.uber.org/zap"
)

// Handler is the Gin handler for GET /ws.
type Handler struct {
	pubsub   cache.PubSub
	router   *Router
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket Handler. allowedOrigins lists the accepted
// Origin headers; an empty list accepts every origin.
func NewHandler(pubsub cache.PubSub, router *Router, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		pubsub: pubsub,
		router: router,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  maxMessage,
			WriteBufferSize: maxMessage,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// ServeWS upgrades the request and serves the client until it disconnects
// or the request context ends.
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	client := newClient(uuid.NewString(), conn, h.logger)
	defer client.Close()

	events, unsub, err := h.pubsub.Subscribe(ctx, session.EventsChannel)
	if err != nil {
		h.logger.Error("ws subscribe failed", zap.Error(err))
		client.Send(0, "error", ErrorReply{Error: "event stream unavailable"})
		return
	}
	defer unsub()

	h.logger.Info("ws client connected", zap.String("client", client.ID))
	client.Send(0, "connected", map[string]any{"client": client.ID, "commands": h.router.Types()})

	go func() {
		for {
			select {
			case msg, ok := <-events:
				if !ok {
					return
				}
				// Entries are already JSON; wrap without re-encoding.
				client.SendRaw([]byte(`{"type":"log","payload":`+msg.Payload+`}`), "log")
			case <-ctx.Done():
				// Unblocks readPump on server shutdown.
				client.Close()
				return
			}
		}
	}()

	h.readPump(ctx, client)
	h.logger.Info("ws client disconnected", zap.String("client", client.ID))
}

func (h *Handler) readPump(ctx context.Context, c *Client) {
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readDeadline))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				h.logger.Warn("ws unexpected close", zap.String("client", c.ID), zap.Error(err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(readDeadline))
		h.router.Dispatch(ctx, c, raw)
	}
}
