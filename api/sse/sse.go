package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/idlerpg/cache"
	"github.com/kasuganosora/idlerpg/game/session"
	"go.uber.org/zap"
)

const (
	keepaliveInterval = 30 * time.Second
	defaultReplay     = 50
)

// Handler streams activity log entries as server-sent events.
type Handler struct {
	pubsub    cache.PubSub
	c         cache.Cache
	replay    int
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new SSE Handler replaying up to replay backlog
// entries to each new client.
func NewHandler(pubsub cache.PubSub, c cache.Cache, replay int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if replay <= 0 {
		replay = defaultReplay
	}
	return &Handler{pubsub: pubsub, c: c, replay: replay, keepalive: keepaliveInterval, logger: logger}
}

// ServeSSE handles GET /sse.
// Recent entries from the backlog are sent first, followed by live entries
// published on the game events channel.
func (h *Handler) ServeSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	// Subscribe before reading the backlog so nothing published in between
	// is lost. Entries seen in both are sent once.
	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, session.EventsChannel)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	defer unsub()

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")

	replayed := make(map[int64]time.Time)
	backlog, err := session.Backlog(subCtx, h.c, h.replay)
	if err != nil {
		h.logger.Warn("sse backlog read failed", zap.Error(err))
	}
	for _, e := range backlog {
		payload, err := json.Marshal(e)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "id: %d\nevent: log\ndata: %s\n\n", e.Seq, payload)
		replayed[e.Seq] = e.Time
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			var e session.LogEntry
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				h.logger.Warn("sse dropped malformed event", zap.Error(err))
				continue
			}
			if t, ok := replayed[e.Seq]; ok && t.Equal(e.Time) {
				delete(replayed, e.Seq)
				continue
			}
			fmt.Fprintf(c.Writer, "id: %d\nevent: log\ndata: %s\n\n", e.Seq, msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
