package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/kasuganosora/idlerpg/audit"
	"go.uber.org/zap"
)

// HandlerFunc runs one command. A non-nil result is sent back as
// "<type>_result"; an error becomes an "error" packet.
type HandlerFunc func(ctx context.Context, c *Client, payload json.RawMessage) (any, error)

// ErrorReply is the payload of an "error" packet.
type ErrorReply struct {
	Request string `json:"request"`
	Error   string `json:"error"`
}

// Router dispatches incoming packets to registered handlers.
type Router struct {
	handlers map[string]HandlerFunc
	public   func(error) bool
	logger   *zap.Logger
}

// NewRouter creates a Router. public decides which errors are shown to the
// client verbatim; the rest are logged and reported as "internal error".
func NewRouter(public func(error) bool, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if public == nil {
		public = func(error) bool { return false }
	}
	return &Router{handlers: make(map[string]HandlerFunc), public: public, logger: logger}
}

// On registers fn for msgType, replacing any earlier handler.
func (r *Router) On(msgType string, fn HandlerFunc) {
	r.handlers[msgType] = fn
}

// Types lists the registered message types.
func (r *Router) Types() []string {
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	return out
}

// Dispatch decodes raw and runs the matching handler. Packets with a
// non-zero Seq must arrive in increasing order; replays are dropped.
func (r *Router) Dispatch(ctx context.Context, c *Client, raw []byte) {
	var pkt Packet
	if err := json.Unmarshal(raw, &pkt); err != nil {
		r.logger.Debug("malformed packet", zap.String("client", c.ID), zap.Error(err))
		c.Send(0, "error", ErrorReply{Error: "malformed packet"})
		return
	}
	if pkt.Seq != 0 {
		if pkt.Seq <= c.lastSeq {
			r.logger.Debug("replayed packet",
				zap.String("client", c.ID),
				zap.Uint64("seq", pkt.Seq),
				zap.Uint64("last_seq", c.lastSeq))
			return
		}
		c.lastSeq = pkt.Seq
	}

	fn, ok := r.handlers[pkt.Type]
	if !ok {
		c.Send(pkt.Seq, "error", ErrorReply{Request: pkt.Type, Error: "unknown message type"})
		return
	}

	traceID := uuid.NewString()
	result, err := fn(audit.WithTraceID(ctx, traceID), c, pkt.Payload)
	if err != nil {
		msg := err.Error()
		if !r.public(err) {
			r.logger.Error("ws command failed",
				zap.String("type", pkt.Type),
				zap.String("client", c.ID),
				zap.String("trace_id", traceID),
				zap.Error(err))
			msg = "internal error"
		}
		c.Send(pkt.Seq, "error", ErrorReply{Request: pkt.Type, Error: msg})
		return
	}
	if result != nil {
		c.Send(pkt.Seq, pkt.Type+"_result", result)
	}
}

// errBadPayload is returned by decode; it is always public.
var errBadPayload = errors.New("invalid payload")

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return errBadPayload
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return errBadPayload
	}
	return nil
}
