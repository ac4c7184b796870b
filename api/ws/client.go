package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendChanBuf   = 256
	writeDeadline = 10 * time.Second
	readDeadline  = 60 * time.Second
	pingInterval  = 30 * time.Second
	maxMessage    = 4096
)

// Packet is the message envelope in both directions. Replies carry the
// Seq of the command they answer.
type Packet struct {
	Seq     uint64          `json:"seq,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client is one connected WebSocket. Writes go through a buffered channel
// drained by writePump, so the game loop never waits on a slow socket.
type Client struct {
	ID      string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	lastSeq uint64
	logger  *zap.Logger
}

func newClient(id string, conn *websocket.Conn, logger *zap.Logger) *Client {
	c := &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, sendChanBuf),
		done:   make(chan struct{}),
		logger: logger,
	}
	if conn != nil {
		go c.writePump()
	}
	return c
}

// writePump drains the send queue and pings the peer so dead connections
// are noticed by the read deadline.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.conn.Close()
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("ws write error", zap.String("client", c.ID), zap.Error(err))
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			return
		}
	}
}

// Send encodes payload into a packet and queues it. A full queue drops the
// packet.
func (c *Client) Send(seq uint64, msgType string, payload any) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			c.logger.Error("ws encode failed", zap.String("type", msgType), zap.Error(err))
			return
		}
		raw = b
	}
	data, err := json.Marshal(Packet{Seq: seq, Type: msgType, Payload: raw})
	if err != nil {
		return
	}
	c.SendRaw(data, msgType)
}

// SendRaw queues an already encoded packet.
func (c *Client) SendRaw(data []byte, msgType string) {
	if c.IsClosed() {
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.logger.Warn("ws send queue full, dropping packet",
			zap.String("client", c.ID), zap.String("type", msgType))
	}
}

// Close stops the write pump. It is safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}

// IsClosed reports whether Close has been called.
func (c *Client) IsClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
