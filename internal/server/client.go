package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wonders/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10 // snapshots carry every played card
	sendBuffer     = 256
)

// Client is one WebSocket connection to a table. The player it acts for is
// tracked by the hub; id is the player named in the connect URL and never
// changes.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, playerID string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		id:   playerID,
		send: make(chan []byte, sendBuffer),
	}
}

// deliver queues data for the writer. It reports false once the client is
// closed or its buffer is full.
func (c *Client) deliver(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close ends delivery; the writer then sends a close frame. Only the hub
// closes clients, and closing twice is a no-op.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// SendEnvelope queues a typed message for this client. Messages for a
// departed client are dropped.
func (c *Client) SendEnvelope(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.hub.log.Error("marshal envelope", zap.String("type", env.Type), zap.Error(err))
		return
	}
	if !c.deliver(data) {
		c.hub.log.Debug("message dropped", zap.String("type", env.Type), zap.String("client", c.id))
	}
}

// ReadPump forwards envelopes to the hub until the connection fails or the
// hub stops, then detaches the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("ws read", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
		var env protocol.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.SendEnvelope(protocol.ErrorEnvelope("malformed envelope"))
			continue
		}
		if !c.hub.submit(IncomingMessage{Client: c, Envelope: env}) {
			return
		}
	}
}

// WritePump drains the send queue onto the connection and keeps it alive
// with pings. It exits when the hub closes the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, data)
}

// IncomingMessage pairs a message with its source client.
type IncomingMessage struct {
	Client   *Client
	Envelope protocol.Envelope
}
