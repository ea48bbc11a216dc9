package gateway

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	sendQueueSize = 64
	writeTimeout  = 10 * time.Second
	readChunkSize = 4096

	// A pending buffer larger than any legal frame means the peer is
	// sending garbage; everything buffered is dropped.
	maxPending = maxPayload + 14
)

// Client is one connected socket. Created on upgrade, torn down exactly
// once on close or error.
type Client struct {
	ID     string
	UserID string

	hub       *Hub
	conn      net.Conn
	ip        string
	send      chan []byte
	closeOnce sync.Once

	mu     sync.Mutex
	closed bool
}

func newClient(id, userID, ip string, conn net.Conn, hub *Hub) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		hub:    hub,
		conn:   conn,
		ip:     ip,
		send:   make(chan []byte, sendQueueSize),
	}
}

// enqueue hands a pre-encoded frame to the write loop. Frames for a
// client with a full or already-shut queue are dropped, never blocked on:
// a late ping reply or a handler racing the unregister must not panic.
func (c *Client) enqueue(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		c.hub.logger.Warn("gateway send queue full, dropping frame",
			zap.String("client", c.ID))
	}
}

// shutdown marks the queue closed so stragglers become no-ops, then
// releases the write loop. Safe to call more than once.
func (c *Client) shutdown() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
		c.hub.unregister <- c
	})
}

// readLoop accumulates raw bytes and feeds them through the frame codec.
// A malformed frame is dropped; only socket errors and close frames end
// the connection.
func (c *Client) readLoop() {
	defer c.close()

	var pending []byte
	chunk := make([]byte, readChunkSize)
	for {
		n, err := c.conn.Read(chunk)
		if err != nil {
			return
		}
		pending = append(pending, chunk[:n]...)

		for {
			frame, consumed := DecodeFrame(pending)
			if frame == nil {
				if len(pending) > maxPending {
					c.hub.logger.Warn("gateway dropping oversized input",
						zap.String("client", c.ID), zap.Int("buffered", len(pending)))
					pending = nil
				}
				break
			}
			pending = pending[consumed:]

			switch frame.Opcode {
			case OpPing:
				c.enqueue(pongFrame())
			case OpPong:
				c.hub.logger.Debug("gateway pong", zap.String("client", c.ID))
			case OpClose:
				return
			case OpText:
				c.handleText(frame.Payload)
			default:
				c.hub.logger.Debug("gateway ignoring frame",
					zap.String("client", c.ID), zap.Uint8("opcode", uint8(frame.Opcode)))
			}
		}
	}
}

func (c *Client) handleText(payload []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(payload, &env); err != nil || env.Type == "" {
		c.hub.logger.Debug("gateway dropping malformed event",
			zap.String("client", c.ID))
		return
	}
	if !c.hub.limiter.Allow(c.ip, "ws:"+env.Type) {
		c.hub.logger.Warn("gateway event rate limited",
			zap.String("client", c.ID), zap.String("event", env.Type))
		return
	}
	c.hub.handleInbound(c, env)
}

// writeLoop drains the send queue. A dead socket is logged and torn down,
// never allowed to take the process with it.
func (c *Client) writeLoop() {
	defer c.close()

	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := c.conn.Write(frame); err != nil {
			c.hub.logger.Warn("gateway write failed",
				zap.String("client", c.ID), zap.Error(err))
			return
		}
	}
}
