package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	maxMsgSize   = 64 * 1024
)

var errSendClosed = errors.New("connection send buffer closed or full")

// Client wraps one websocket connection. Pushes are buffered; a full buffer
// or closed connection rejects the push rather than blocking the caller.
type Client struct {
	conn *websocket.Conn
	send chan any

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan any, 256),
	}
}

// Push satisfies presence.Handle.
func (c *Client) Push(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errSendClosed
	}
	select {
	case c.send <- v:
		return nil
	default:
		return errSendClosed
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection until it drops. Inbound frames carry no
// actions (the REST surface drives all mutations); reading just keeps the
// connection and its deadlines alive.
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
