package websocket

import (
	"context"
	"time"

	"github.com/askwhyharsh/geohunt/internal/role"
	"github.com/askwhyharsh/geohunt/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one websocket watching a single role.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan *Message
	role   role.Role
	logger logger.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(hub *Hub, conn *websocket.Conn, r role.Role, log logger.Logger) *Client {
	ctx, cancel := context.WithCancel(hub.ctx)
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan *Message, 16),
		role:   r,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ReadPump drains the socket so control frames are processed and notices
// the peer going away. Watchers never write coordinates over the socket.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		c.conn.Close()
		c.cancel()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("Watcher read failed", "error", err)
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// prime queues the current record before the client is registered, so the
// hub cannot have closed send yet.
func (c *Client) prime(msg *Message) {
	select {
	case c.send <- msg:
	default:
	}
}
