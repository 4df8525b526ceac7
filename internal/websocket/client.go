package websocket

import (
	"context"
	"time"

	"chat-assistant-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// frameConn is the part of *websocket.Conn the pumps use.
type frameConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client owns one chat connection. Frames are answered in the order received.
type Client struct {
	Conn     frameConn
	Identity string
	Send     chan []byte

	handler *FrameHandler
	logger  logger.ILogger
}

// readPump answers each inbound frame and queues the reply. It closes Send on
// exit, which stops writePump. It stops reading once ctx is cancelled, which
// writePump does when the peer can no longer be written to.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		close(c.Send)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WS", "Unexpected close", map[string]interface{}{
					"identity": c.Identity,
					"error":    err.Error(),
				})
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		select {
		case c.Send <- c.handler.Handle(ctx, c.Identity, raw):
		default:
			// writer is gone or far behind
			c.logger.Warn("WS", "Dropping reply, send buffer full", map[string]interface{}{
				"identity": c.Identity,
			})
		}
	}
}

// writePump drains Send and keeps the connection alive with pings. On exit
// it cancels the turn context so readPump stops taking new frames.
func (c *Client) writePump(cancel context.CancelFunc) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
