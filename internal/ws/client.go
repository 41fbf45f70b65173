package ws

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sharpline/sharpline-alerts/internal/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

// Client is one WebSocket connection subscribed to a single user's alerts.
type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan engine.Alert
	hub    *Hub
	logger *slog.Logger
}

// NewClient wraps an upgraded connection.
func NewClient(userID string, conn *websocket.Conn, hub *Hub, logger *slog.Logger) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan engine.Alert, sendBufferSize),
		hub:    hub,
		logger: logger,
	}
}

// ReadPump drains (and discards) inbound frames so pings/pongs and close
// handshakes are processed. The alert feed is one-directional.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
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
				c.logger.Warn("ws unexpected close", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

// WritePump streams alerts from the hub to the connection, with keepalive
// pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case alert, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(alert); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
