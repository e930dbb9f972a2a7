package notifications

import (
	"context"
	"time"

	"chattym/internal/middleware"
	"chattym/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// The stream is push-only. Inbound frames are only keepalives.
	maxInboundFrame = 1024

	sendBuffer = 64
)

// droppedFrame tells the browser it missed pushes and should refetch.
var droppedFrame = []byte(`{"type":"notifications_dropped","payload":{"reason":"buffer_full"}}`)

// Client is one websocket stream of one user.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	UserID uint

	// Send queues outbound frames. The hub closes it on unregister.
	Send chan []byte
}

// Serve pushes queued frames and reads keepalives until either side goes
// away. It blocks and unregisters the client on return.
func (c *Client) Serve() {
	go c.writeLoop()
	c.readLoop()
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.UnregisterClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundFrame)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.alive()
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Warn("notification stream read failed", "user_id", c.UserID, "error", err)
			}
			return
		}
		c.alive()
	}
}

// alive extends the read deadline and refreshes presence.
func (c *Client) alive() {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.hub.presence.touch(context.Background(), c.UserID)
}

func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		var (
			kind int
			data []byte
		)
		select {
		case frame, ok := <-c.Send:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			kind, data = websocket.TextMessage, frame
		case <-ping.C:
			kind = websocket.PingMessage
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(kind, data); err != nil {
			return
		}
	}
}

// TrySend queues frame without blocking. When the buffer is full the frame
// is dropped and the client is told to refetch. Sends after close are
// dropped silently.
func (c *Client) TrySend(frame []byte) {
	defer func() {
		if recover() != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(hubName, "closed").Inc()
		}
	}()

	select {
	case c.Send <- frame:
		return
	default:
	}

	observability.WebSocketBackpressureDrops.WithLabelValues(hubName, "full").Inc()
	middleware.Logger.Warn("notification buffer full, frame dropped", "user_id", c.UserID)
	select {
	case c.Send <- droppedFrame:
	default:
	}
}
