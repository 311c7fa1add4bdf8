// ABOUTME: One WebSocket connection with its buffered outbound channel
// ABOUTME: Read pump processes frames in order; a single write pump drains sends

package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/glimpse-chat/glimpse/internal/metrics"
	"github.com/glimpse-chat/glimpse/internal/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// client wraps one upgraded connection. All outbound traffic goes
// through the buffered send channel so exactly one goroutine (the write
// pump) touches the socket for writes; inbound frames are processed one
// at a time on the read pump.
type client struct {
	conn *websocket.Conn
	send chan room.Event
	done chan struct{}

	closeOnce sync.Once
	onClose   func()

	logger *slog.Logger
}

func newClient(conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		conn:   conn,
		send:   make(chan room.Event, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// close tears the connection down exactly once, no matter how many
// paths (read error, write error, repeated disconnect) reach it.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
		if c.onClose != nil {
			c.onClose()
		}
	})
}

// deliver queues an event for this connection only, dropping it if the
// buffer is full rather than blocking the caller.
func (c *client) deliver(ev room.Event) {
	select {
	case c.send <- ev:
	default:
		metrics.DroppedDeliveries.Inc()
		c.logger.Debug("dropped event for slow connection", "event_type", ev.Type)
	}
}

// readPump reads frames until the connection errors and hands each one
// to handle. Frames are handled synchronously, so a connection's frames
// are always processed in arrival order.
func (c *client) readPump(handle func(data []byte)) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read failed", "error", err)
			}
			return
		}
		handle(data)
	}
}

// writePump is the sole writer on the socket. It drains the send
// channel and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case ev := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
