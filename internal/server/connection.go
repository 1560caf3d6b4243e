package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// Connection streams one game's states to a websocket client. The stream is
// read-only: anything the client sends is discarded.
type Connection struct {
	conn      *websocket.Conn
	watcher   *Watcher
	hub       *Hub
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps conn and subscribes it to gameID
func NewConnection(conn *websocket.Conn, hub *Hub, gameID string, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		watcher: hub.Subscribe(gameID),
		hub:     hub,
		logger:  logger.WithPrefix("conn").With("game", gameID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start sends the initial state and begins streaming every newer one
func (c *Connection) Start(initial Update) {
	go c.writePump(initial)
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close unsubscribes the watcher and closes the socket
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.hub.Unsubscribe(c.watcher)
		err = c.conn.Close()
	})
	return err
}

// readPump drains the client until it goes away
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
	}
}

// writePump writes states and pings to the client
func (c *Connection) writePump(initial Update) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close() // Ignore close errors during cleanup
	}()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(initial.State); err != nil {
		c.logger.Error("Failed to write state", "error", err)
		return
	}
	sent := initial.Version

	for {
		select {
		case update, ok := <-c.watcher.Updates():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Queued before the initial state was read
			if update.Version <= sent {
				continue
			}
			sent = update.Version

			if err := c.conn.WriteJSON(update.State); err != nil {
				c.logger.Error("Failed to write state", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
