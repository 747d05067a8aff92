package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/cavern/ui"
)

// sendBuffer is how many messages a slow client may fall behind before it is dropped.
const sendBuffer = 32

// message is one region update pushed to browsers.
type message struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans region updates out to connected websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	writeWait time.Duration
	logger    *slog.Logger
}

func newHub(writeWait time.Duration, logger *slog.Logger) *Hub {
	if writeWait <= 0 {
		writeWait = 2 * time.Second
	}
	return &Hub{
		clients:   make(map[*client]struct{}),
		writeWait: writeWait,
		logger:    logger,
	}
}

// encode renders changes into websocket payloads.
func encode(changes []ui.Change) ([][]byte, error) {
	out := make([][]byte, 0, len(changes))
	for _, c := range changes {
		html, err := ui.RenderChange(c)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(message{ID: c.ID, HTML: html})
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// add registers a client after queueing the messages produced by initial.
// initial runs under the hub lock so no broadcast can slip in between.
func (h *Hub) add(c *client, initial func() ([][]byte, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	msgs, err := initial()
	if err != nil {
		return err
	}
	if len(msgs) > cap(c.send) {
		return fmt.Errorf("web: snapshot of %d regions exceeds client buffer", len(msgs))
	}
	for _, m := range msgs {
		c.send <- m
	}
	h.clients[c] = struct{}{}
	return nil
}

// remove unregisters c and closes its send queue. Safe to call twice.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast queues msgs for every client, dropping clients that cannot keep up.
func (h *Hub) broadcast(msgs [][]byte) {
	if len(msgs) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		for _, m := range msgs {
			select {
			case c.send <- m:
			default:
				h.logger.Warn("dropping slow websocket client", "remote", c.conn.RemoteAddr().String())
				delete(h.clients, c)
				close(c.send)
				c.conn.Close()
			}
			if _, ok := h.clients[c]; !ok {
				break
			}
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// closeAll disconnects every client.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

// writePump sends queued messages until the queue is closed or a write fails.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for m := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(h.writeWait)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, m); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(h.writeWait))
}

// readPump discards client frames and unregisters the client when the
// connection closes.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
