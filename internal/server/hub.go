package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kilupskalvis/vimlantis/internal/models"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
)

// Hub keeps the connected viewers and pushes events to all of them.
// Delivery is best effort: a viewer that cannot keep up is disconnected.
type Hub struct {
	mu       sync.Mutex
	conns    map[*peer]struct{}
	closed   bool
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type peer struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (p *peer) close() {
	p.once.Do(func() { close(p.send) })
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		conns: make(map[*peer]struct{}),
		upgrader: websocket.Upgrader{
			// The API is already open to any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the request and serves the connection until the viewer
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "request_id", requestID(r))
		return
	}

	p := &peer{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(p) {
		conn.Close()
		return
	}
	h.logger.Info("websocket client connected", "remote", r.RemoteAddr)

	go h.writeLoop(p)
	h.readLoop(p)

	h.unregister(p)
	h.logger.Info("websocket client disconnected", "remote", r.RemoteAddr)
}

func (h *Hub) register(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[p] = struct{}{}
	return true
}

func (h *Hub) unregister(p *peer) {
	h.mu.Lock()
	delete(h.conns, p)
	h.mu.Unlock()
	p.close()
}

func (h *Hub) readLoop(p *peer) {
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev models.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			h.logger.Warn("invalid websocket message", "error", err)
			continue
		}
		h.logger.Info("received message", "type", ev.Type, "path", ev.Path)
	}
}

func (h *Hub) writeLoop(p *peer) {
	defer p.conn.Close()
	for msg := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			return
		}
	}
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	p.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Broadcast queues ev for every connected viewer and returns how many
// viewers it was queued for. It never blocks.
func (h *Hub) Broadcast(ev models.Event) int {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for p := range h.conns {
		select {
		case p.send <- data:
			sent++
		default:
			h.logger.Warn("dropping slow websocket client")
			delete(h.conns, p)
			p.close()
		}
	}
	return sent
}

// NotifyTreeChanged tells viewers to refetch the file tree.
func (h *Hub) NotifyTreeChanged() {
	h.Broadcast(models.Event{Type: models.EventTreeChanged})
}

// Len returns the number of connected viewers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close disconnects every viewer and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for p := range h.conns {
		delete(h.conns, p)
		p.close()
	}
}
