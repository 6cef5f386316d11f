// Package hub is the server side of the live activity feed: it accepts
// WebSocket clients and broadcasts text payloads to every one of them.
package hub

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout bounds a single write to one client.
const DefaultWriteTimeout = 5 * time.Second

// peer serializes writes to one connection; gorilla allows one writer at a time.
type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) write(msgType int, data []byte, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(timeout))
	return p.conn.WriteMessage(msgType, data)
}

// Hub tracks active feed connections.
type Hub struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	greeting     func() []string
	logger       *slog.Logger

	mu     sync.Mutex
	peers  map[*peer]struct{}
	closed bool
}

// Option configures a Hub.
type Option func(*Hub)

// WithWriteTimeout sets the per-client write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) {
		h.writeTimeout = d
	}
}

// WithCheckOrigin overrides the upgrader's origin check.
func WithCheckOrigin(f func(r *http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = f
	}
}

// WithGreeting sends the lines returned by f to every client as it connects.
func WithGreeting(f func() []string) Option {
	return func(h *Hub) {
		h.greeting = f
	}
}

// New creates an empty Hub.
func New(logger *slog.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Hub{
		writeTimeout: DefaultWriteTimeout,
		logger:       logger,
		peers:        make(map[*peer]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the request and keeps the client registered until it
// leaves. Client text frames are acknowledged back to the sender only.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	p := &peer{conn: conn}
	if !h.add(p) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}
	h.logger.Info("client connected", "remote", r.RemoteAddr, "clients", h.Len())

	if h.greeting != nil {
		for _, line := range h.greeting() {
			if err := p.write(websocket.TextMessage, []byte(line), h.writeTimeout); err != nil {
				h.logger.Debug("greeting failed", "remote", r.RemoteAddr, "error", err)
				break
			}
		}
	}

	defer func() {
		h.remove(p)
		h.logger.Info("client disconnected", "remote", r.RemoteAddr, "clients", h.Len())
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read ended", "remote", r.RemoteAddr, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if err := p.write(websocket.TextMessage, []byte("Message received: "+string(data)), h.writeTimeout); err != nil {
			h.logger.Debug("echo failed", "remote", r.RemoteAddr, "error", err)
			return
		}
	}
}

// Broadcast sends msg to every client and drops clients whose write fails.
// It returns how many clients received the message.
func (h *Hub) Broadcast(msg string) int {
	h.mu.Lock()
	peers := make([]*peer, 0, len(h.peers))
	for p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()

	delivered := 0
	for _, p := range peers {
		if err := p.write(websocket.TextMessage, []byte(msg), h.writeTimeout); err != nil {
			h.logger.Error("error sending message to websocket", "remote", p.conn.RemoteAddr(), "error", err)
			h.remove(p)
			continue
		}
		delivered++
	}
	return delivered
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	peers := h.peers
	h.peers = make(map[*peer]struct{})
	h.mu.Unlock()

	for p := range peers {
		p.mu.Lock()
		p.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(h.writeTimeout))
		p.mu.Unlock()
		p.conn.Close()
	}
}

func (h *Hub) add(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.peers[p] = struct{}{}
	return true
}

// remove unregisters and closes p. Safe to call more than once.
func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	_, ok := h.peers[p]
	delete(h.peers, p)
	h.mu.Unlock()

	if ok {
		p.conn.Close()
	}
}
