package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/rangeui/pkg/memhost"
	"github.com/vango-dev/rangeui/pkg/wire"
)

// MessageType is the type of a hub message.
type MessageType string

const (
	MessageMutations MessageType = "mutations"
	MessageError     MessageType = "error"
)

// Message is sent to browsers via WebSocket.
type Message struct {
	Type      MessageType        `json:"type"`
	Mutations []memhost.Mutation `json:"mutations,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// FormatBinary is the ws query value selecting wire-encoded mutation frames.
const FormatBinary = "binary"

// Hub manages WebSocket connections for live updates. Each client is
// marked with whether it asked for binary frames.
type Hub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a new hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	binary := req.URL.Query().Get("format") == FormatBinary
	h.mu.Lock()
	h.clients[conn] = binary
	h.mu.Unlock()
	h.logger.Debug("preview client connected", "remote", req.RemoteAddr, "binary", binary)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// NotifyMutations sends a batch of host mutations to all clients.
func (h *Hub) NotifyMutations(batch []memhost.Mutation) {
	if len(batch) == 0 {
		return
	}
	frame, err := wire.EncodeMutations(batch)
	if err != nil {
		h.logger.Warn("encoding mutation frame", "error", err)
	}
	h.broadcast(Message{Type: MessageMutations, Mutations: batch}, frame)
}

// NotifyError sends an error message to all clients.
func (h *Hub) NotifyError(errMsg string) {
	h.broadcast(Message{Type: MessageError, Error: errMsg}, nil)
}

// broadcast sends msg to all connected clients. Binary clients get frame
// instead when it is non-nil.
func (h *Hub) broadcast(msg Message, frame []byte) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make(map[*websocket.Conn]bool, len(h.clients))
	for client, binary := range h.clients {
		clients[client] = binary
	}
	h.mu.RUnlock()

	for client, binary := range clients {
		typ, payload := websocket.TextMessage, data
		if binary && frame != nil {
			typ, payload = websocket.BinaryMessage, frame
		}
		if err := client.WriteMessage(typ, payload); err != nil {
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
