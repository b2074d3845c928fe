package dev

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadPath is where clients connect for rebuild notifications.
const ReloadPath = "/_kata/reload"

// ReloadMessageType represents the type of reload message.
type ReloadMessageType string

const (
	ReloadTypeRebuilt ReloadMessageType = "rebuilt"
	ReloadTypeError   ReloadMessageType = "error"
)

// ReloadMessage is sent to clients via WebSocket.
type ReloadMessage struct {
	Type       ReloadMessageType `json:"type"`
	BuildID    string            `json:"buildId,omitempty"`
	Built      int               `json:"built,omitempty"`
	Warnings   int               `json:"warnings,omitempty"`
	DurationMS int64             `json:"durationMs,omitempty"`
	Changed    []string          `json:"changed,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// ReloadHub manages WebSocket connections for rebuild notifications.
type ReloadHub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	sendMu   sync.Mutex
	upgrader websocket.Upgrader
}

// NewReloadHub creates a new reload hub.
func NewReloadHub() *ReloadHub {
	return &ReloadHub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (h *ReloadHub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Clients never send anything meaningful; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(conn)
}

// NotifyRebuilt tells clients a build finished.
func (h *ReloadHub) NotifyRebuilt(buildID string, built, warnings int, d time.Duration, changed []string) {
	h.Broadcast(ReloadMessage{
		Type:       ReloadTypeRebuilt,
		BuildID:    buildID,
		Built:      built,
		Warnings:   warnings,
		DurationMS: d.Milliseconds(),
		Changed:    changed,
	})
}

// NotifyError tells clients a build failed.
func (h *ReloadHub) NotifyError(errMsg string) {
	h.Broadcast(ReloadMessage{Type: ReloadTypeError, Error: errMsg})
}

// Broadcast sends a message to all connected clients.
func (h *ReloadHub) Broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.sendMu.Lock()
	defer h.sendMu.Unlock()
	for _, client := range clients {
		client.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(client)
		}
	}
}

func (h *ReloadHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (h *ReloadHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *ReloadHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
