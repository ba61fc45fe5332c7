package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/RussGuo/Chrismas/internal/scene"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SceneHub fans scene frames out to connected renderers over WebSocket.
// The session loop pushes frames in; the hub never generates its own ticks.
type SceneHub struct {
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewSceneHub creates an empty hub.
func NewSceneHub() *SceneHub {
	return &SceneHub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *SceneHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// sceneWriteTimeout bounds how long one frame write may block on a stalled
// renderer before its connection is dropped.
const sceneWriteTimeout = time.Second

// Publish broadcasts one scene frame to every connected renderer. Intended
// as the session's OnFrame sink; a renderer that stops reading is
// disconnected once its write deadline expires instead of stalling the loop.
func (h *SceneHub) Publish(frame scene.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(frame)
	if err != nil {
		return
	}

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(sceneWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ClientCount returns the number of connected renderers.
func (h *SceneHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
