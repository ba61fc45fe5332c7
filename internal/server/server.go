// Package server provides the HTTP surface of the installation: memory-card
// API, scene WebSocket, camera debug stream, and the static viewer.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/RussGuo/Chrismas/internal/capture"
	"github.com/RussGuo/Chrismas/internal/scene"
	"github.com/RussGuo/Chrismas/internal/server/api"
	"github.com/RussGuo/Chrismas/internal/session"
	"github.com/RussGuo/Chrismas/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	MediaDir  string
	Store     *store.Store
	Camera    capture.Camera
	Session   *session.Session
	Layout    *scene.Layout
	Hub       *SceneHub
}

// Server represents the HTTP server for the installation.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		cardsHandler := api.NewCardsHandler(s.config.Store, s.config.MediaDir)
		s.mux.Handle("/api/cards", cardsHandler)
		s.mux.Handle("/api/cards/", cardsHandler)
	}

	if s.config.MediaDir != "" {
		fs := http.FileServer(http.Dir(s.config.MediaDir))
		s.mux.Handle("/media/", http.StripPrefix("/media/", fs))
	}

	if s.config.Layout != nil {
		s.mux.HandleFunc("/api/layout", s.handleLayout)
	}

	if s.config.Session != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/scene", s.config.Hub)
	}

	if s.config.Camera != nil {
		streamHandler := NewStreamHandler(s.config.Camera)
		s.mux.Handle("/api/stream", streamHandler)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleStatus reports the session's live state: mode, tracking, degraded.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.config.Session.Status())
}

// handleLayout serves the particle target positions. Renderers pull this
// once at startup and interpolate between the two sets as the mode flips.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cards := 0
	if s.config.Store != nil {
		if n, err := s.config.Store.Cards().Count(); err == nil {
			cards = n
		}
	}

	response := struct {
		Particles *scene.Layout      `json:"particles"`
		Cards     []scene.CardAnchor `json:"cards"`
	}{
		Particles: s.config.Layout,
		Cards:     scene.CardAnchors(cards),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
