// Package api provides the HTTP handlers for the installation's memory
// cards.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/RussGuo/Chrismas/internal/store"
)

// maxUploadBytes caps card media uploads (photos and short audio clips).
const maxUploadBytes = 16 << 20

// mediaExtensions maps accepted upload content types to file extensions.
var mediaExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"audio/webm": ".webm",
	"audio/ogg":  ".ogg",
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
}

// CardsHandler handles HTTP requests for memory-card resources.
type CardsHandler struct {
	store    *store.Store
	mediaDir string
}

// NewCardsHandler creates a new CardsHandler. mediaDir is where uploaded
// photos and audio clips are written; empty disables uploads.
func NewCardsHandler(s *store.Store, mediaDir string) *CardsHandler {
	return &CardsHandler{store: s, mediaDir: mediaDir}
}

// ServeHTTP routes card requests.
// Expected paths: /api/cards, /api/cards/{id}, /api/cards/{id}/media.
func (h *CardsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/cards")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/media"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.uploadMedia(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createCardRequest struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Author  string `json:"author"`
}

type updateCardRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Author  string `json:"author"`
}

type cardResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Author    string `json:"author"`
	MediaURL  string `json:"media_url,omitempty"`
	CreatedAt string `json:"created_at"`
}

type listCardsResponse struct {
	Cards []cardResponse `json:"cards"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Card to a cardResponse.
func toResponse(c *store.Card) cardResponse {
	resp := cardResponse{
		ID:        c.ID,
		Kind:      string(c.Kind),
		Title:     c.Title,
		Message:   c.Message,
		Author:    c.Author,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if c.MediaPath != "" {
		resp.MediaURL = "/media/" + c.MediaPath
	}
	return resp
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/cards and returns all cards in hanging order.
func (h *CardsHandler) list(w http.ResponseWriter, r *http.Request) {
	cards, err := h.store.Cards().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list cards")
		return
	}

	response := listCardsResponse{
		Cards: make([]cardResponse, 0, len(cards)),
	}
	for _, c := range cards {
		response.Cards = append(response.Cards, toResponse(c))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/cards.
func (h *CardsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	kind := store.CardKind(req.Kind)
	if req.Kind == "" {
		kind = store.CardKindText
	}
	switch kind {
	case store.CardKindText, store.CardKindPhoto, store.CardKindAudio:
	default:
		writeError(w, http.StatusBadRequest, "Unknown card kind")
		return
	}

	card := &store.Card{
		ID:      uuid.NewString(),
		Kind:    kind,
		Title:   req.Title,
		Message: req.Message,
		Author:  req.Author,
	}

	if err := h.store.Cards().Create(card); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create card")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(card))
}

// get handles GET /api/cards/{id}.
func (h *CardsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	card, err := h.store.Cards().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Card not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get card")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(card))
}

// update handles PUT /api/cards/{id}.
func (h *CardsHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req updateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	card, err := h.store.Cards().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Card not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get card")
		return
	}

	card.Title = req.Title
	card.Message = req.Message
	card.Author = req.Author

	if err := h.store.Cards().Update(card); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update card")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(card))
}

// delete handles DELETE /api/cards/{id}. Any stored media file goes with
// the card.
func (h *CardsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	card, err := h.store.Cards().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Card not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get card")
		return
	}

	if err := h.store.Cards().Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete card")
		return
	}

	if card.MediaPath != "" && h.mediaDir != "" {
		os.Remove(filepath.Join(h.mediaDir, filepath.Base(card.MediaPath)))
	}

	w.WriteHeader(http.StatusNoContent)
}

// uploadMedia handles POST /api/cards/{id}/media with a multipart "file"
// part carrying the photo or audio clip.
func (h *CardsHandler) uploadMedia(w http.ResponseWriter, r *http.Request, id string) {
	if h.mediaDir == "" {
		writeError(w, http.StatusNotImplemented, "Media storage not configured")
		return
	}

	card, err := h.store.Cards().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Card not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get card")
		return
	}

	if card.Kind == store.CardKindText {
		writeError(w, http.StatusBadRequest, "Text cards have no media")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file upload")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := mediaExtensions[contentType]
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, "Unsupported media type")
		return
	}

	if err := os.MkdirAll(h.mediaDir, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store media")
		return
	}

	name := fmt.Sprintf("%s%s", card.ID, ext)
	dst, err := os.Create(filepath.Join(h.mediaDir, name))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store media")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store media")
		return
	}

	if err := h.store.Cards().SetMedia(card.ID, name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record media")
		return
	}

	card.MediaPath = name
	writeJSON(w, http.StatusOK, toResponse(card))
}
