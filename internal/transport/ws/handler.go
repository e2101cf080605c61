package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gamenight/internal/game"
)

// Handler handles WebSocket connections
type Handler struct {
	service  *game.Service
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(service *game.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development
				// In production, you should validate the origin
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests. The lobby code comes from
// the query string; an optional name joins the lobby immediately so a
// single round trip gets a player into the game.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lobbyID := r.URL.Query().Get("lobby")
	if lobbyID == "" {
		http.Error(w, "lobby is required", http.StatusBadRequest)
		return
	}
	if !h.service.Exists(lobbyID) {
		http.Error(w, "Lobby not found", http.StatusNotFound)
		return
	}

	name := r.URL.Query().Get("name")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := NewClient(conn, h.service, lobbyID, uuid.New().String(), h.logger)

	h.logger.Info("websocket connected",
		"lobby", lobbyID,
		"clientId", client.id,
		"name", name,
	)

	if name != "" {
		payload, _ := json.Marshal(&JoinLobbyPayload{Name: name})
		client.handleJoin(payload)
	}

	client.Run()
}
