package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"gamenight/internal/domain"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateLobbyRequest is the body for lobby creation
type CreateLobbyRequest struct {
	Game     string `json:"game"` // "settlers" or "matchup"
	Host     string `json:"host"`
	Capacity int    `json:"capacity,omitempty"`
}

// CreateLobbyResponse is the response for lobby creation
type CreateLobbyResponse struct {
	Code       string `json:"code"`
	InviteLink string `json:"inviteLink"`
}

// GetLobbyResponse is the response for getting lobby info
type GetLobbyResponse struct {
	Code        string `json:"code"`
	Game        string `json:"game"`
	PlayerCount int    `json:"playerCount"`
	Capacity    int    `json:"capacity"`
	Phase       string `json:"phase"`
	CanJoin     bool   `json:"canJoin"`
}

// LobbyExistsResponse is the response for checking if a lobby exists
type LobbyExistsResponse struct {
	Exists bool `json:"exists"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveLobbies int `json:"activeLobbies"`
	TotalPlayers  int `json:"totalPlayers"`
}

// handleCreateLobby handles POST /api/lobbies
func (s *Server) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	var req CreateLobbyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Host == "" {
		s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "Host name is required")
		return
	}

	lobby, err := s.service.CreateLobby(domain.GameKind(req.Game), req.Host, req.Capacity)
	if err != nil {
		if errors.Is(err, domain.ErrBlankName) || errors.Is(err, domain.ErrNameTooLong) {
			s.sendError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create lobby")
		return
	}

	s.sendSuccess(w, &CreateLobbyResponse{
		Code:       lobby.ID,
		InviteLink: requestScheme(r) + "://" + r.Host + "/join/" + lobby.ID,
	})
}

// handleGetLobby handles GET /api/lobbies/{code}
func (s *Server) handleGetLobby(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	lobby, err := s.service.Lobby(code)
	if err != nil {
		if errors.Is(err, domain.ErrLobbyNotFound) {
			s.sendError(w, http.StatusNotFound, "LOBBY_NOT_FOUND", "Lobby not found")
		} else {
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	s.sendSuccess(w, &GetLobbyResponse{
		Code:        lobby.ID,
		Game:        string(lobby.Game),
		PlayerCount: len(lobby.Players),
		Capacity:    lobby.Capacity,
		Phase:       lobby.Phase.String(),
		CanJoin:     lobby.Phase == domain.PhaseLobby && len(lobby.Players) < lobby.Capacity,
	})
}

// handleLobbyExists handles GET /api/lobbies/{code}/exists
func (s *Server) handleLobbyExists(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &LobbyExistsResponse{
		Exists: s.service.Exists(chi.URLParam(r, "code")),
	})
}

// handleLobbyQR handles GET /api/lobbies/{code}/qr with a PNG QR code
// pointing at the join link, for sharing a lobby across the room.
func (s *Server) handleLobbyQR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if !s.service.Exists(code) {
		s.sendError(w, http.StatusNotFound, "LOBBY_NOT_FOUND", "Lobby not found")
		return
	}

	url := requestScheme(r) + "://" + r.Host + "/join/" + code

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{Status: "ok"})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	lobbies, players := s.service.Stats()
	s.sendSuccess(w, &StatsResponse{
		ActiveLobbies: lobbies,
		TotalPlayers:  players,
	})
}

// requestScheme derives the external scheme, respecting X-Forwarded-Proto
// behind a reverse proxy.
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
