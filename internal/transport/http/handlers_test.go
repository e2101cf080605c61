package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamenight/internal/config"
	"gamenight/internal/game"
	"gamenight/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *game.Service) {
	t.Helper()

	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := game.NewService(store.New(logger), cfg.Game, logger)
	t.Cleanup(service.Close)

	srv := NewServer(cfg, service, logger)
	ts := httptest.NewServer(srv.server.Handler)
	t.Cleanup(ts.Close)
	return ts, service
}

func decodeResponse(t *testing.T, resp *http.Response, data interface{}) *Response {
	t.Helper()

	raw := &struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *ErrorInfo      `json:"error"`
	}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(raw))
	resp.Body.Close()

	if data != nil && raw.Data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return &Response{Success: raw.Success, Error: raw.Error}
}

func TestCreateAndGetLobby(t *testing.T) {
	ts, _ := newTestServer(t)

	body, _ := json.Marshal(&CreateLobbyRequest{Game: "matchup", Host: "alice"})
	resp, err := http.Post(ts.URL+"/api/lobbies", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created CreateLobbyResponse
	r := decodeResponse(t, resp, &created)
	assert.True(t, r.Success)
	assert.Len(t, created.Code, 6)
	assert.Contains(t, created.InviteLink, "/join/"+created.Code)

	resp, err = http.Get(ts.URL + "/api/lobbies/" + created.Code)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got GetLobbyResponse
	decodeResponse(t, resp, &got)
	assert.Equal(t, created.Code, got.Code)
	assert.Equal(t, "matchup", got.Game)
	assert.Equal(t, 1, got.PlayerCount)
	assert.Equal(t, "lobby", got.Phase)
	assert.True(t, got.CanJoin)
}

func TestCreateLobbyRequiresHost(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/lobbies", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	r := decodeResponse(t, resp, nil)
	assert.False(t, r.Success)
	assert.Equal(t, "INVALID_REQUEST", r.Error.Code)
}

func TestGetLobbyNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/lobbies/nosuch")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	r := decodeResponse(t, resp, nil)
	assert.Equal(t, "LOBBY_NOT_FOUND", r.Error.Code)
}

func TestLobbyExists(t *testing.T) {
	ts, service := newTestServer(t)

	lobby, err := service.CreateLobby("settlers", "alice", 0)
	require.NoError(t, err)

	for code, want := range map[string]bool{lobby.ID: true, "nosuch": false} {
		resp, err := http.Get(ts.URL + "/api/lobbies/" + code + "/exists")
		require.NoError(t, err)

		var got LobbyExistsResponse
		decodeResponse(t, resp, &got)
		assert.Equal(t, want, got.Exists)
	}
}

func TestLobbyQR(t *testing.T) {
	ts, service := newTestServer(t)

	lobby, err := service.CreateLobby("matchup", "alice", 0)
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/api/lobbies/" + lobby.ID + "/qr")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp2, err := http.Get(ts.URL + "/api/lobbies/nosuch/qr")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestHealthAndStats(t *testing.T) {
	ts, service := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	var health HealthResponse
	decodeResponse(t, resp, &health)
	assert.Equal(t, "ok", health.Status)

	_, err = service.CreateLobby("matchup", "alice", 0)
	require.NoError(t, err)

	resp, err = http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	var stats StatsResponse
	decodeResponse(t, resp, &stats)
	assert.Equal(t, 1, stats.ActiveLobbies)
	assert.Equal(t, 1, stats.TotalPlayers)
}
