package ws

import (
	"encoding/json"
	"time"

	"gamenight/internal/game"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgJoinLobby    MessageType = "join_lobby"
	MsgReadyUp      MessageType = "ready_up"
	MsgStartGame    MessageType = "start_game"
	MsgSelectRound  MessageType = "select_round"
	MsgClaimSpot    MessageType = "claim_spot"
	MsgCastVote     MessageType = "cast_vote"
	MsgSkipVotes    MessageType = "skip_votes"
	MsgNextTurn     MessageType = "next_turn"
	MsgSubmitAnswer MessageType = "submit_answer"
	MsgRestart      MessageType = "restart"
	MsgPing         MessageType = "ping"
)

// Server → Client message types
const (
	MsgJoined   MessageType = "joined"
	MsgSnapshot MessageType = "snapshot"
	MsgError    MessageType = "error"
	MsgPong     MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// JoinLobbyPayload is the payload for join_lobby
type JoinLobbyPayload struct {
	Name string `json:"name"`
}

// SelectRoundPayload is the payload for select_round
type SelectRoundPayload struct {
	Round int `json:"round"`
}

// ClaimSpotPayload is the payload for claim_spot
type ClaimSpotPayload struct {
	Type   string `json:"type"` // "house" or "road"
	SpotID int    `json:"spotId"`
}

// CastVotePayload is the payload for cast_vote. Round 1 and round 3 votes
// share a shape; the active round decides where the vote lands.
type CastVotePayload struct {
	Choice string `json:"choice"`
}

// SubmitAnswerPayload is the payload for submit_answer
type SubmitAnswerPayload struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

// Server message payloads

// JoinedPayload confirms a join and carries the client's identity
type JoinedPayload struct {
	ClientID string `json:"clientId"`
	LobbyID  string `json:"lobbyId"`
	Name     string `json:"name"`
}

// SnapshotPayload carries the full lobby state
type SnapshotPayload struct {
	State *game.Snapshot `json:"state"`
}

// ErrorPayload is the payload for error messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeLobbyNotFound  = "LOBBY_NOT_FOUND"
	ErrCodeLobbyFull      = "LOBBY_FULL"
	ErrCodeNameTaken      = "NAME_TAKEN"
	ErrCodeNotYourTurn    = "NOT_YOUR_TURN"
	ErrCodeSpotTaken      = "SPOT_TAKEN"
	ErrCodeInvalidVote    = "INVALID_VOTE"
	ErrCodeNotHost        = "NOT_HOST"
	ErrCodeInvalidAction  = "INVALID_ACTION"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)
