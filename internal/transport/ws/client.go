package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gamenight/internal/domain"
	"gamenight/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents one WebSocket connection to a lobby. A client becomes a
// player by joining with a name; spectating without joining is allowed, the
// snapshot stream works either way.
type Client struct {
	conn    *websocket.Conn
	service *game.Service
	lobbyID string
	id      string // connection id, not a player identity
	name    string // player name once joined
	send    chan []byte
	done    chan struct{}
	unwatch func()
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, service *game.Service, lobbyID, id string, logger *slog.Logger) *Client {
	return &Client{
		conn:    conn,
		service: service,
		lobbyID: lobbyID,
		id:      id,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
		logger:  logger,
	}
}

// Send marshals and queues a message for the write pump
func (c *Client) Send(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		c.logger.Error("marshal failed", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped", "clientId", c.id)
	}
}

// Close tears down the connection and the snapshot watch
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	if c.unwatch != nil {
		c.unwatch()
	}
	return c.conn.Close()
}

// Run starts the client's read and write pumps. It blocks until the
// connection drops.
func (c *Client) Run() {
	c.watchLobby()
	go c.writePump()
	c.readPump()
}

// watchLobby streams a snapshot to the client after every committed change.
func (c *Client) watchLobby() {
	c.unwatch = c.service.Watch(c.lobbyID, func(snap *game.Snapshot) {
		if snap == nil {
			c.sendError(ErrCodeLobbyNotFound, "Lobby no longer exists")
			return
		}
		c.Send(NewServerMessage(MsgSnapshot, &SnapshotPayload{State: snap}))
	})
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgJoinLobby:
		c.handleJoin(msg.Payload)
	case MsgReadyUp:
		c.asPlayer(func() error { return c.service.ReadyUp(c.lobbyID, c.name) })
	case MsgStartGame:
		c.asPlayer(func() error { return c.service.StartGame(c.lobbyID, c.name) })
	case MsgSelectRound:
		c.handleSelectRound(msg.Payload)
	case MsgClaimSpot:
		c.handleClaimSpot(msg.Payload)
	case MsgCastVote:
		c.handleCastVote(msg.Payload)
	case MsgSkipVotes:
		c.asPlayer(func() error { return c.service.SkipVotes(c.lobbyID, c.name) })
	case MsgNextTurn:
		c.asPlayer(func() error { return c.service.AdvanceTurn(c.lobbyID, c.name) })
	case MsgSubmitAnswer:
		c.handleSubmitAnswer(msg.Payload)
	case MsgRestart:
		c.asPlayer(func() error { return c.service.Restart(c.lobbyID, c.name) })
	case MsgPing:
		c.Send(NewServerMessage(MsgPong, nil))
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// asPlayer runs op if the client has joined with a name, mapping the error.
func (c *Client) asPlayer(op func() error) {
	if c.name == "" {
		c.sendError(ErrCodeInvalidAction, "Join the lobby first")
		return
	}
	if err := op(); err != nil {
		c.sendDomainError(err)
	}
}

func (c *Client) handleJoin(payload json.RawMessage) {
	var p JoinLobbyPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Name == "" {
		c.sendError(ErrCodeInvalidMessage, "Name is required")
		return
	}

	_, err := c.service.Join(c.lobbyID, p.Name)
	if err != nil && !errors.Is(err, domain.ErrNameTaken) {
		c.sendDomainError(err)
		return
	}
	// Joining under an existing name reattaches to that player, which is
	// how a refreshed page comes back.
	c.name = p.Name

	c.Send(NewServerMessage(MsgJoined, &JoinedPayload{
		ClientID: c.id,
		LobbyID:  c.lobbyID,
		Name:     c.name,
	}))
}

func (c *Client) handleSelectRound(payload json.RawMessage) {
	var p SelectRoundPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}
	c.asPlayer(func() error { return c.service.SelectRound(c.lobbyID, c.name, p.Round) })
}

func (c *Client) handleClaimSpot(payload json.RawMessage) {
	var p ClaimSpotPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}
	t := domain.SpotType(p.Type)
	if t != domain.SpotHouse && t != domain.SpotRoad {
		c.sendError(ErrCodeInvalidMessage, "Spot type must be house or road")
		return
	}
	c.asPlayer(func() error { return c.service.ClaimSpot(c.lobbyID, c.name, t, p.SpotID) })
}

func (c *Client) handleCastVote(payload json.RawMessage) {
	var p CastVotePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Choice == "" {
		c.sendError(ErrCodeInvalidMessage, "Choice is required")
		return
	}

	c.asPlayer(func() error {
		lobby, err := c.service.Lobby(c.lobbyID)
		if err != nil {
			return err
		}
		if lobby.CurrentRound == 3 {
			return c.service.CastRound3Vote(c.lobbyID, c.name, p.Choice)
		}
		return c.service.CastRound1Vote(c.lobbyID, c.name, p.Choice)
	})
}

func (c *Client) handleSubmitAnswer(payload json.RawMessage) {
	var p SubmitAnswerPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}
	c.asPlayer(func() error { return c.service.SubmitAnswer(c.lobbyID, c.name, p.Index, p.Answer) })
}

// sendDomainError maps a domain error to a client error code
func (c *Client) sendDomainError(err error) {
	switch {
	case errors.Is(err, domain.ErrLobbyNotFound):
		c.sendError(ErrCodeLobbyNotFound, "Lobby not found")
	case errors.Is(err, domain.ErrLobbyFull):
		c.sendError(ErrCodeLobbyFull, "Lobby is full")
	case errors.Is(err, domain.ErrNameTaken):
		c.sendError(ErrCodeNameTaken, "Name already taken")
	case errors.Is(err, domain.ErrBlankName), errors.Is(err, domain.ErrNameTooLong):
		c.sendError(ErrCodeInvalidMessage, err.Error())
	case errors.Is(err, domain.ErrNotHost):
		c.sendError(ErrCodeNotHost, "Only the host can do that")
	case errors.Is(err, domain.ErrNotYourTurn):
		c.sendError(ErrCodeNotYourTurn, "It's not your turn")
	case errors.Is(err, domain.ErrSpotTaken), errors.Is(err, domain.ErrSpotOutOfRange):
		c.sendError(ErrCodeSpotTaken, err.Error())
	case errors.Is(err, domain.ErrIneligibleVoter), errors.Is(err, domain.ErrInvalidChoice):
		c.sendError(ErrCodeInvalidVote, err.Error())
	case errors.Is(err, domain.ErrAlreadyStarted),
		errors.Is(err, domain.ErrNotEnoughPlayers),
		errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrInvalidPhase),
		errors.Is(err, domain.ErrRoundNotActive),
		errors.Is(err, domain.ErrUnknownRound),
		errors.Is(err, domain.ErrNotInLobby),
		errors.Is(err, domain.ErrNoPrompt):
		c.sendError(ErrCodeInvalidAction, err.Error())
	default:
		c.sendError(ErrCodeInternalError, "Internal error")
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	c.Send(NewServerMessage(MsgError, &ErrorPayload{
		Code:    code,
		Message: message,
	}))
}
