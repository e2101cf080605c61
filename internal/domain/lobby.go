package domain

import (
	"math/rand"
	"slices"
	"strings"
	"time"
)

// GameKind identifies which mini-game a lobby is running.
type GameKind string

const (
	GameSettlers GameKind = "settlers" // settlement-board placement game
	GameMatchup  GameKind = "matchup"  // party game with three rounds
)

// Lobby is the root shared record coordinating one game session. Every
// mutation of a Lobby goes through a store transaction, so all methods that
// mutate the receiver are written to be safe under retry: applied to a fresh
// snapshot each attempt.
type Lobby struct {
	ID           string    `json:"id"`
	Game         GameKind  `json:"game"`
	Host         string    `json:"host"`
	Players      []string  `json:"players"`
	Capacity     int       `json:"capacity"`
	Phase        Phase     `json:"phase"`
	ReadyPlayers []string  `json:"readyPlayers,omitempty"`
	PlayerOrder  []string  `json:"playerOrder,omitempty"`
	CurrentRound int       `json:"currentRound,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MaxNameLength bounds player display names, enforced at join time.
const MaxNameLength = 24

// NewLobby creates a lobby record in the joining phase.
func NewLobby(id string, game GameKind, host string, capacity int) *Lobby {
	return &Lobby{
		ID:        id,
		Game:      game,
		Host:      host,
		Players:   []string{},
		Capacity:  capacity,
		Phase:     PhaseLobby,
		CreatedAt: time.Now(),
	}
}

// AddPlayer appends name to the roster, preserving join order. Names are
// case-sensitive and unique within the lobby. The duplicate check runs
// before the phase gate: a name already on the roster reports ErrNameTaken
// in every phase, which is what lets a reconnecting player reattach to
// their seat after the game has started.
func (l *Lobby) AddPlayer(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if slices.Contains(l.Players, name) {
		return ErrNameTaken
	}
	if l.Phase != PhaseLobby {
		return ErrAlreadyStarted
	}
	if len(l.Players) >= l.Capacity {
		return ErrLobbyFull
	}

	l.Players = append(l.Players, name)
	return nil
}

// HasPlayer reports whether name is on the roster.
func (l *Lobby) HasPlayer(name string) bool {
	return slices.Contains(l.Players, name)
}

// IsHost checks if the given player created this lobby.
func (l *Lobby) IsHost(name string) bool {
	return l.Host == name
}

// MarkReady records name's readiness. Re-readying is a no-op, not an error.
func (l *Lobby) MarkReady(name string) error {
	if !l.HasPlayer(name) {
		return ErrNotInLobby
	}
	if !slices.Contains(l.ReadyPlayers, name) {
		l.ReadyPlayers = append(l.ReadyPlayers, name)
	}
	return nil
}

// AllReady is derived directly from the record rather than evented.
func (l *Lobby) AllReady() bool {
	return len(l.Players) > 0 && len(l.ReadyPlayers) == len(l.Players)
}

// Start freezes the roster and fixes the turn order for the lobby's
// lifetime. The order is a uniform random permutation of the roster and is
// never reshuffled mid-game.
func (l *Lobby) Start(by string, rng *rand.Rand) error {
	if !l.IsHost(by) {
		return ErrNotHost
	}
	if l.Phase != PhaseLobby {
		return ErrAlreadyStarted
	}
	if len(l.Players) == 0 {
		return ErrNotEnoughPlayers
	}

	order := slices.Clone(l.Players)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	l.PlayerOrder = order
	l.Phase = PhaseStarting
	return nil
}

// SelectRound marks round n as the active round. The caller is responsible
// for (re-)initializing the round's own record from scratch.
func (l *Lobby) SelectRound(by string, n int) error {
	if !l.IsHost(by) {
		return ErrNotHost
	}
	if n < 1 || n > 3 {
		return ErrUnknownRound
	}
	if l.Phase != PhaseReadyCheck && l.Phase != PhaseRoundActive {
		return ErrInvalidPhase
	}
	if !l.AllReady() {
		return ErrNotReady
	}

	l.CurrentRound = n
	l.Phase = PhaseRoundActive
	return nil
}

// FinishRound returns the lobby to round selection.
func (l *Lobby) FinishRound() {
	l.CurrentRound = 0
	if l.Phase == PhaseRoundActive {
		l.Phase = PhaseReadyCheck
	}
}

// Restart keeps the roster, capacity and host but discards readiness, turn
// order and any round progress.
func (l *Lobby) Restart(by string) error {
	if !l.IsHost(by) {
		return ErrNotHost
	}

	l.Phase = PhaseLobby
	l.ReadyPlayers = nil
	l.PlayerOrder = nil
	l.CurrentRound = 0
	return nil
}
