package game

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"sync"
	"time"

	"gamenight/internal/config"
	"gamenight/internal/domain"
	"gamenight/internal/store"
)

// CodeChars are characters used for lobby codes.
const CodeChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// Service coordinates all lobbies on top of the shared store. It is the
// single owner of every timer and background watcher: clients only issue
// operations and observe state, so a client disconnecting mid-round never
// stalls a countdown.
type Service struct {
	store  *store.Store
	cfg    config.GameConfig
	logger *slog.Logger
	rng    *mrand.Rand

	mu       sync.Mutex
	sessions map[string]*session
	done     chan struct{}
	wg       sync.WaitGroup
}

// session is the in-process runtime state for one lobby: the timers and
// store watchers currently serving it. Everything here is reconstructible
// from the store; losing it never corrupts game state.
type session struct {
	lastActive time.Time

	delayTimer   *time.Timer // pending starting -> ready-check transition
	advanceTimer *time.Timer // pending round 1 matchup advance
	// matchup an advance is already scheduled for, 0 when none
	scheduledMatchup int

	roundUnsubs []func()
	tickerStop  chan struct{}
}

// NewService creates the coordinator and starts its cleanup loop.
func NewService(st *store.Store, cfg config.GameConfig, logger *slog.Logger) *Service {
	s := &Service{
		store:    st,
		cfg:      cfg,
		logger:   logger,
		rng:      mrand.New(&lockedSource{src: mrand.NewSource(time.Now().UnixNano()).(mrand.Source64)}),
		sessions: make(map[string]*session),
		done:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Close stops all background work. Stored lobby state is left in place.
func (s *Service) Close() {
	close(s.done)

	s.mu.Lock()
	for id := range s.sessions {
		s.stopSessionLocked(id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func lobbyPath(id string) string {
	return "lobbies/" + id
}

func placementPath(id string) string {
	return lobbyPath(id) + "/placement"
}

func roundPath(id string, n int) string {
	return fmt.Sprintf("lobbies/%s/rounds/%d", id, n)
}

// CreateLobby creates a lobby with the given host as its first player.
// capacity 0 means the configured maximum.
func (s *Service) CreateLobby(kind domain.GameKind, host string, capacity int) (*domain.Lobby, error) {
	if capacity <= 0 || capacity > s.cfg.MaxPlayers {
		capacity = s.cfg.MaxPlayers
	}
	if kind != domain.GameSettlers && kind != domain.GameMatchup {
		kind = domain.GameMatchup
	}

	var id string
	for attempts := 0; ; attempts++ {
		if attempts >= 10 {
			return nil, fmt.Errorf("failed to generate unique lobby code")
		}
		id = s.generateCode()
		if _, exists := s.store.Get(lobbyPath(id)); !exists {
			break
		}
	}

	lobby := domain.NewLobby(id, kind, host, capacity)
	if err := lobby.AddPlayer(host); err != nil {
		return nil, err
	}
	if err := s.store.Set(lobbyPath(id), lobby); err != nil {
		return nil, err
	}
	s.touch(id)

	s.logger.Info("lobby created", "lobby", id, "game", kind, "host", host)
	return lobby, nil
}

// Lobby returns the lobby record for id.
func (s *Service) Lobby(id string) (*domain.Lobby, error) {
	lobby, ok, err := store.Read[domain.Lobby](s.store, lobbyPath(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrLobbyNotFound
	}
	return &lobby, nil
}

// Exists reports whether a lobby with this code is live, without exposing
// its state.
func (s *Service) Exists(id string) bool {
	_, ok := s.store.Get(lobbyPath(id))
	return ok
}

// Join adds a player to the lobby. All join rules run inside the store
// transaction, so two clients racing for the last seat cannot both win it.
func (s *Service) Join(id, name string) (*domain.Lobby, error) {
	var out domain.Lobby
	err := store.Update(s.store, lobbyPath(id), func(cur *domain.Lobby) (*domain.Lobby, error) {
		if cur == nil {
			return nil, domain.ErrLobbyNotFound
		}
		if err := cur.AddPlayer(name); err != nil {
			return nil, err
		}
		out = *cur
		return cur, nil
	})
	if err != nil {
		return nil, err
	}
	s.touch(id)

	s.logger.Info("player joined", "lobby", id, "player", name)
	return &out, nil
}

// ReadyUp marks a player ready during the round-selection phases.
func (s *Service) ReadyUp(id, name string) error {
	err := store.Update(s.store, lobbyPath(id), func(cur *domain.Lobby) (*domain.Lobby, error) {
		if cur == nil {
			return nil, domain.ErrLobbyNotFound
		}
		if err := cur.MarkReady(name); err != nil {
			return nil, err
		}
		return cur, nil
	})
	if err != nil {
		return err
	}
	s.touch(id)
	return nil
}

// StartGame freezes the roster, fixes the turn order and begins the start
// countdown. For the settlement game it also creates the placement record.
func (s *Service) StartGame(id, by string) error {
	var started domain.Lobby
	err := store.Update(s.store, lobbyPath(id), func(cur *domain.Lobby) (*domain.Lobby, error) {
		if cur == nil {
			return nil, domain.ErrLobbyNotFound
		}
		if len(cur.Players) < s.cfg.MinPlayers {
			return nil, domain.ErrNotEnoughPlayers
		}
		if err := cur.Start(by, s.rng); err != nil {
			return nil, err
		}
		started = *cur
		return cur, nil
	})
	if err != nil {
		return err
	}
	s.touch(id)

	if started.Game == domain.GameSettlers {
		board := domain.BoardStandard
		if len(started.PlayerOrder) > 4 {
			board = domain.BoardLarge
		}
		if err := s.store.Set(placementPath(id), domain.NewPlacement(board, started.PlayerOrder)); err != nil {
			return err
		}
	}

	// Short pause so every client renders the start before the ready check.
	s.mu.Lock()
	sess := s.sessionLocked(id)
	sess.delayTimer = time.AfterFunc(s.cfg.StartDelay, func() {
		s.finishStarting(id)
	})
	s.mu.Unlock()

	s.logger.Info("game started", "lobby", id, "players", len(started.PlayerOrder))
	return nil
}

func (s *Service) finishStarting(id string) {
	err := store.Update(s.store, lobbyPath(id), func(cur *domain.Lobby) (*domain.Lobby, error) {
		if cur == nil || cur.Phase != domain.PhaseStarting {
			return nil, store.ErrAborted
		}
		cur.Phase = domain.PhaseReadyCheck
		return cur, nil
	})
	if err != nil && !errors.Is(err, store.ErrAborted) {
		s.logger.Error("start countdown failed", "lobby", id, "error", err)
	}
}

// ClaimSpot places a house or road for the acting player. Turn order, spot
// range and double-claim checks all run against the transaction snapshot.
func (s *Service) ClaimSpot(id, by string, t domain.SpotType, spotID int) error {
	err := store.Update(s.store, placementPath(id), func(cur *domain.Placement) (*domain.Placement, error) {
		if cur == nil {
			return nil, domain.ErrLobbyNotFound
		}
		if err := cur.ApplyClaim(by, t, spotID); err != nil {
			return nil, err
		}
		return cur, nil
	})
	if err != nil {
		return err
	}
	s.touch(id)
	return nil
}

// Restart returns the lobby to the joining phase, discarding all round and
// placement state. Host only.
func (s *Service) Restart(id, by string) error {
	err := store.Update(s.store, lobbyPath(id), func(cur *domain.Lobby) (*domain.Lobby, error) {
		if cur == nil {
			return nil, domain.ErrLobbyNotFound
		}
		if err := cur.Restart(by); err != nil {
			return nil, err
		}
		return cur, nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.stopRoundWorkLocked(s.sessionLocked(id))
	s.mu.Unlock()

	s.store.Delete(placementPath(id))
	for n := 1; n <= 3; n++ {
		s.store.Delete(roundPath(id, n))
	}
	s.touch(id)

	s.logger.Info("lobby restarted", "lobby", id, "by", by)
	return nil
}

// Stats reports live lobby and player counts.
func (s *Service) Stats() (lobbies, players int) {
	for _, p := range s.store.List("lobbies") {
		lobby, ok, err := store.Read[domain.Lobby](s.store, p)
		if err != nil || !ok {
			continue
		}
		if lobby.ID != "" && lobbyPath(lobby.ID) == p {
			lobbies++
			players += len(lobby.Players)
		}
	}
	return lobbies, players
}

// touch records activity on a lobby for the idle cleanup.
func (s *Service) touch(id string) {
	s.mu.Lock()
	s.sessionLocked(id).lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Service) sessionLocked(id string) *session {
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{lastActive: time.Now()}
		s.sessions[id] = sess
	}
	return sess
}

// stopRoundWorkLocked cancels round timers and watchers, leaving the lobby
// record and the start countdown alone.
func (s *Service) stopRoundWorkLocked(sess *session) {
	if sess.advanceTimer != nil {
		sess.advanceTimer.Stop()
		sess.advanceTimer = nil
	}
	sess.scheduledMatchup = 0
	if sess.tickerStop != nil {
		close(sess.tickerStop)
		sess.tickerStop = nil
	}
	for _, unsub := range sess.roundUnsubs {
		unsub()
	}
	sess.roundUnsubs = nil
}

func (s *Service) stopSessionLocked(id string) {
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	if sess.delayTimer != nil {
		sess.delayTimer.Stop()
	}
	s.stopRoundWorkLocked(sess)
	delete(s.sessions, id)
}

func (s *Service) generateCode() string {
	b := make([]byte, s.cfg.CodeLength)
	rand.Read(b)

	code := make([]byte, s.cfg.CodeLength)
	for i := range code {
		code[i] = CodeChars[int(b[i])%len(CodeChars)]
	}
	return string(code)
}

// cleanupLoop periodically removes lobbies idle past the session timeout.
func (s *Service) cleanupLoop() {
	defer s.wg.Done()

	interval := s.cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanupIdleLobbies()
		}
	}
}

func (s *Service) cleanupIdleLobbies() {
	now := time.Now()

	s.mu.Lock()
	var stale []string
	for id, sess := range s.sessions {
		if now.Sub(sess.lastActive) > s.cfg.SessionTimeout {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		s.stopSessionLocked(id)
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.store.Delete(lobbyPath(id))
		s.logger.Info("idle lobby cleaned up", "lobby", id)
	}
}

// lockedSource makes a math/rand source safe for use from the timer and
// watcher goroutines.
type lockedSource struct {
	mu  sync.Mutex
	src mrand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}
