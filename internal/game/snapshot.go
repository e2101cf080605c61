package game

import (
	"gamenight/internal/domain"
	"gamenight/internal/store"
)

// Snapshot is the full client-visible state of one lobby, assembled from
// the lobby record and whichever sub-records currently exist. Clients
// derive everything they render from a snapshot alone.
type Snapshot struct {
	Lobby       *domain.Lobby       `json:"lobby"`
	Placement   *domain.Placement   `json:"placement,omitempty"`
	Round1      *domain.Round1      `json:"round1,omitempty"`
	Round2      *domain.Round2      `json:"round2,omitempty"`
	Round3      *domain.Round3      `json:"round3,omitempty"`
	Leaderboard []domain.ScoreEntry `json:"leaderboard,omitempty"`
}

// Snapshot assembles the current state of a lobby.
func (s *Service) Snapshot(id string) (*Snapshot, error) {
	lobby, err := s.Lobby(id)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Lobby: lobby}

	if placement, ok, err := store.Read[domain.Placement](s.store, placementPath(id)); err == nil && ok {
		snap.Placement = &placement
	}
	if r, ok, err := store.Read[domain.Round1](s.store, roundPath(id, 1)); err == nil && ok {
		snap.Round1 = &r
	}
	if r, ok, err := store.Read[domain.Round2](s.store, roundPath(id, 2)); err == nil && ok {
		snap.Round2 = &r
	}
	if r, ok, err := store.Read[domain.Round3](s.store, roundPath(id, 3)); err == nil && ok {
		snap.Round3 = &r
		if r.Phase == domain.Round3Complete {
			snap.Leaderboard = r.Leaderboard()
		}
	}

	return snap, nil
}

// Watch invokes fn with a fresh snapshot after every committed write under
// the lobby, and once immediately on subscribe. fn receives nil when the
// lobby is deleted. The returned function cancels the watch.
func (s *Service) Watch(id string, fn func(*Snapshot)) (unsubscribe func()) {
	return s.store.Subscribe(lobbyPath(id), func(ev store.Event) {
		snap, err := s.Snapshot(id)
		if err != nil {
			fn(nil)
			return
		}
		fn(snap)
	})
}
