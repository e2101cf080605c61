package game

import (
	"encoding/json"
	"errors"
	"time"

	"gamenight/internal/domain"
	"gamenight/internal/store"
)

// SelectRound activates round n for the lobby, replacing any round already
// in progress. The round record is always rebuilt from scratch, so
// re-selecting a round restarts it cleanly.
func (s *Service) SelectRound(id, by string, n int) error {
	var lobby domain.Lobby
	err := store.Update(s.store, lobbyPath(id), func(cur *domain.Lobby) (*domain.Lobby, error) {
		if cur == nil {
			return nil, domain.ErrLobbyNotFound
		}
		if err := cur.SelectRound(by, n); err != nil {
			return nil, err
		}
		lobby = *cur
		return cur, nil
	})
	if err != nil {
		return err
	}
	s.touch(id)

	s.mu.Lock()
	s.stopRoundWorkLocked(s.sessionLocked(id))
	s.mu.Unlock()
	for i := 1; i <= 3; i++ {
		s.store.Delete(roundPath(id, i))
	}

	players := lobby.Players
	switch n {
	case 1:
		round := domain.NewRound1(players, domain.Round1Questions, s.rng)
		if err := s.store.Set(roundPath(id, 1), round); err != nil {
			return err
		}
		s.watchRound1(id, players)
	case 2:
		round := domain.NewRound2(players, domain.Round2Prompts, s.rng)
		if err := s.store.Set(roundPath(id, 2), round); err != nil {
			return err
		}
	case 3:
		round := domain.NewRound3(players, domain.Round3Prompts, s.round3Timing(), s.rng)
		if err := s.store.Set(roundPath(id, 3), round); err != nil {
			return err
		}
		s.watchRound3(id, players)
		s.runRound3Ticker(id)
	}

	s.logger.Info("round selected", "lobby", id, "round", n, "by", by)
	return nil
}

func (s *Service) round3Timing() domain.Round3Timing {
	return domain.Round3Timing{
		Writing: s.cfg.WritingSeconds,
		Voting:  s.cfg.VotingSeconds,
		Results: s.cfg.Round3Results,
	}
}

// CastRound1Vote records a head-to-head vote. The quorum watcher reveals
// results as soon as every eligible voter has voted.
func (s *Service) CastRound1Vote(id, voter, choice string) error {
	lobby, err := s.Lobby(id)
	if err != nil {
		return err
	}

	err = store.Update(s.store, roundPath(id, 1), func(cur *domain.Round1) (*domain.Round1, error) {
		if cur == nil {
			return nil, domain.ErrRoundNotActive
		}
		if err := cur.CastVote(voter, choice, lobby.Players); err != nil {
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

// SkipVotes ends the current matchup's voting early. Host only; votes cast
// so far stand.
func (s *Service) SkipVotes(id, by string) error {
	lobby, err := s.Lobby(id)
	if err != nil {
		return err
	}
	if !lobby.IsHost(by) {
		return domain.ErrNotHost
	}

	err = store.Update(s.store, roundPath(id, 1), func(cur *domain.Round1) (*domain.Round1, error) {
		if cur == nil {
			return nil, domain.ErrRoundNotActive
		}
		if cur.Completed || cur.ShowResults {
			return nil, store.ErrAborted
		}
		cur.ShowResults = true
		return cur, nil
	})
	if errors.Is(err, store.ErrAborted) {
		return nil
	}
	if err != nil {
		return err
	}
	s.touch(id)
	return nil
}

// watchRound1 reacts to every committed write of the round 1 record: it
// flips results on at quorum, and schedules the advance to the next matchup
// once results are showing. The schedule is keyed by matchup number so
// repeated events never double-advance.
func (s *Service) watchRound1(id string, roster []string) {
	unsub := s.store.Subscribe(roundPath(id, 1), func(ev store.Event) {
		if ev.Data == nil {
			return
		}
		var r domain.Round1
		if err := json.Unmarshal(ev.Data, &r); err != nil {
			s.logger.Error("bad round record", "lobby", id, "error", err)
			return
		}
		if r.Completed {
			return
		}

		if !r.ShowResults && r.Quorum(roster) {
			s.revealRound1(id)
			return
		}
		if r.ShowResults {
			s.scheduleRound1Advance(id, roster, r.CurrentMatchup)
		}
	})

	s.mu.Lock()
	sess := s.sessionLocked(id)
	sess.roundUnsubs = append(sess.roundUnsubs, unsub)
	s.mu.Unlock()
}

func (s *Service) revealRound1(id string) {
	err := store.Update(s.store, roundPath(id, 1), func(cur *domain.Round1) (*domain.Round1, error) {
		if cur == nil || cur.Completed || cur.ShowResults {
			return nil, store.ErrAborted
		}
		cur.ShowResults = true
		return cur, nil
	})
	if err != nil && !errors.Is(err, store.ErrAborted) {
		s.logger.Error("reveal failed", "lobby", id, "error", err)
	}
}

func (s *Service) scheduleRound1Advance(id string, roster []string, matchup int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionLocked(id)
	if sess.scheduledMatchup == matchup {
		return
	}
	sess.scheduledMatchup = matchup
	sess.advanceTimer = time.AfterFunc(time.Duration(s.cfg.ResultsSeconds)*time.Second, func() {
		s.advanceRound1(id, roster, matchup)
	})
}

// advanceRound1 moves past the given matchup once its results window ends.
// The guard on the matchup number makes the operation a no-op if anything
// else already advanced the round.
func (s *Service) advanceRound1(id string, roster []string, matchup int) {
	var completed bool
	err := store.Update(s.store, roundPath(id, 1), func(cur *domain.Round1) (*domain.Round1, error) {
		if cur == nil || cur.Completed || !cur.ShowResults || cur.CurrentMatchup != matchup {
			return nil, store.ErrAborted
		}
		if cur.CurrentMatchup >= s.cfg.TotalMatchups {
			cur.Completed = true
			cur.ShowResults = false
			completed = true
		} else {
			cur.NextMatchup(roster, domain.Round1Questions, s.rng)
			completed = false
		}
		return cur, nil
	})
	if errors.Is(err, store.ErrAborted) {
		return
	}
	if err != nil {
		s.logger.Error("matchup advance failed", "lobby", id, "error", err)
		return
	}

	if completed {
		s.finishRound(id)
	}
}

// finishRound returns the lobby to round selection after a round ends on
// its own.
func (s *Service) finishRound(id string) {
	err := store.Update(s.store, lobbyPath(id), func(cur *domain.Lobby) (*domain.Lobby, error) {
		if cur == nil || cur.Phase != domain.PhaseRoundActive {
			return nil, store.ErrAborted
		}
		cur.FinishRound()
		return cur, nil
	})
	if err != nil && !errors.Is(err, store.ErrAborted) {
		s.logger.Error("finish round failed", "lobby", id, "error", err)
	}
}

// AdvanceTurn passes the round 2 stage to the next random player. Only the
// player currently on stage may advance.
func (s *Service) AdvanceTurn(id, by string) error {
	lobby, err := s.Lobby(id)
	if err != nil {
		return err
	}

	err = store.Update(s.store, roundPath(id, 2), func(cur *domain.Round2) (*domain.Round2, error) {
		if cur == nil {
			return nil, domain.ErrRoundNotActive
		}
		if err := cur.Advance(by, lobby.Players, domain.Round2Prompts, s.rng); err != nil {
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

// SubmitAnswer records one of a player's round 3 answers during the writing
// phase.
func (s *Service) SubmitAnswer(id, player string, idx int, answer string) error {
	err := store.Update(s.store, roundPath(id, 3), func(cur *domain.Round3) (*domain.Round3, error) {
		if cur == nil {
			return nil, domain.ErrRoundNotActive
		}
		if err := cur.SetAnswer(player, idx, answer); err != nil {
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

// CastRound3Vote records a vote on the current round 3 matchup.
func (s *Service) CastRound3Vote(id, voter, choice string) error {
	lobby, err := s.Lobby(id)
	if err != nil {
		return err
	}

	err = store.Update(s.store, roundPath(id, 3), func(cur *domain.Round3) (*domain.Round3, error) {
		if cur == nil {
			return nil, domain.ErrRoundNotActive
		}
		if err := cur.CastVote(voter, choice, lobby.Players); err != nil {
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

// watchRound3 cuts a voting window short once every eligible voter has
// voted. The countdown keeps running; quorum just drops it to the results
// window immediately.
func (s *Service) watchRound3(id string, roster []string) {
	unsub := s.store.Subscribe(roundPath(id, 3), func(ev store.Event) {
		if ev.Data == nil {
			return
		}
		var r domain.Round3
		if err := json.Unmarshal(ev.Data, &r); err != nil {
			s.logger.Error("bad round record", "lobby", id, "error", err)
			return
		}
		if r.Phase == domain.Round3Voting && r.Quorum(roster) {
			s.revealRound3(id, roster)
		}
	})

	s.mu.Lock()
	sess := s.sessionLocked(id)
	sess.roundUnsubs = append(sess.roundUnsubs, unsub)
	s.mu.Unlock()
}

func (s *Service) revealRound3(id string, roster []string) {
	err := store.Update(s.store, roundPath(id, 3), func(cur *domain.Round3) (*domain.Round3, error) {
		if cur == nil || cur.Phase != domain.Round3Voting || !cur.Quorum(roster) {
			return nil, store.ErrAborted
		}
		cur.ShowResults(s.cfg.Round3Results)
		return cur, nil
	})
	if err != nil && !errors.Is(err, store.ErrAborted) {
		s.logger.Error("reveal failed", "lobby", id, "error", err)
	}
}

// runRound3Ticker drives the round 3 countdown at one tick per second until
// the round completes or the lobby tears the round down.
func (s *Service) runRound3Ticker(id string) {
	stop := make(chan struct{})

	s.mu.Lock()
	sess := s.sessionLocked(id)
	sess.tickerStop = stop
	s.mu.Unlock()

	timing := s.round3Timing()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-s.done:
				return
			case <-ticker.C:
				var phase domain.Round3Phase
				err := store.Update(s.store, roundPath(id, 3), func(cur *domain.Round3) (*domain.Round3, error) {
					if cur == nil {
						return nil, store.ErrAborted
					}
					cur.Tick(timing)
					phase = cur.Phase
					return cur, nil
				})
				if errors.Is(err, store.ErrAborted) {
					return
				}
				if err != nil {
					s.logger.Error("round tick failed", "lobby", id, "error", err)
					continue
				}
				if phase == domain.Round3Complete {
					s.completeGame(id)
					return
				}
			}
		}
	}()
}

// completeGame marks the session finished after the final round; the
// leaderboard stays visible until the host restarts.
func (s *Service) completeGame(id string) {
	err := store.Update(s.store, lobbyPath(id), func(cur *domain.Lobby) (*domain.Lobby, error) {
		if cur == nil || cur.Phase != domain.PhaseRoundActive {
			return nil, store.ErrAborted
		}
		cur.Phase = domain.PhaseComplete
		return cur, nil
	})
	if err != nil && !errors.Is(err, store.ErrAborted) {
		s.logger.Error("complete failed", "lobby", id, "error", err)
	}
	s.logger.Info("game complete", "lobby", id)
}
