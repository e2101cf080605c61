package domain

import "math/rand"

// Round2 is the rotating-prompt round: one player at a time is "on stage"
// with a prompt to read aloud. There is no voting; the on-stage player
// advances the round when done. The round has no terminal state of its
// own, it lives until the record is torn down.
type Round2 struct {
	CurrentPlayer  string `json:"currentPlayer"`
	CurrentPrompt  string `json:"currentPrompt"`
	PreviousPlayer string `json:"previousPlayer,omitempty"`
}

// NewRound2 picks the first on-stage player and prompt.
func NewRound2(players, prompts []string, rng *rand.Rand) *Round2 {
	return &Round2{
		CurrentPlayer: players[rng.Intn(len(players))],
		CurrentPrompt: prompts[rng.Intn(len(prompts))],
	}
}

// Advance hands the stage to a new random player, never the one who just
// finished when more than one player exists, and draws a fresh prompt.
// Only the current on-stage player may advance.
func (r *Round2) Advance(by string, players, prompts []string, rng *rand.Rand) error {
	if by != r.CurrentPlayer {
		return ErrNotYourTurn
	}

	candidates := make([]string, 0, len(players))
	for _, p := range players {
		if p != r.CurrentPlayer {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		candidates = players
	}

	r.PreviousPlayer = r.CurrentPlayer
	r.CurrentPlayer = candidates[rng.Intn(len(candidates))]
	r.CurrentPrompt = prompts[rng.Intn(len(prompts))]
	return nil
}
