package domain

import (
	"math/rand"
	"slices"
)

// Round1 is the pairwise-vote round: two random players face off on a
// "most likely to" question and everyone else votes.
type Round1 struct {
	CurrentMatchup int               `json:"currentMatchup"` // 1-indexed
	Player1        string            `json:"player1"`
	Player2        string            `json:"player2"`
	Question       string            `json:"question"`
	Votes          map[string]string `json:"votes"` // voter -> chosen player
	VoteCounts     VoteCounts        `json:"voteCounts"`
	ShowResults    bool              `json:"showResults"`
	Completed      bool              `json:"completed"`
}

// NewRound1 initializes the round with its first matchup.
func NewRound1(players, questions []string, rng *rand.Rand) *Round1 {
	r := &Round1{CurrentMatchup: 1}
	r.roll(players, questions, rng)
	return r
}

// NextMatchup re-rolls players, question and votes for the next matchup.
// Repeat participants across matchups are allowed.
func (r *Round1) NextMatchup(players, questions []string, rng *rand.Rand) {
	r.CurrentMatchup++
	r.roll(players, questions, rng)
}

func (r *Round1) roll(players, questions []string, rng *rand.Rand) {
	shuffled := slices.Clone(players)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	r.Player1 = shuffled[0]
	r.Player2 = shuffled[1]
	r.Question = questions[rng.Intn(len(questions))]
	r.Votes = map[string]string{}
	r.VoteCounts = VoteCounts{}
	r.ShowResults = false
}

// CastVote records voter's choice. The two matchup players are ineligible,
// enforced here inside the transaction rather than only in the UI.
func (r *Round1) CastVote(voter, choice string, roster []string) error {
	if r.Completed || r.ShowResults {
		return ErrInvalidPhase
	}
	if !slices.Contains(roster, voter) {
		return ErrNotInLobby
	}
	if voter == r.Player1 || voter == r.Player2 {
		return ErrIneligibleVoter
	}
	if choice != r.Player1 && choice != r.Player2 {
		return ErrInvalidChoice
	}

	if r.Votes == nil {
		r.Votes = map[string]string{}
	}
	recordVote(r.Votes, &r.VoteCounts, voter, choice, r.Player1, r.Player2)
	return nil
}

// EligibleVoters counts roster members outside the matchup.
func (r *Round1) EligibleVoters(roster []string) int {
	n := 0
	for _, p := range roster {
		if p != r.Player1 && p != r.Player2 {
			n++
		}
	}
	return n
}

// Quorum reports whether every eligible voter has voted.
func (r *Round1) Quorum(roster []string) bool {
	eligible := r.EligibleVoters(roster)
	return eligible > 0 && len(r.Votes) >= eligible
}

// Winner returns the higher-voted player, or "" on a tie.
func (r *Round1) Winner() string {
	return matchupWinner(r.Player1, r.Player2, r.VoteCounts)
}
