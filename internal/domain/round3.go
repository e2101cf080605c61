package domain

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
)

// Round3Phase is the write/vote/score round's sub-state. Transitions are
// strictly forward: writing -> voting -> results -> (voting | complete).
type Round3Phase string

const (
	Round3Writing  Round3Phase = "writing"
	Round3Voting   Round3Phase = "voting"
	Round3Results  Round3Phase = "results"
	Round3Complete Round3Phase = "complete"
)

// PromptsPerPlayer is how many prompts each player answers in round 3.
const PromptsPerPlayer = 3

// NoAnswer fills a matchup slot whose author never wrote anything.
const NoAnswer = "No answer"

// Matchup pairs two players who share one prompt. Answers are copied in
// from PlayerAnswers at the writing->voting transition.
type Matchup struct {
	Prompt     string            `json:"prompt"`
	Player1    string            `json:"player1"`
	Player2    string            `json:"player2"`
	Answer1    string            `json:"answer1"`
	Answer2    string            `json:"answer2"`
	Votes      map[string]string `json:"votes"`
	VoteCounts VoteCounts        `json:"voteCounts"`
}

// Winner returns the higher-voted player, or "" on a tie.
func (m *Matchup) Winner() string {
	return matchupWinner(m.Player1, m.Player2, m.VoteCounts)
}

// Round3 is the writing/voting/scoring round. One coordinating process
// decrements TimeRemaining once per second; every phase transition hangs off
// that countdown or off vote quorum.
type Round3 struct {
	Phase          Round3Phase         `json:"phase"`
	CurrentMatchup int                 `json:"currentMatchup"` // 0-indexed
	TotalMatchups  int                 `json:"totalMatchups"`
	TimeRemaining  int                 `json:"timeRemaining"` // seconds
	PlayerPrompts  map[string][]string `json:"playerPrompts"`
	PlayerAnswers  map[string][]string `json:"playerAnswers"`
	Matchups       []Matchup           `json:"matchups"`
	Scores         map[string]int      `json:"scores"`
}

// Round3Timing carries the configured phase durations in seconds.
type Round3Timing struct {
	Writing int
	Voting  int
	Results int
}

// Scoring constants: every vote is worth points, winning a matchup pays a
// bonus, and shutting the opponent out pays a further sweep bonus.
const (
	PointsPerVote = 100
	WinBonus      = 200
	SweepBonus    = 400
)

// NewRound3 assigns prompts and builds the matchup list. Prompts are packed
// so that each player gets exactly PromptsPerPlayer prompts and each prompt
// is shared by exactly two players wherever a pairing is feasible, giving
// floor(3N/2) matchups at best; slots that cannot be paired are filled with
// self-only filler prompts that never produce a matchup.
func NewRound3(players, prompts []string, timing Round3Timing, rng *rand.Rand) *Round3 {
	r := &Round3{
		Phase:         Round3Writing,
		TimeRemaining: timing.Writing,
		PlayerPrompts: make(map[string][]string, len(players)),
		PlayerAnswers: make(map[string][]string, len(players)),
		Matchups:      []Matchup{},
		Scores:        make(map[string]int, len(players)),
	}

	for _, p := range players {
		r.PlayerPrompts[p] = []string{}
		r.PlayerAnswers[p] = make([]string, PromptsPerPlayer)
		r.Scores[p] = 0
	}

	pool := slices.Clone(prompts)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	var pairs [][2]string
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			pairs = append(pairs, [2]string{players[i], players[j]})
		}
	}

	// Each matchup consumes one prompt slot from two players, so the pack
	// tops out at floor(3N/2). Greedily pair the least-loaded players.
	maxMatchups := len(players) * PromptsPerPlayer / 2
	counts := make(map[string]int, len(players))
	next := 0
	for len(r.Matchups) < maxMatchups && next < len(pool) {
		best := -1
		bestLoad := PromptsPerPlayer * 2
		for i, pair := range pairs {
			load := counts[pair[0]] + counts[pair[1]]
			if counts[pair[0]] < PromptsPerPlayer && counts[pair[1]] < PromptsPerPlayer && load < bestLoad {
				best = i
				bestLoad = load
			}
		}
		if best < 0 {
			break
		}

		p1, p2 := pairs[best][0], pairs[best][1]
		prompt := pool[next]
		next++
		r.PlayerPrompts[p1] = append(r.PlayerPrompts[p1], prompt)
		r.PlayerPrompts[p2] = append(r.PlayerPrompts[p2], prompt)
		counts[p1]++
		counts[p2]++
		r.Matchups = append(r.Matchups, Matchup{
			Prompt:  prompt,
			Player1: p1,
			Player2: p2,
			Votes:   map[string]string{},
		})
	}

	// Leftover slots get unshared filler prompts: answered and shown, never
	// matched against anyone.
	for _, p := range players {
		for len(r.PlayerPrompts[p]) < PromptsPerPlayer {
			if next < len(pool) && !slices.Contains(r.PlayerPrompts[p], pool[next]) {
				r.PlayerPrompts[p] = append(r.PlayerPrompts[p], pool[next])
				next++
				continue
			}
			filler := fmt.Sprintf("Bonus prompt %d for %s", len(r.PlayerPrompts[p])+1, p)
			r.PlayerPrompts[p] = append(r.PlayerPrompts[p], filler)
		}
	}

	r.TotalMatchups = len(r.Matchups)
	return r
}

// SetAnswer records one of a player's answers during the writing phase.
// Each player only ever writes their own slots, so concurrent edits across
// players commute.
func (r *Round3) SetAnswer(player string, idx int, answer string) error {
	if r.Phase != Round3Writing {
		return ErrInvalidPhase
	}
	answers, ok := r.PlayerAnswers[player]
	if !ok {
		return ErrNotInLobby
	}
	if idx < 0 || idx >= len(answers) {
		return ErrNoPrompt
	}

	answers[idx] = answer
	return nil
}

// CastVote records voter's choice for the current matchup, with the same
// eligibility and idempotency rules as round 1.
func (r *Round3) CastVote(voter, choice string, roster []string) error {
	if r.Phase != Round3Voting || r.CurrentMatchup >= len(r.Matchups) {
		return ErrInvalidPhase
	}
	m := &r.Matchups[r.CurrentMatchup]
	if !slices.Contains(roster, voter) {
		return ErrNotInLobby
	}
	if voter == m.Player1 || voter == m.Player2 {
		return ErrIneligibleVoter
	}
	if choice != m.Player1 && choice != m.Player2 {
		return ErrInvalidChoice
	}

	if m.Votes == nil {
		m.Votes = map[string]string{}
	}
	recordVote(m.Votes, &m.VoteCounts, voter, choice, m.Player1, m.Player2)
	return nil
}

// Quorum reports whether every voter eligible for the current matchup has
// voted.
func (r *Round3) Quorum(roster []string) bool {
	if r.Phase != Round3Voting || r.CurrentMatchup >= len(r.Matchups) {
		return false
	}
	m := &r.Matchups[r.CurrentMatchup]
	eligible := 0
	for _, p := range roster {
		if p != m.Player1 && p != m.Player2 {
			eligible++
		}
	}
	return eligible > 0 && len(m.Votes) >= eligible
}

// ShowResults forces the current matchup into its results window, used both
// by the quorum trigger and by the timer reaching zero.
func (r *Round3) ShowResults(resultsSeconds int) {
	if r.Phase != Round3Voting {
		return
	}
	r.Phase = Round3Results
	r.TimeRemaining = resultsSeconds
}

// Tick advances the countdown by one second and performs whatever phase
// transition falls due at zero. Exactly one coordinating process calls this.
func (r *Round3) Tick(timing Round3Timing) {
	if r.Phase == Round3Complete {
		return
	}

	r.TimeRemaining--
	if r.TimeRemaining > 0 {
		return
	}

	switch r.Phase {
	case Round3Writing:
		r.beginVoting(timing.Voting)
	case Round3Voting:
		r.ShowResults(timing.Results)
	case Round3Results:
		r.advance(timing.Voting)
	}
}

// beginVoting materializes each matchup's answers from PlayerAnswers at the
// index matching the shared prompt, then opens voting on the first matchup.
func (r *Round3) beginVoting(votingSeconds int) {
	for i := range r.Matchups {
		m := &r.Matchups[i]
		m.Answer1 = r.answerFor(m.Player1, m.Prompt)
		m.Answer2 = r.answerFor(m.Player2, m.Prompt)
	}
	r.Phase = Round3Voting
	r.CurrentMatchup = 0
	r.TimeRemaining = votingSeconds

	if len(r.Matchups) == 0 {
		r.complete()
	}
}

func (r *Round3) answerFor(player, prompt string) string {
	idx := slices.Index(r.PlayerPrompts[player], prompt)
	if idx < 0 || idx >= len(r.PlayerAnswers[player]) {
		return NoAnswer
	}
	if a := r.PlayerAnswers[player][idx]; a != "" {
		return a
	}
	return NoAnswer
}

// advance moves to the next matchup's voting window, or finishes the round
// after the final matchup's results.
func (r *Round3) advance(votingSeconds int) {
	r.CurrentMatchup++
	if r.CurrentMatchup >= r.TotalMatchups {
		r.complete()
		return
	}
	r.Phase = Round3Voting
	r.TimeRemaining = votingSeconds
}

// complete computes all scores in one pass over the final tallies. The
// calculation is a pure function of the tallies: re-running it over the
// same votes reproduces identical scores.
func (r *Round3) complete() {
	for _, m := range r.Matchups {
		v1, v2 := m.VoteCounts.Player1, m.VoteCounts.Player2
		r.Scores[m.Player1] += v1 * PointsPerVote
		r.Scores[m.Player2] += v2 * PointsPerVote

		if v1 > v2 {
			r.Scores[m.Player1] += WinBonus
		} else if v2 > v1 {
			r.Scores[m.Player2] += WinBonus
		}

		total := v1 + v2
		if total > 0 {
			if v1 == total {
				r.Scores[m.Player1] += SweepBonus
			} else if v2 == total {
				r.Scores[m.Player2] += SweepBonus
			}
		}
	}
	r.Phase = Round3Complete
	r.TimeRemaining = 0
}

// ScoreEntry is one leaderboard row.
type ScoreEntry struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
}

// Leaderboard returns scores sorted descending, names ascending on ties.
func (r *Round3) Leaderboard() []ScoreEntry {
	entries := make([]ScoreEntry, 0, len(r.Scores))
	for p, s := range r.Scores {
		entries = append(entries, ScoreEntry{Player: p, Score: s})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Player < entries[j].Player
	})
	return entries
}
