package domain

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTiming = Round3Timing{Writing: 120, Voting: 30, Results: 10}

func newTestRound3(t *testing.T, players []string) *Round3 {
	t.Helper()
	return NewRound3(players, Round3Prompts, testTiming, testRNG())
}

func TestNewRound3PromptAssignment(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 8} {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			players := make([]string, n)
			for i := range players {
				players[i] = fmt.Sprintf("p%d", i)
			}
			r := newTestRound3(t, players)

			assert.Equal(t, n*PromptsPerPlayer/2, len(r.Matchups),
				"matchup count must be floor(3N/2)")
			assert.Equal(t, len(r.Matchups), r.TotalMatchups)

			for _, p := range players {
				assert.Len(t, r.PlayerPrompts[p], PromptsPerPlayer)
				assert.Len(t, r.PlayerAnswers[p], PromptsPerPlayer)
				assert.Zero(t, r.Scores[p])
			}

			// Every matchup's prompt appears in both participants' lists.
			for _, m := range r.Matchups {
				assert.NotEqual(t, m.Player1, m.Player2)
				assert.Contains(t, r.PlayerPrompts[m.Player1], m.Prompt)
				assert.Contains(t, r.PlayerPrompts[m.Player2], m.Prompt)
			}

			assert.Equal(t, Round3Writing, r.Phase)
			assert.Equal(t, testTiming.Writing, r.TimeRemaining)
		})
	}
}

func TestSetAnswerValidation(t *testing.T) {
	players := []string{"alice", "bob", "carol"}
	r := newTestRound3(t, players)

	require.NoError(t, r.SetAnswer("alice", 0, "first draft"))
	require.NoError(t, r.SetAnswer("alice", 0, "final answer"))
	assert.Equal(t, "final answer", r.PlayerAnswers["alice"][0])

	assert.ErrorIs(t, r.SetAnswer("mallory", 0, "x"), ErrNotInLobby)
	assert.ErrorIs(t, r.SetAnswer("alice", -1, "x"), ErrNoPrompt)
	assert.ErrorIs(t, r.SetAnswer("alice", PromptsPerPlayer, "x"), ErrNoPrompt)

	r.Phase = Round3Voting
	assert.ErrorIs(t, r.SetAnswer("alice", 1, "late"), ErrInvalidPhase)
}

func TestBeginVotingCopiesAnswersWithFallback(t *testing.T) {
	players := []string{"alice", "bob"}
	r := newTestRound3(t, players)

	m := r.Matchups[0]
	idx1 := slices.Index(r.PlayerPrompts[m.Player1], m.Prompt)
	require.NoError(t, r.SetAnswer(m.Player1, idx1, "something witty"))
	// Player2 writes nothing.

	r.TimeRemaining = 1
	r.Tick(testTiming)

	require.Equal(t, Round3Voting, r.Phase)
	assert.Equal(t, 0, r.CurrentMatchup)
	assert.Equal(t, testTiming.Voting, r.TimeRemaining)
	assert.Equal(t, "something witty", r.Matchups[0].Answer1)
	assert.Equal(t, NoAnswer, r.Matchups[0].Answer2)
}

func TestRound3VoteRules(t *testing.T) {
	players := []string{"alice", "bob", "carol", "dave"}
	r := newTestRound3(t, players)
	r.TimeRemaining = 1
	r.Tick(testTiming) // writing -> voting

	m := &r.Matchups[0]
	var voters []string
	for _, p := range players {
		if p != m.Player1 && p != m.Player2 {
			voters = append(voters, p)
		}
	}
	require.Len(t, voters, 2)

	assert.ErrorIs(t, r.CastVote(m.Player1, m.Player2, players), ErrIneligibleVoter)
	assert.ErrorIs(t, r.CastVote("mallory", m.Player1, players), ErrNotInLobby)
	assert.ErrorIs(t, r.CastVote(voters[0], "mallory", players), ErrInvalidChoice)

	require.NoError(t, r.CastVote(voters[0], m.Player1, players))
	require.NoError(t, r.CastVote(voters[0], m.Player2, players))
	assert.Equal(t, VoteCounts{Player1: 0, Player2: 1}, m.VoteCounts)

	assert.False(t, r.Quorum(players))
	require.NoError(t, r.CastVote(voters[1], m.Player2, players))
	assert.True(t, r.Quorum(players))
	assert.Equal(t, m.Player2, m.Winner())
}

func TestRound3TickWalksEveryMatchup(t *testing.T) {
	players := []string{"alice", "bob", "carol"}
	r := newTestRound3(t, players)
	require.Equal(t, 4, r.TotalMatchups)

	r.TimeRemaining = 1
	r.Tick(testTiming)
	require.Equal(t, Round3Voting, r.Phase)

	for i := 0; i < r.TotalMatchups; i++ {
		assert.Equal(t, i, r.CurrentMatchup)
		r.TimeRemaining = 1
		r.Tick(testTiming) // voting -> results
		require.Equal(t, Round3Results, r.Phase)
		assert.Equal(t, testTiming.Results, r.TimeRemaining)
		r.TimeRemaining = 1
		r.Tick(testTiming) // results -> next voting or complete
	}

	assert.Equal(t, Round3Complete, r.Phase)
	assert.Zero(t, r.TimeRemaining)

	// Ticking a complete round is a no-op.
	r.Tick(testTiming)
	assert.Equal(t, Round3Complete, r.Phase)
}

func TestRound3Scoring(t *testing.T) {
	r := &Round3{
		Phase:  Round3Results,
		Scores: map[string]int{"alice": 0, "bob": 0, "carol": 0},
		Matchups: []Matchup{
			{
				// Sweep: alice takes all 3 votes.
				Player1: "alice", Player2: "bob",
				VoteCounts: VoteCounts{Player1: 3, Player2: 0},
			},
			{
				// Plain win, no sweep.
				Player1: "bob", Player2: "carol",
				VoteCounts: VoteCounts{Player1: 2, Player2: 1},
			},
			{
				// Tie pays vote points only.
				Player1: "alice", Player2: "carol",
				VoteCounts: VoteCounts{Player1: 1, Player2: 1},
			},
		},
	}
	r.TotalMatchups = len(r.Matchups)
	r.CurrentMatchup = r.TotalMatchups - 1
	r.TimeRemaining = 1
	r.Tick(testTiming)

	require.Equal(t, Round3Complete, r.Phase)
	assert.Equal(t, 3*100+200+400+1*100, r.Scores["alice"])
	assert.Equal(t, 0+2*100+200, r.Scores["bob"])
	assert.Equal(t, 1*100+1*100, r.Scores["carol"])

	lb := r.Leaderboard()
	require.Len(t, lb, 3)
	assert.Equal(t, "alice", lb[0].Player)
	assert.Equal(t, "bob", lb[1].Player)
	assert.Equal(t, "carol", lb[2].Player)
}

func TestRound3QuorumTriggersResultsEarly(t *testing.T) {
	players := []string{"alice", "bob", "carol"}
	r := newTestRound3(t, players)
	r.TimeRemaining = 1
	r.Tick(testTiming)

	m := &r.Matchups[0]
	var voter string
	for _, p := range players {
		if p != m.Player1 && p != m.Player2 {
			voter = p
		}
	}
	require.NoError(t, r.CastVote(voter, m.Player1, players))
	require.True(t, r.Quorum(players))

	r.ShowResults(testTiming.Results)
	assert.Equal(t, Round3Results, r.Phase)
	assert.Equal(t, testTiming.Results, r.TimeRemaining)
}
