package domain

// VoteCounts is an incrementally maintained tally for a two-player matchup.
type VoteCounts struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// recordVote applies one voter's choice to a votes map and its running
// tally. A re-vote first removes the voter's previous contribution (clamped
// at zero) before adding the new one, so casting v1 then v2 always ends in
// the same state as a single vote of v2, even under transaction retries.
func recordVote(votes map[string]string, counts *VoteCounts, voter, choice, player1, player2 string) {
	if prev, ok := votes[voter]; ok {
		switch prev {
		case player1:
			counts.Player1 = max(0, counts.Player1-1)
		case player2:
			counts.Player2 = max(0, counts.Player2-1)
		}
	}

	votes[voter] = choice
	switch choice {
	case player1:
		counts.Player1++
	case player2:
		counts.Player2++
	}
}

// matchupWinner returns the strictly higher-voted player, or "" on a tie.
// A tie is a valid terminal outcome, not an error.
func matchupWinner(player1, player2 string, counts VoteCounts) string {
	switch {
	case counts.Player1 > counts.Player2:
		return player1
	case counts.Player2 > counts.Player1:
		return player2
	default:
		return ""
	}
}
