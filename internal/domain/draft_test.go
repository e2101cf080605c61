package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnIndexSnakeOrder(t *testing.T) {
	cases := []struct {
		name string
		n    int
		want []int
	}{
		{name: "three players", n: 3, want: []int{0, 1, 2, 2, 1, 0}},
		{name: "four players", n: 4, want: []int{0, 1, 2, 3, 3, 2, 1, 0}},
		{name: "two players", n: 2, want: []int{0, 1, 1, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := make([]int, 0, 2*tc.n)
			for count := 0; count < 2*tc.n; count++ {
				got = append(got, TurnIndex(count, tc.n))
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApplyClaimEnforcesTurnOrder(t *testing.T) {
	p := NewPlacement(BoardStandard, []string{"alice", "bob", "carol"})

	assert.Equal(t, "alice", p.ActingPlayer())
	assert.ErrorIs(t, p.ApplyClaim("bob", SpotHouse, 1), ErrNotYourTurn)

	require.NoError(t, p.ApplyClaim("alice", SpotHouse, 1))
	assert.Equal(t, "bob", p.ActingPlayer())
}

func TestApplyClaimRejectsTakenAndOutOfRangeSpots(t *testing.T) {
	p := NewPlacement(BoardStandard, []string{"alice", "bob"})

	require.NoError(t, p.ApplyClaim("alice", SpotHouse, 10))
	assert.ErrorIs(t, p.ApplyClaim("bob", SpotHouse, 10), ErrSpotTaken)

	// Same id on the other spot type is a different spot.
	require.NoError(t, p.ApplyClaim("bob", SpotRoad, 10))

	assert.ErrorIs(t, p.ApplyClaim("bob", SpotHouse, 0), ErrSpotOutOfRange)
	assert.ErrorIs(t, p.ApplyClaim("bob", SpotHouse, 55), ErrSpotOutOfRange)
	assert.ErrorIs(t, p.ApplyClaim("bob", SpotRoad, 73), ErrSpotOutOfRange)
}

func TestLargeBoardSpotRanges(t *testing.T) {
	assert.Equal(t, 91, BoardLarge.SpotCount(SpotHouse))
	assert.Equal(t, 138, BoardLarge.SpotCount(SpotRoad))
	assert.Equal(t, 54, BoardStandard.SpotCount(SpotHouse))
	assert.Equal(t, 72, BoardStandard.SpotCount(SpotRoad))
}

func TestPlacementCompletesAfterTwoPasses(t *testing.T) {
	order := []string{"alice", "bob", "carol"}
	p := NewPlacement(BoardStandard, order)

	for i := 0; i < 2*len(order); i++ {
		by := order[TurnIndex(i, len(order))]
		require.NoError(t, p.ApplyClaim(by, SpotHouse, i+1))
	}

	assert.Equal(t, PlacementDone, p.Phase)
	assert.Equal(t, "", p.ActingPlayer())
	assert.ErrorIs(t, p.ApplyClaim("alice", SpotHouse, 20), ErrInvalidPhase)

	// Claims record player indexes in snake order.
	gotPlayers := make([]int, 0, len(p.ClaimedSpots))
	for _, c := range p.ClaimedSpots {
		gotPlayers = append(gotPlayers, c.Player)
	}
	assert.Equal(t, []int{0, 1, 2, 2, 1, 0}, gotPlayers)
}
