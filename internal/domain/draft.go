package domain

// SpotType distinguishes the two kinds of claimable board locations.
type SpotType string

const (
	SpotHouse SpotType = "house"
	SpotRoad  SpotType = "road"
)

// PlacementPhase tracks the settlement game's initial placement.
type PlacementPhase string

const (
	PlacementSetup PlacementPhase = "setup"
	PlacementDone  PlacementPhase = "done"
)

// Claim is one accepted board claim. Player is an index into the placement
// order, not a name, so the record stays valid if names are ever re-rendered.
type Claim struct {
	Type   SpotType `json:"type"`
	ID     int      `json:"id"`
	Player int      `json:"player"`
}

// BoardSize selects the spot ranges for the settlement board.
type BoardSize int

const (
	BoardStandard BoardSize = 19 // 19 tiles: 54 house spots, 72 road spots
	BoardLarge    BoardSize = 30 // 30 tiles: 91 house spots, 138 road spots
)

// SpotCount returns the number of claimable spots of type t on the board.
func (b BoardSize) SpotCount(t SpotType) int {
	switch {
	case b == BoardLarge && t == SpotHouse:
		return 91
	case b == BoardLarge && t == SpotRoad:
		return 138
	case t == SpotHouse:
		return 54
	default:
		return 72
	}
}

// Placement is the settlement game's shared placement record. Order is the
// lobby's fixed player order, denormalized in at game start so that claim
// validation is self-contained within one transaction.
type Placement struct {
	Board          BoardSize      `json:"board"`
	Order          []string       `json:"order"`
	ClaimedSpots   []Claim        `json:"claimedSpots"`
	PlacementCount int            `json:"placementCount"`
	Phase          PlacementPhase `json:"placementPhase"`
}

// NewPlacement creates a fresh placement record for the given turn order.
func NewPlacement(board BoardSize, order []string) *Placement {
	return &Placement{
		Board:        board,
		Order:        order,
		ClaimedSpots: []Claim{},
		Phase:        PlacementSetup,
	}
}

// TurnIndex computes the acting player's index for the count-th placement
// (0-indexed) in a snake draft over n players: a forward pass 0..n-1
// followed by a reverse pass n-1..0, so everyone places once per pass with
// the second pass reversed.
func TurnIndex(count, n int) int {
	if count < n {
		return count
	}
	return 2*n - 1 - count
}

// ActingPlayer returns the name of the player whose turn it is to place.
// Derivable by any client from shared state alone.
func (p *Placement) ActingPlayer() string {
	if p.Phase != PlacementSetup || len(p.Order) == 0 {
		return ""
	}
	return p.Order[TurnIndex(p.PlacementCount, len(p.Order))]
}

// ApplyClaim validates and records a claim by the named player. All checks
// run against the snapshot the enclosing transaction supplies, closing the
// race between two clients claiming on the same turn.
func (p *Placement) ApplyClaim(by string, t SpotType, id int) error {
	if p.Phase != PlacementSetup {
		return ErrInvalidPhase
	}
	if by != p.ActingPlayer() {
		return ErrNotYourTurn
	}
	if id < 1 || id > p.Board.SpotCount(t) {
		return ErrSpotOutOfRange
	}
	for _, c := range p.ClaimedSpots {
		if c.Type == t && c.ID == id {
			return ErrSpotTaken
		}
	}

	n := len(p.Order)
	p.ClaimedSpots = append(p.ClaimedSpots, Claim{
		Type:   t,
		ID:     id,
		Player: TurnIndex(p.PlacementCount, n),
	})
	p.PlacementCount++
	if p.PlacementCount >= 2*n {
		p.Phase = PlacementDone
	}
	return nil
}
