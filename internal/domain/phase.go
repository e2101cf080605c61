package domain

// Phase represents the coarse lifecycle state of a lobby.
type Phase string

const (
	PhaseLobby       Phase = "lobby"        // Waiting for players to join
	PhaseStarting    Phase = "starting"     // Host pressed start, roster frozen
	PhaseReadyCheck  Phase = "ready-check"  // Players acknowledging readiness
	PhaseRoundActive Phase = "round-active" // A round is in progress
	PhaseComplete    Phase = "complete"     // Session finished
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from the current phase to the
// target phase is valid. Transitions only move forward, except that a
// restart returns an active lobby to the joining phase.
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseLobby:       {PhaseStarting},
		PhaseStarting:    {PhaseReadyCheck},
		PhaseReadyCheck:  {PhaseRoundActive, PhaseComplete, PhaseLobby},
		PhaseRoundActive: {PhaseReadyCheck, PhaseComplete, PhaseLobby},
		PhaseComplete:    {PhaseLobby},
	}

	for _, next := range validTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}
