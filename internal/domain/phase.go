package domain

// Phase represents the current phase of a session
type Phase string

const (
	PhaseLobby  Phase = "LOBBY"  // Accepting joins, no round data
	PhasePrompt Phase = "PROMPT" // Prompt shown, read delay running
	PhaseInput  Phase = "INPUT"  // Countdown, everyone submits one answer
	PhaseVoting Phase = "VOTING" // Everyone guesses HUMAN or BOT per submission
	PhaseReveal Phase = "REVEAL" // Step-wise reveal of each submission
	PhaseFinish Phase = "FINISH" // Round scored
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	// Returning to the lobby is always allowed
	if target == PhaseLobby {
		return true
	}

	validTransitions := map[Phase][]Phase{
		PhaseLobby:  {PhasePrompt},
		PhasePrompt: {PhaseInput},
		PhaseInput:  {PhaseVoting},
		PhaseVoting: {PhaseReveal},
		PhaseReveal: {PhaseFinish, PhasePrompt}, // Forced advance may skip straight to the next round
		PhaseFinish: {PhasePrompt},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// AllowsRename reports whether players may change their display name
func (p Phase) AllowsRename() bool {
	return p == PhaseLobby || p == PhaseFinish
}
