package domain

// Source tells who actually wrote a submission
type Source string

const (
	SourceHuman Source = "HUMAN"
	SourceAI    Source = "AI"

	// SourceHidden replaces the real source in snapshots sent during voting
	SourceHidden Source = "HIDDEN"
)

// String returns the string representation of the source
func (s Source) String() string {
	return string(s)
}

// IsAI returns true if the submission was generated
func (s Source) IsAI() bool {
	return s == SourceAI
}

// Valid reports whether the source can be used by a submitting player
func (s Source) Valid() bool {
	return s == SourceHuman || s == SourceAI
}

// Truth returns the guess that correctly classifies this source
func (s Source) Truth() Guess {
	if s.IsAI() {
		return GuessBot
	}
	return GuessHuman
}

// HiddenAgent replaces the real persona id in snapshots sent during voting
const HiddenAgent = "HIDDEN"

// AutopilotAgent marks placeholder submissions filled in on timeout
const AutopilotAgent = "autopilot"
