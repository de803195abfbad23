package domain

// Guess is a voter's verdict on a submission
type Guess string

const (
	GuessHuman Guess = "HUMAN"
	GuessBot   Guess = "BOT"
)

// Valid reports whether the guess is one of the known verdicts
func (g Guess) Valid() bool {
	return g == GuessHuman || g == GuessBot
}

// VoteTally counts verdicts for one submission
type VoteTally struct {
	Human int `json:"human"`
	Bot   int `json:"bot"`
}

// Majority returns the winning verdict, ties favor HUMAN
func (t VoteTally) Majority() Guess {
	if t.Human >= t.Bot {
		return GuessHuman
	}
	return GuessBot
}
