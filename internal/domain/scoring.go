package domain

// Author awards by actual source and majority verdict
const (
	PointsFooledEveryone = 3 // AI submission judged HUMAN
	PointsCaught         = 0 // AI submission judged BOT
	PointsWronglyAccused = 2 // human submission judged BOT
	PointsSafe           = 1 // human submission judged HUMAN
	PointsCorrectGuess   = 1 // per voter whose guess matches the truth
)

// AuthorPoints returns what the author of a submission earns
func AuthorPoints(source Source, majority Guess) int {
	switch {
	case source.IsAI() && majority == GuessHuman:
		return PointsFooledEveryone
	case source.IsAI():
		return PointsCaught
	case majority == GuessBot:
		return PointsWronglyAccused
	default:
		return PointsSafe
	}
}

// ScoreRound computes per-player point deltas for one completed round,
// keyed by transport id. It does not touch the submissions.
func ScoreRound(submissions []*Submission) map[string]int {
	deltas := make(map[string]int)

	for _, sub := range submissions {
		deltas[sub.AuthorID] += AuthorPoints(sub.Source, sub.Tally().Majority())

		truth := sub.Source.Truth()
		for voterID, guess := range sub.Votes {
			if guess == truth {
				deltas[voterID] += PointsCorrectGuess
			}
		}
	}

	return deltas
}

// ApplyScores adds deltas to the matching admitted players. Deltas for
// players no longer in the roster are dropped.
func (s *Session) ApplyScores(deltas map[string]int) {
	for _, p := range s.Players {
		p.Score += deltas[p.ID]
	}
}
