package domain

import (
	"math/rand"
	"slices"
)

// ResetRound clears submissions, votes and reveal pointers
func (s *Session) ResetRound() {
	s.Submissions = []*Submission{}
	s.FinishedVotingIDs = []string{}
	s.RevealIndex = -1
	s.RevealStep = 0
}

// SubmissionBy returns the submission written by authorID this round
func (s *Session) SubmissionBy(authorID string) (*Submission, bool) {
	for _, sub := range s.Submissions {
		if sub.AuthorID == authorID {
			return sub, true
		}
	}
	return nil, false
}

// AddSubmission records a submission, at most one per author per round
func (s *Session) AddSubmission(sub *Submission) error {
	if _, exists := s.SubmissionBy(sub.AuthorID); exists {
		return ErrAlreadySubmitted
	}
	s.Submissions = append(s.Submissions, sub)
	return nil
}

// AllSubmitted returns true if every admitted player has a submission
func (s *Session) AllSubmitted() bool {
	if len(s.Players) == 0 {
		return false
	}
	for _, p := range s.Players {
		if _, ok := s.SubmissionBy(p.ID); !ok {
			return false
		}
	}
	return true
}

// ShuffleSubmissions randomizes the presentation order
func (s *Session) ShuffleSubmissions(rng *rand.Rand) {
	rng.Shuffle(len(s.Submissions), func(i, j int) {
		s.Submissions[i], s.Submissions[j] = s.Submissions[j], s.Submissions[i]
	})
}

// HasFinishedVoting checks if a player has locked their votes
func (s *Session) HasFinishedVoting(id string) bool {
	return slices.Contains(s.FinishedVotingIDs, id)
}

// MarkFinishedVoting locks a player's votes
func (s *Session) MarkFinishedVoting(id string) {
	if !s.HasFinishedVoting(id) {
		s.FinishedVotingIDs = append(s.FinishedVotingIDs, id)
	}
}

// AllFinishedVoting returns true if every admitted player has locked their votes
func (s *Session) AllFinishedVoting() bool {
	if len(s.Players) == 0 {
		return false
	}
	for _, p := range s.Players {
		if !s.HasFinishedVoting(p.ID) {
			return false
		}
	}
	return true
}

// MigratePlayerID rewrites every round reference from oldID to newID:
// submission authorship, vote keys and the finished-voting list.
func (s *Session) MigratePlayerID(oldID, newID string) {
	if oldID == newID {
		return
	}
	for _, sub := range s.Submissions {
		if sub.AuthorID == oldID {
			sub.AuthorID = newID
		}
		if g, ok := sub.Votes[oldID]; ok {
			sub.Votes[newID] = g
			delete(sub.Votes, oldID)
		}
	}
	for i, id := range s.FinishedVotingIDs {
		if id == oldID {
			s.FinishedVotingIDs[i] = newID
		}
	}
	if s.HostID == oldID {
		s.HostID = newID
	}
}

// HasMoreReveals reports whether another submission is left to reveal
func (s *Session) HasMoreReveals() bool {
	return s.RevealIndex < len(s.Submissions)-1
}

// IsLastRound reports whether the configured number of rounds has been played
func (s *Session) IsLastRound() bool {
	return s.Round >= s.MaxRounds
}
