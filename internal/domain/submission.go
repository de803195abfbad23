package domain

// MaxAnswerLen caps an answer's length in runes
const MaxAnswerLen = 500

// Submission is one author's answer for the current round
type Submission struct {
	AuthorID string           `json:"authorId"`
	Text     string           `json:"text"`
	Source   Source           `json:"source"`
	AgentID  string           `json:"agentId,omitempty"`
	Votes    map[string]Guess `json:"votes"` // voter transport id -> guess
}

// NewSubmission creates a new submission with an empty vote map
func NewSubmission(authorID, text string, source Source, agentID string) *Submission {
	return &Submission{
		AuthorID: authorID,
		Text:     text,
		Source:   source,
		AgentID:  agentID,
		Votes:    make(map[string]Guess),
	}
}

// Tally counts the votes cast on this submission
func (s *Submission) Tally() VoteTally {
	var t VoteTally
	for _, g := range s.Votes {
		if g == GuessHuman {
			t.Human++
		} else {
			t.Bot++
		}
	}
	return t
}

// Clone returns a deep copy
func (s *Submission) Clone() *Submission {
	c := *s
	c.Votes = make(map[string]Guess, len(s.Votes))
	for k, v := range s.Votes {
		c.Votes[k] = v
	}
	return &c
}
