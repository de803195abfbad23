package domain

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s

	c.UsedPrompts = append([]string{}, s.UsedPrompts...)
	c.Blacklist = append([]string(nil), s.Blacklist...)
	c.FinishedVotingIDs = append([]string{}, s.FinishedVotingIDs...)

	c.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		c.Players[i] = &cp
	}

	c.PendingPlayers = make([]*PendingPlayer, len(s.PendingPlayers))
	for i, p := range s.PendingPlayers {
		cp := *p
		c.PendingPlayers[i] = &cp
	}

	c.Submissions = make([]*Submission, len(s.Submissions))
	for i, sub := range s.Submissions {
		c.Submissions[i] = sub.Clone()
	}

	return &c
}

// ForClients returns the copy of the session that may leave the host.
// Secrets and persistent identities are stripped. Until REVEAL the source
// and persona of every submission are replaced with HIDDEN.
func (s *Session) ForClients() *Session {
	c := s.Clone()

	c.Settings.Password = ""
	c.Settings.APIKey = ""
	c.Blacklist = nil

	for _, p := range c.Players {
		p.PersistentID = ""
	}
	for _, p := range c.PendingPlayers {
		p.PersistentID = ""
	}

	switch c.Phase {
	case PhasePrompt, PhaseInput, PhaseVoting:
		for _, sub := range c.Submissions {
			sub.Source = SourceHidden
			sub.AgentID = HiddenAgent
		}
	}

	return c
}
