package main

import (
	"fmt"
	"io"
	"strings"

	"ghostwriter/internal/domain"
)

// printSession writes a short summary of the lobby from one player's view
func printSession(w io.Writer, s *domain.Session, self string) {
	if s == nil {
		fmt.Fprintln(w, "not in a lobby")
		return
	}

	fmt.Fprintf(w, "room %s  phase %s  round %d/%d  theme %s\n", s.RoomCode, s.Phase, s.Round, s.MaxRounds, s.Theme)
	if s.CurrentPrompt != "" {
		fmt.Fprintf(w, "prompt: %s\n", s.CurrentPrompt)
	}
	if s.Phase == domain.PhaseInput {
		fmt.Fprintf(w, "time left: %ds\n", s.TimerSeconds)
	}

	fmt.Fprintln(w, "players:")
	for i, p := range s.Players {
		var tags []string
		if p.IsHost {
			tags = append(tags, "host")
		}
		if p.ID == self {
			tags = append(tags, "you")
		}
		if !p.IsConnected() {
			tags = append(tags, "disconnected")
		}
		if _, ok := s.SubmissionBy(p.ID); ok && s.Phase == domain.PhaseInput {
			tags = append(tags, "submitted")
		}
		if s.HasFinishedVoting(p.ID) {
			tags = append(tags, "locked")
		}
		suffix := ""
		if len(tags) > 0 {
			suffix = " (" + strings.Join(tags, ", ") + ")"
		}
		fmt.Fprintf(w, "  %d. %s  %d pts%s\n", i+1, p.Name, p.Score, suffix)
	}

	if len(s.PendingPlayers) > 0 {
		fmt.Fprintln(w, "waiting room:")
		for i, p := range s.PendingPlayers {
			fmt.Fprintf(w, "  %d. %s\n", i+1, p.Name)
		}
	}

	switch s.Phase {
	case domain.PhaseVoting, domain.PhaseReveal, domain.PhaseFinish:
		fmt.Fprintln(w, "answers:")
		for i, sub := range s.Submissions {
			line := fmt.Sprintf("  %d. %q", i+1, sub.Text)
			if revealed(s, i) {
				line += fmt.Sprintf("  [%s by %s]", sub.Source, playerName(s, sub.AuthorID))
			}
			fmt.Fprintln(w, line)
		}
	}
}

// revealed reports whether card i has shown its author yet
func revealed(s *domain.Session, i int) bool {
	switch s.Phase {
	case domain.PhaseFinish:
		return true
	case domain.PhaseReveal:
		return i < s.RevealIndex || (i == s.RevealIndex && s.RevealStep >= 3)
	}
	return false
}

func playerName(s *domain.Session, id string) string {
	if p, ok := s.Player(id); ok {
		return p.Name
	}
	return "someone who left"
}

// describeEvent renders a notification for the console, or "" to skip it
func describeEvent(e domain.Event, s *domain.Session) string {
	switch e.Type {
	case domain.EventStateChanged:
		if s == nil {
			return ""
		}
		return fmt.Sprintf("* %s", s.Phase)
	case domain.EventPlayerJoined:
		return fmt.Sprintf("* %v joined", e.Payload)
	case domain.EventPlayerPending:
		return fmt.Sprintf("* %v is waiting for approval (approve or reject)", e.Payload)
	case domain.EventPlayerLeft:
		return "* " + nameOf(e, s) + " disconnected"
	case domain.EventPlayerReconnected:
		return "* " + nameOf(e, s) + " reconnected"
	case domain.EventPlayerRemoved:
		return fmt.Sprintf("* a player left the lobby (%v)", e.Payload)
	case domain.EventChatReceived:
		if m, ok := e.Payload.(domain.ChatMessage); ok {
			return fmt.Sprintf("<%s> %s", m.SenderName, m.Text)
		}
	case domain.EventReactionReceived:
		if r, ok := e.Payload.(domain.Reaction); ok {
			if emote, ok := domain.Emotes[r.EmoteID]; ok {
				return fmt.Sprintf("%s %s", nameOf(e, s), emote.Char)
			}
		}
	case domain.EventChatPurged:
		return "* chat from a removed player was deleted"
	case domain.EventGhostOptions:
		if options, ok := e.Payload.([]string); ok {
			var b strings.Builder
			b.WriteString("* ghost suggestions:")
			for i, o := range options {
				fmt.Fprintf(&b, "\n  %d. %s", i+1, o)
			}
			return b.String()
		}
	case domain.EventGhostFailed, domain.EventPending, domain.EventRejected, domain.EventAuthFailed,
		domain.EventKicked, domain.EventRemoved, domain.EventLobbyClosed, domain.EventHostLost:
		return fmt.Sprintf("* %v", e.Payload)
	}
	return ""
}

func nameOf(e domain.Event, s *domain.Session) string {
	if s != nil {
		if p, ok := s.Player(e.PlayerID); ok {
			return p.Name
		}
		if p, ok := s.Pending(e.PlayerID); ok {
			return p.Name
		}
	}
	return "a player"
}
