package app

import (
	"context"
	"errors"
	"strings"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/ghost"
	"ghostwriter/internal/protocol"
)

var errGhostUnavailable = errors.New("ghost writer unavailable")

// handleRequestGhost starts a generation for a player. The result is
// delivered later as GHOST_OPTIONS or GHOST_ERROR; the round never waits
// for it.
func (c *Coordinator) handleRequestGhost(from string, m protocol.RequestGhost) error {
	p, err := c.member(from)
	if err != nil {
		return err
	}
	if c.session.Phase != domain.PhaseInput {
		c.replyGhost(p, nil, domain.ErrInvalidPhase)
		return domain.ErrInvalidPhase
	}
	if c.ghost == nil || c.runner == nil {
		c.replyGhost(p, nil, errGhostUnavailable)
		return errGhostUnavailable
	}

	prompt := strings.TrimSpace(m.Prompt)
	if prompt == "" {
		prompt = c.session.CurrentPrompt
	}
	req := ghost.Request{
		Provider: c.session.Settings.Provider,
		APIKey:   c.session.Settings.APIKey,
		Theme:    c.session.Theme,
		Prompt:   prompt,
		AgentID:  m.AgentID,
		Persona:  m.Persona,
	}

	gen := c.ghost
	c.runner.Go(func(ctx context.Context) func() {
		options, err := gen.Generate(ctx, req)
		return func() { c.ghostDone(p, options, err) }
	})
	c.logger.Debug("ghost requested", "transportID", p.ID, "agent", m.AgentID)
	return nil
}

// ghostDone runs on the loop when a generation completes. Results for a
// player who has left, or for a closed lobby, are dropped.
func (c *Coordinator) ghostDone(p *domain.Player, options []string, err error) {
	if c.closed {
		return
	}
	if cur, ok := c.session.Player(p.ID); !ok || cur != p {
		return
	}
	if err != nil {
		c.logger.Info("ghost generation failed", "transportID", p.ID, "error", err)
	}
	c.replyGhost(p, options, err)
}

// replyGhost answers the requester. The host gets an event instead of a message.
func (c *Coordinator) replyGhost(p *domain.Player, options []string, err error) {
	if err != nil {
		msg := ghostErrorText(err)
		if p.ID == c.session.HostID {
			c.emit(domain.NewPlayerEvent(domain.EventGhostFailed, c.session.Phase, p.ID, msg))
			return
		}
		c.send(p.ID, protocol.GhostError{Message: msg})
		return
	}

	if p.ID == c.session.HostID {
		c.emit(domain.NewPlayerEvent(domain.EventGhostOptions, c.session.Phase, p.ID, options))
		return
	}
	c.send(p.ID, protocol.GhostOptions{Options: options})
}

func ghostErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPhase):
		return "Ghost writing is only available while answering."
	case errors.Is(err, errGhostUnavailable):
		return "Ghost writing is not available in this lobby."
	default:
		return ghost.UserMessage(err)
	}
}
