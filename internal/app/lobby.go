package app

import (
	"strings"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/protocol"
)

// handleJoin runs the admission pipeline for a new connection: ban check,
// host identity check, resurrection, password, name, then waiting room or
// direct admission.
func (c *Coordinator) handleJoin(from string, m protocol.Join) {
	if c.session.IsMember(from) {
		c.logger.Debug("duplicate join ignored", "transportID", from)
		return
	}

	if c.session.IsBanned(m.PersistentID) {
		c.logger.Info("join rejected", "transportID", from, "error", domain.ErrBanned)
		c.refuse(from, protocol.Rejected{Reason: protocol.ReasonBanned})
		return
	}

	if p, ok := c.session.PlayerByPersistentID(m.PersistentID); ok {
		// one roster entry per persistent id; the host's seat is never shared
		if p.IsHost {
			c.logger.Info("join rejected", "transportID", from, "error", domain.ErrHostIdentity)
			c.refuse(from, protocol.Rejected{Reason: protocol.ReasonHostIdentity})
			return
		}
		c.resurrect(p, from)
		return
	}

	settings := c.session.Settings
	if settings.RequirePassword && m.Password != settings.Password {
		c.logger.Info("join rejected", "transportID", from, "error", domain.ErrWrongPassword)
		c.refuse(from, protocol.AuthError{Reason: protocol.ReasonBadPassword})
		return
	}

	name := strings.TrimSpace(m.DisplayName)
	if name == "" {
		c.refuse(from, protocol.Rejected{Reason: protocol.ReasonNameRequired})
		return
	}
	if c.session.NameTaken(name, "") {
		c.logger.Info("join rejected", "transportID", from, "name", name, "error", domain.ErrNameTaken)
		c.refuse(from, protocol.Rejected{Reason: protocol.ReasonNameTaken})
		return
	}
	if len(c.session.Players) >= domain.AvatarSlots {
		c.logger.Info("join rejected", "transportID", from, "error", domain.ErrLobbyFull)
		c.refuse(from, protocol.Rejected{Reason: protocol.ReasonLobbyFull})
		return
	}

	if settings.EnableWaitingRoom {
		c.session.AddPending(&domain.PendingPlayer{ID: from, Name: name, PersistentID: m.PersistentID})
		c.send(from, protocol.Pending{Message: protocol.ReasonWaiting})
		c.logger.Info("player waiting for approval", "transportID", from, "name", name)
		c.emit(domain.NewPlayerEvent(domain.EventPlayerPending, c.session.Phase, from, name))
		c.broadcastState()
		return
	}

	if err := c.admit(from, name, m.PersistentID); err != nil {
		c.logger.Info("join rejected", "transportID", from, "error", err)
		c.refuse(from, protocol.Rejected{Reason: protocol.ReasonLobbyFull})
	}
}

// admit seats a player on a free avatar and syncs everyone
func (c *Coordinator) admit(id, name, persistentID string) error {
	avatar, err := c.session.FreeAvatar(c.rng)
	if err != nil {
		return err
	}
	if err := c.session.AddPlayer(domain.NewPlayer(id, name, persistentID, avatar, false)); err != nil {
		return err
	}
	c.logger.Info("player joined", "transportID", id, "name", name, "avatar", avatar)
	c.emit(domain.NewPlayerEvent(domain.EventPlayerJoined, c.session.Phase, id, name))
	c.broadcastState()
	return nil
}

// ApprovePending admits a waiting-room entry
func (c *Coordinator) ApprovePending(id string) error {
	pp, ok := c.session.Pending(id)
	if !ok {
		return domain.ErrPlayerNotFound
	}
	if len(c.session.Players) >= domain.AvatarSlots {
		c.session.RemovePending(id)
		c.refuse(id, protocol.Rejected{Reason: protocol.ReasonLobbyFull})
		c.broadcastState()
		return domain.ErrLobbyFull
	}
	c.session.RemovePending(id)
	return c.admit(pp.ID, pp.Name, pp.PersistentID)
}

// RejectPending turns a waiting-room entry away
func (c *Coordinator) RejectPending(id string) error {
	if _, ok := c.session.RemovePending(id); !ok {
		return domain.ErrPlayerNotFound
	}
	c.logger.Info("pending player denied", "transportID", id)
	c.refuse(id, protocol.Rejected{Reason: protocol.ReasonDenied})
	c.broadcastState()
	return nil
}

// Kick removes a player and bans their persistent identity for the rest of
// the session. Their chat history is purged everywhere.
func (c *Coordinator) Kick(id string) error {
	if id == c.session.HostID {
		return domain.ErrTargetIsHost
	}

	if pp, ok := c.session.RemovePending(id); ok {
		c.session.Ban(pp.PersistentID)
		c.logger.Info("pending player kicked", "transportID", id, "name", pp.Name)
		c.refuse(id, protocol.Kicked{Reason: protocol.ReasonKicked})
		c.broadcastState()
		return nil
	}

	p, ok := c.session.Player(id)
	if !ok {
		return domain.ErrPlayerNotFound
	}

	c.session.Ban(p.PersistentID)
	c.purgeChat(id)
	c.refuse(id, protocol.Kicked{Reason: protocol.ReasonKicked})
	c.dropPlayer(p, domain.EventKicked)
	return nil
}

// Remove takes a player out of the game without banning them
func (c *Coordinator) Remove(id string) error {
	if id == c.session.HostID {
		return domain.ErrTargetIsHost
	}
	p, ok := c.session.Player(id)
	if !ok {
		return domain.ErrPlayerNotFound
	}

	c.refuse(id, protocol.Removed{Reason: protocol.ReasonRemoved})
	c.dropPlayer(p, domain.EventRemoved)
	return nil
}

// dropPlayer removes a player from the roster, cancels their grace timer
// and lets a waiting phase continue without them
func (c *Coordinator) dropPlayer(p *domain.Player, reason domain.EventType) {
	c.session.RemovePlayer(p.ID)
	c.timers.cancel(timerGrace + p.ReconnectKey())

	c.logger.Info("player removed", "transportID", p.ID, "name", p.Name, "reason", reason)
	c.emit(domain.NewPlayerEvent(domain.EventPlayerRemoved, c.session.Phase, p.ID, reason))

	c.checkProgress()
	c.broadcastState()
}

// handleUpdateName renames a player and rewrites their past chat entries
func (c *Coordinator) handleUpdateName(from string, m protocol.UpdateName) error {
	p, err := c.member(from)
	if err != nil {
		return err
	}
	if !c.session.Phase.AllowsRename() {
		return domain.ErrInvalidPhase
	}
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return domain.ErrEmptyName
	}
	if c.session.NameTaken(name, p.ID) {
		return domain.ErrNameTaken
	}

	p.Name = name
	c.renameChatSender(p.ID, name)
	c.broadcastState()
	return nil
}

// handleUpdateAvatar moves a player to another free avatar slot
func (c *Coordinator) handleUpdateAvatar(from string, m protocol.UpdateAvatar) error {
	p, err := c.member(from)
	if err != nil {
		return err
	}
	if !domain.ValidAvatar(m.AvatarID) {
		return domain.ErrInvalidAvatar
	}
	if c.session.AvatarTaken(m.AvatarID, p.ID) {
		return domain.ErrAvatarTaken
	}

	p.AvatarID = m.AvatarID
	c.broadcastState()
	return nil
}
