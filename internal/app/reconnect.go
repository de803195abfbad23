package app

import (
	"ghostwriter/internal/domain"
)

// resurrect reattaches a returning player to a new transport id. Every
// round reference to the old id is migrated so submissions and votes
// stay attributed to them.
func (c *Coordinator) resurrect(p *domain.Player, newID string) {
	oldID := p.ID
	c.timers.cancel(timerGrace + p.ReconnectKey())

	// a stale connection still open under the old id is superseded
	if oldID != newID {
		c.closePeer(oldID)
	}

	p.Reconnect(newID)
	c.session.MigratePlayerID(oldID, newID)
	c.migrateChatSender(oldID, newID)

	c.logger.Info("player reconnected", "transportID", newID, "previousID", oldID, "name", p.Name)
	c.emit(domain.NewPlayerEvent(domain.EventPlayerReconnected, c.session.Phase, newID, oldID))
	c.broadcastState()
}

// expireGrace removes a player whose grace period ran out while disconnected
func (c *Coordinator) expireGrace(key string) {
	for _, p := range c.session.Players {
		if p.ReconnectKey() != key {
			continue
		}
		if p.IsConnected() {
			return
		}
		c.logger.Info("reconnect grace expired", "transportID", p.ID, "name", p.Name)
		c.dropPlayer(p, domain.EventTimeout)
		return
	}
}
