package app

import (
	"strings"

	"github.com/google/uuid"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/protocol"
)

// handleChat ingests a chat line into the history exactly once and relays
// it to every other admitted player. Sender fields are set by the host.
func (c *Coordinator) handleChat(from string, m protocol.ChatMessage) error {
	p, err := c.member(from)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return domain.ErrEmptyText
	}

	msg := domain.ChatMessage{
		ID:         m.ID,
		SenderID:   p.ID,
		SenderName: p.Name,
		Text:       text,
		Timestamp:  m.Timestamp,
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = c.now().UnixMilli()
	}
	if !c.seen.add(msg.ID) {
		return nil
	}

	c.chat = append(c.chat, msg)
	if limit := c.opts.ChatHistory; limit > 0 && len(c.chat) > limit {
		c.chat = c.chat[len(c.chat)-limit:]
	}

	c.relay(protocol.ChatMessage{ChatMessage: msg}, from)
	c.emit(domain.NewPlayerEvent(domain.EventChatReceived, c.session.Phase, p.ID, msg))
	return nil
}

// seenIDs is a bounded set of chat ids. The oldest id is forgotten first.
type seenIDs struct {
	ids   map[string]struct{}
	order []string
	limit int
}

func newSeenIDs(limit int) *seenIDs {
	return &seenIDs{ids: make(map[string]struct{}, limit), limit: limit}
}

// add records id and reports whether it was new
func (s *seenIDs) add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	if len(s.order) > s.limit {
		delete(s.ids, s.order[0])
		s.order = s.order[1:]
	}
	return true
}

// handleReaction relays a registered, unlocked emote. Anything else is
// dropped without a trace.
func (c *Coordinator) handleReaction(from string, m protocol.ReactionEmote) error {
	p, err := c.member(from)
	if err != nil {
		return err
	}
	if !domain.EmoteUsable(m.EmoteID) {
		return domain.ErrUnknownEmote
	}

	r := domain.Reaction{EmoteID: m.EmoteID, SenderID: p.ID}
	c.relay(protocol.ReactionEmote{Reaction: r}, from)
	c.emit(domain.NewPlayerEvent(domain.EventReactionReceived, c.session.Phase, p.ID, r))
	return nil
}

// purgeChat deletes a sender's history and tells every client to do the same
func (c *Coordinator) purgeChat(senderID string) {
	kept := c.chat[:0]
	for _, m := range c.chat {
		if m.SenderID != senderID {
			kept = append(kept, m)
		}
	}
	c.chat = kept

	c.relay(protocol.ChatDeleteUser{UserID: senderID}, senderID)
	c.emit(domain.NewPlayerEvent(domain.EventChatPurged, c.session.Phase, senderID, nil))
}

func (c *Coordinator) renameChatSender(senderID, name string) {
	for i := range c.chat {
		if c.chat[i].SenderID == senderID {
			c.chat[i].SenderName = name
		}
	}
}

func (c *Coordinator) migrateChatSender(oldID, newID string) {
	for i := range c.chat {
		if c.chat[i].SenderID == oldID {
			c.chat[i].SenderID = newID
		}
	}
}
