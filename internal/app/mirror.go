package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ghostwriter/internal/domain"
	"ghostwriter/internal/protocol"
)

// ReasonHostLost is reported when the connection drops without notice
const ReasonHostLost = "Host disconnected"

// Client-side errors
var (
	ErrNotJoined   = errors.New("not joined to a lobby")
	ErrGhostFailed = errors.New("ghost generation failed")
)

// Conn is a client's connection to the host
type Conn interface {
	Send(msg protocol.Message) error
	Close() error
}

// Mirror is a client's read-only copy of the host's session. It is replaced
// wholesale on every SYNC and never mutated locally, except for the chat
// history the client keeps itself.
type Mirror struct {
	mu      sync.RWMutex
	conn    Conn
	session *domain.Session
	self    string
	chat    []domain.ChatMessage
	pending bool

	// set before the host closes the connection on purpose, so the close
	// is not reported as a lost host
	intentional bool
	wasKicked   bool
	reason      string

	ghostReply chan protocol.Message
	events     chan domain.Event
	chatLimit  int
	logger     *slog.Logger
}

// NewMirror creates a mirror that talks to the host over conn
func NewMirror(conn Conn, logger *slog.Logger) *Mirror {
	return &Mirror{
		conn:       conn,
		chat:       []domain.ChatMessage{},
		ghostReply: make(chan protocol.Message, 1),
		events:     make(chan domain.Event, eventQueueSize),
		chatLimit:  DefaultChatHistory,
		logger:     logger,
	}
}

// Events returns the notification channel for the client's presentation layer
func (m *Mirror) Events() <-chan domain.Event {
	return m.events
}

// Session returns a copy of the last synced session, or nil
func (m *Mirror) Session() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}
	return m.session.Clone()
}

// Self returns this client's transport id as the host knows it
func (m *Mirror) Self() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.self
}

// Chat returns a copy of the local chat history
func (m *Mirror) Chat() []domain.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.ChatMessage(nil), m.chat...)
}

// Pending reports whether the client sits in the waiting room
func (m *Mirror) Pending() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending
}

// WasKicked reports whether the host kicked this client
func (m *Mirror) WasKicked() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wasKicked
}

// DisconnectReason returns why the connection ended, if it did
func (m *Mirror) DisconnectReason() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reason
}

// Join asks the host to admit this client
func (m *Mirror) Join(name, password, persistentID string) error {
	return m.conn.Send(protocol.Join{DisplayName: name, Password: password, PersistentID: persistentID})
}

// Handle applies one message from the host
func (m *Mirror) Handle(msg protocol.Message) {
	switch v := msg.(type) {
	case protocol.Sync:
		if v.Session == nil {
			m.logger.Debug("ignoring empty sync")
			return
		}
		m.mu.Lock()
		m.session = v.Session
		m.self = v.You
		m.pending = false
		phase := m.session.Phase
		m.mu.Unlock()
		m.notify(domain.NewEvent(domain.EventStateChanged, phase, nil))

	case protocol.Pending:
		m.mu.Lock()
		m.pending = true
		m.mu.Unlock()
		m.notify(domain.NewEvent(domain.EventPending, "", v.Message))

	case protocol.AuthError:
		m.closing(v.Reason, false)
		m.notify(domain.NewEvent(domain.EventAuthFailed, "", v.Reason))

	case protocol.Rejected:
		m.closing(v.Reason, false)
		m.notify(domain.NewEvent(domain.EventRejected, "", v.Reason))

	case protocol.Kicked:
		m.closing(v.Reason, true)
		m.notify(domain.NewEvent(domain.EventKicked, "", v.Reason))

	case protocol.Removed:
		m.closing(v.Reason, false)
		m.notify(domain.NewEvent(domain.EventRemoved, "", v.Reason))

	case protocol.LobbyClosed:
		reason := v.Reason
		if reason == "" {
			reason = protocol.ReasonClosed
		}
		m.closing(reason, false)
		m.reset()
		m.notify(domain.NewEvent(domain.EventLobbyClosed, "", reason))

	case protocol.ChatMessage:
		if m.addChat(v.ChatMessage) {
			m.notify(domain.NewPlayerEvent(domain.EventChatReceived, "", v.SenderID, v.ChatMessage))
		}

	case protocol.ReactionEmote:
		m.notify(domain.NewPlayerEvent(domain.EventReactionReceived, "", v.SenderID, v.Reaction))

	case protocol.ChatDeleteUser:
		m.purgeChat(v.UserID)
		m.notify(domain.NewPlayerEvent(domain.EventChatPurged, "", v.UserID, nil))

	case protocol.GhostOptions:
		m.deliverGhost(v)
		m.notify(domain.NewEvent(domain.EventGhostOptions, "", v.Options))

	case protocol.GhostError:
		m.deliverGhost(v)
		m.notify(domain.NewEvent(domain.EventGhostFailed, "", v.Message))

	case protocol.Join, protocol.SubmitAnswer, protocol.LockVotes, protocol.SubmitVote,
		protocol.UpdateAvatar, protocol.UpdateName, protocol.RequestGhost:
		m.logger.Debug("ignoring host-bound message", "type", msg.Type())

	default:
		m.logger.Debug("ignoring unknown message")
	}
}

// ConnectionClosed reports the transport closing. Without a prior notice
// from the host this is a lost host.
func (m *Mirror) ConnectionClosed() {
	m.mu.Lock()
	intentional := m.intentional
	if !intentional {
		m.reason = ReasonHostLost
	}
	m.mu.Unlock()

	if intentional {
		return
	}
	m.reset()
	m.notify(domain.NewEvent(domain.EventHostLost, "", ReasonHostLost))
}

// Leave closes the connection on purpose and forgets the session
func (m *Mirror) Leave() error {
	m.mu.Lock()
	m.intentional = true
	m.mu.Unlock()
	m.reset()
	return m.conn.Close()
}

// SubmitAnswer sends this round's answer
func (m *Mirror) SubmitAnswer(text string, source domain.Source, agentID string) error {
	return m.conn.Send(protocol.SubmitAnswer{Text: text, Source: source, AgentID: agentID})
}

// Vote guesses who wrote a submission
func (m *Mirror) Vote(targetAuthorID string, guess domain.Guess) error {
	return m.conn.Send(protocol.SubmitVote{TargetAuthorID: targetAuthorID, Guess: guess})
}

// LockVotes tells the host this client is done voting
func (m *Mirror) LockVotes() error {
	return m.conn.Send(protocol.LockVotes{})
}

// Rename asks for a new display name
func (m *Mirror) Rename(name string) error {
	return m.conn.Send(protocol.UpdateName{Name: name})
}

// SetAvatar asks for another avatar slot
func (m *Mirror) SetAvatar(avatarID int) error {
	return m.conn.Send(protocol.UpdateAvatar{AvatarID: avatarID})
}

// SendChat adds a line to the local history and sends it to the host,
// which relays it to everyone else
func (m *Mirror) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrEmptyText
	}

	m.mu.RLock()
	self, session := m.self, m.session
	m.mu.RUnlock()
	if session == nil {
		return ErrNotJoined
	}

	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		SenderID:  self,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	if p, ok := session.Player(self); ok {
		msg.SenderName = p.Name
	}
	m.addChat(msg)
	return m.conn.Send(protocol.ChatMessage{ChatMessage: msg})
}

// React sends an emote. Unregistered or locked emotes are not sent.
func (m *Mirror) React(emoteID string) error {
	if !domain.EmoteUsable(emoteID) {
		return domain.ErrUnknownEmote
	}
	return m.conn.Send(protocol.ReactionEmote{Reaction: domain.Reaction{EmoteID: emoteID, SenderID: m.Self()}})
}

// RequestGhost asks the host for answer variants and waits for them
func (m *Mirror) RequestGhost(ctx context.Context, prompt, agentID, persona string) ([]string, error) {
	// drop a reply left over from an abandoned request
	select {
	case <-m.ghostReply:
	default:
	}

	if err := m.conn.Send(protocol.RequestGhost{Prompt: prompt, AgentID: agentID, Persona: persona}); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case reply := <-m.ghostReply:
		switch r := reply.(type) {
		case protocol.GhostOptions:
			return r.Options, nil
		case protocol.GhostError:
			return nil, fmt.Errorf("%w: %s", ErrGhostFailed, r.Message)
		}
		return nil, ErrGhostFailed
	}
}

func (m *Mirror) deliverGhost(msg protocol.Message) {
	select {
	case m.ghostReply <- msg:
	default:
		m.logger.Debug("dropping unrequested ghost reply", "type", msg.Type())
	}
}

// closing records that the host is about to close the connection on purpose
func (m *Mirror) closing(reason string, kicked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intentional = true
	m.reason = reason
	if kicked {
		m.wasKicked = true
	}
}

func (m *Mirror) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.pending = false
	m.chat = []domain.ChatMessage{}
}

func (m *Mirror) addChat(msg domain.ChatMessage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.chat {
		if existing.ID == msg.ID {
			return false
		}
	}
	m.chat = append(m.chat, msg)
	if len(m.chat) > m.chatLimit {
		m.chat = m.chat[len(m.chat)-m.chatLimit:]
	}
	return true
}

func (m *Mirror) purgeChat(senderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.chat[:0]
	for _, msg := range m.chat {
		if msg.SenderID != senderID {
			kept = append(kept, msg)
		}
	}
	m.chat = kept
}

// notify adds an event to the notification queue, dropping it if full
func (m *Mirror) notify(event domain.Event) {
	select {
	case m.events <- event:
	default:
		m.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}
