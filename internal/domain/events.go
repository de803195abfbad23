package domain

import "time"

// EventType represents the type of a state-change notification
type EventType string

const (
	EventStateChanged      EventType = "STATE_CHANGED"
	EventPlayerJoined      EventType = "PLAYER_JOINED"
	EventPlayerPending     EventType = "PLAYER_PENDING"
	EventPlayerLeft        EventType = "PLAYER_LEFT"
	EventPlayerReconnected EventType = "PLAYER_RECONNECTED"
	EventPlayerRemoved     EventType = "PLAYER_REMOVED"
	EventChatReceived      EventType = "CHAT_RECEIVED"
	EventReactionReceived  EventType = "REACTION_RECEIVED"
	EventChatPurged        EventType = "CHAT_PURGED"
	EventGhostOptions      EventType = "GHOST_OPTIONS"
	EventGhostFailed       EventType = "GHOST_FAILED"
	EventPending           EventType = "PENDING"
	EventRejected          EventType = "REJECTED"
	EventAuthFailed        EventType = "AUTH_FAILED"
	EventKicked            EventType = "KICKED"
	EventRemoved           EventType = "REMOVED"
	EventLobbyClosed       EventType = "LOBBY_CLOSED"
	EventHostLost          EventType = "HOST_LOST"
	EventTimeout           EventType = "TIMEOUT"
)

// Event notifies a presentation layer that something changed
type Event struct {
	Type      EventType   `json:"type"`
	Phase     Phase       `json:"phase,omitempty"`
	PlayerID  string      `json:"playerId,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new event
func NewEvent(eventType EventType, phase Phase, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Phase:     phase,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewPlayerEvent creates a new event about one player
func NewPlayerEvent(eventType EventType, phase Phase, playerID string, payload interface{}) Event {
	return Event{
		Type:      eventType,
		Phase:     phase,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// ChatMessage is one entry of the chat history
type ChatMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"` // unix millis
}

// Reaction is a transient emote sent by a player
type Reaction struct {
	EmoteID  string `json:"emoteId"`
	SenderID string `json:"senderId"`
}
