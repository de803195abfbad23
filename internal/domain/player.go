package domain

// ConnectionStatus represents a player's connection state
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// AvatarSlots is the number of distinct avatars, and so the roster capacity
const AvatarSlots = 12

// Player represents an admitted participant
type Player struct {
	ID               string           `json:"id"` // transport id, changes on reconnect
	PersistentID     string           `json:"persistentId,omitempty"`
	Name             string           `json:"name"`
	AvatarID         int              `json:"avatarId"`
	Score            int              `json:"score"`
	IsHost           bool             `json:"isHost"`
	ConnectionStatus ConnectionStatus `json:"connectionStatus"`
}

// NewPlayer creates a new connected player
func NewPlayer(id, name, persistentID string, avatarID int, isHost bool) *Player {
	return &Player{
		ID:               id,
		PersistentID:     persistentID,
		Name:             name,
		AvatarID:         avatarID,
		IsHost:           isHost,
		ConnectionStatus: StatusConnected,
	}
}

// IsConnected returns true if the player is currently connected
func (p *Player) IsConnected() bool {
	return p.ConnectionStatus == StatusConnected
}

// Disconnect marks the player as disconnected
func (p *Player) Disconnect() {
	p.ConnectionStatus = StatusDisconnected
}

// Reconnect attaches a new transport id and marks the player as connected
func (p *Player) Reconnect(transportID string) {
	p.ID = transportID
	p.ConnectionStatus = StatusConnected
}

// ReconnectKey is the key the reconnection grace timer is stored under
func (p *Player) ReconnectKey() string {
	if p.PersistentID != "" {
		return p.PersistentID
	}
	return p.ID
}

// PendingPlayer is a join request parked in the waiting room
type PendingPlayer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PersistentID string `json:"persistentId,omitempty"`
}
