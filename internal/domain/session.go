package domain

import (
	"math/rand"
	"slices"
	"strings"
)

// Default session parameters
const (
	DefaultRoundDuration = 45
	DefaultMaxRounds     = 5
	DefaultTheme         = "classic"
)

// Settings holds host-chosen lobby options
type Settings struct {
	Provider          string `json:"provider"`
	APIKey            string `json:"apiKey,omitempty"`
	RoundDuration     int    `json:"roundDuration"` // seconds
	RequirePassword   bool   `json:"requirePassword"`
	Password          string `json:"password,omitempty"`
	EnableWaitingRoom bool   `json:"enableWaitingRoom"`
}

// DefaultSettings returns the default lobby settings
func DefaultSettings() Settings {
	return Settings{
		Provider:      "offline",
		RoundDuration: DefaultRoundDuration,
	}
}

// Session is the authoritative record of one game. The host owns it; clients
// hold a copy that is replaced on every sync.
type Session struct {
	Phase             Phase            `json:"phase"`
	RoomCode          string           `json:"roomCode"`
	HostID            string           `json:"hostId"`
	Theme             string           `json:"currentTheme"`
	Round             int              `json:"round"`
	MaxRounds         int              `json:"maxRounds"`
	TimerSeconds      int              `json:"timer"`
	CurrentPrompt     string           `json:"prompt"`
	UsedPrompts       []string         `json:"usedPrompts"`
	Players           []*Player        `json:"players"`
	PendingPlayers    []*PendingPlayer `json:"pendingPlayers"`
	Blacklist         []string         `json:"blacklist,omitempty"`
	Submissions       []*Submission    `json:"submissions"`
	FinishedVotingIDs []string         `json:"finishedVotingIds"`
	RevealIndex       int              `json:"revealedIndex"`
	RevealStep        int              `json:"revealStep"`
	Settings          Settings         `json:"settings"`
}

// NewSession creates an empty session in the lobby
func NewSession(roomCode string, settings Settings) *Session {
	s := &Session{
		Phase:     PhaseLobby,
		RoomCode:  roomCode,
		Theme:     DefaultTheme,
		Round:     1,
		MaxRounds: DefaultMaxRounds,
		Settings:  settings,
	}
	s.ResetRound()
	s.UsedPrompts = []string{}
	s.Players = []*Player{}
	s.PendingPlayers = []*PendingPlayer{}
	return s
}

// Player returns an admitted player by transport id
func (s *Session) Player(id string) (*Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// PlayerByPersistentID returns an admitted player by persistent identity
func (s *Session) PlayerByPersistentID(persistentID string) (*Player, bool) {
	if persistentID == "" {
		return nil, false
	}
	for _, p := range s.Players {
		if p.PersistentID == persistentID {
			return p, true
		}
	}
	return nil, false
}

// Pending returns a waiting-room entry by transport id
func (s *Session) Pending(id string) (*PendingPlayer, bool) {
	for _, p := range s.PendingPlayers {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// IsMember reports whether id belongs to an admitted or pending player
func (s *Session) IsMember(id string) bool {
	if _, ok := s.Player(id); ok {
		return true
	}
	_, ok := s.Pending(id)
	return ok
}

// NameTaken reports whether name collides with an admitted or pending player
// other than exceptID. Names compare case-insensitively.
func (s *Session) NameTaken(name, exceptID string) bool {
	for _, p := range s.Players {
		if p.ID != exceptID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	for _, p := range s.PendingPlayers {
		if p.ID != exceptID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// AvatarTaken reports whether another admitted player uses avatarID
func (s *Session) AvatarTaken(avatarID int, exceptID string) bool {
	for _, p := range s.Players {
		if p.ID != exceptID && p.AvatarID == avatarID {
			return true
		}
	}
	return false
}

// FreeAvatar picks a random unused avatar slot
func (s *Session) FreeAvatar(rng *rand.Rand) (int, error) {
	free := make([]int, 0, AvatarSlots)
	for id := 0; id < AvatarSlots; id++ {
		if !s.AvatarTaken(id, "") {
			free = append(free, id)
		}
	}
	if len(free) == 0 {
		return 0, ErrLobbyFull
	}
	return free[rng.Intn(len(free))], nil
}

// AddPlayer appends an admitted player
func (s *Session) AddPlayer(p *Player) error {
	if len(s.Players) >= AvatarSlots {
		return ErrLobbyFull
	}
	if _, exists := s.Player(p.ID); exists {
		return nil
	}
	s.Players = append(s.Players, p)
	return nil
}

// RemovePlayer removes an admitted player, and any waiting-room entry with the same id
func (s *Session) RemovePlayer(id string) (*Player, bool) {
	s.RemovePending(id)
	for i, p := range s.Players {
		if p.ID == id {
			s.Players = slices.Delete(s.Players, i, i+1)
			return p, true
		}
	}
	return nil, false
}

// AddPending parks a join request in the waiting room
func (s *Session) AddPending(p *PendingPlayer) {
	s.PendingPlayers = append(s.PendingPlayers, p)
}

// RemovePending removes a waiting-room entry
func (s *Session) RemovePending(id string) (*PendingPlayer, bool) {
	for i, p := range s.PendingPlayers {
		if p.ID == id {
			s.PendingPlayers = slices.Delete(s.PendingPlayers, i, i+1)
			return p, true
		}
	}
	return nil, false
}

// IsBanned reports whether a persistent identity was kicked this session
func (s *Session) IsBanned(persistentID string) bool {
	return persistentID != "" && slices.Contains(s.Blacklist, persistentID)
}

// Ban adds a persistent identity to the blacklist. The blacklist only grows.
func (s *Session) Ban(persistentID string) {
	if persistentID == "" || s.IsBanned(persistentID) {
		return
	}
	s.Blacklist = append(s.Blacklist, persistentID)
}

// ResetScores zeroes every player's score
func (s *Session) ResetScores() {
	for _, p := range s.Players {
		p.Score = 0
	}
}
