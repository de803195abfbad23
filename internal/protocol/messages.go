// Package protocol defines the messages exchanged between host and clients.
// Every message travels in an Envelope; the payload shape is fixed by the type.
package protocol

import "ghostwriter/internal/domain"

// MessageType represents the type of a protocol message
type MessageType string

// Client → Host message types
const (
	MsgJoin         MessageType = "JOIN"
	MsgSubmitAnswer MessageType = "SUBMIT_ANSWER"
	MsgLockVotes    MessageType = "LOCK_VOTES"
	MsgSubmitVote   MessageType = "SUBMIT_VOTE"
	MsgUpdateAvatar MessageType = "UPDATE_AVATAR"
	MsgUpdateName   MessageType = "UPDATE_NAME"
	MsgRequestGhost MessageType = "REQUEST_GHOST"
)

// Host → Client message types
const (
	MsgSync           MessageType = "SYNC"
	MsgPending        MessageType = "PENDING"
	MsgAuthError      MessageType = "AUTH_ERROR"
	MsgRejected       MessageType = "REJECTED"
	MsgGhostOptions   MessageType = "GHOST_OPTIONS"
	MsgGhostError     MessageType = "GHOST_ERROR"
	MsgChatDeleteUser MessageType = "CHAT_DELETE_USER"
	MsgLobbyClosed    MessageType = "LOBBY_CLOSED"
	MsgKicked         MessageType = "KICKED"
	MsgRemoved        MessageType = "REMOVED"
)

// Bidirectional message types
const (
	MsgChatMessage   MessageType = "CHAT_MESSAGE"
	MsgReactionEmote MessageType = "REACTION_EMOTE"
)

// Message is implemented by every payload type
type Message interface {
	Type() MessageType
}

// Client message payloads

// Join is sent by a client once its connection to the host is open
type Join struct {
	DisplayName  string `json:"displayName"`
	Password     string `json:"password,omitempty"`
	PersistentID string `json:"persistentId,omitempty"`
}

// SubmitAnswer carries the author's answer for the current round
type SubmitAnswer struct {
	Text    string        `json:"text"`
	Source  domain.Source `json:"source"`
	AgentID string        `json:"agentId,omitempty"`
}

// LockVotes tells the host a voter is done
type LockVotes struct{}

// SubmitVote is one guess on one submission
type SubmitVote struct {
	TargetAuthorID string       `json:"targetAuthorId"`
	Guess          domain.Guess `json:"guess"`
}

// UpdateAvatar requests a different avatar slot
type UpdateAvatar struct {
	AvatarID int `json:"avatarId"`
}

// UpdateName requests a different display name
type UpdateName struct {
	Name string `json:"name"`
}

// RequestGhost asks the host to generate answer variants for a persona
type RequestGhost struct {
	Prompt  string `json:"prompt"`
	AgentID string `json:"agentId"`
	Persona string `json:"persona,omitempty"` // custom persona instruction
}

// Host message payloads

// Sync carries a full (masked) session snapshot
type Sync struct {
	Session *domain.Session `json:"session"`
	You     string          `json:"you"` // recipient's transport id
}

// Pending tells a client it waits for host approval
type Pending struct {
	Message string `json:"message"`
}

// AuthError rejects a join with a wrong password
type AuthError struct {
	Reason string `json:"reason"`
}

// Rejected refuses a join (name taken, banned, denied, full)
type Rejected struct {
	Reason string `json:"reason"`
}

// GhostOptions carries generated answer variants
type GhostOptions struct {
	Options []string `json:"options"`
}

// GhostError reports a failed generation
type GhostError struct {
	Message string `json:"message"`
}

// ChatDeleteUser instructs clients to purge one sender's messages
type ChatDeleteUser struct {
	UserID string `json:"userId"`
}

// LobbyClosed announces that the host is tearing the session down
type LobbyClosed struct {
	Reason string `json:"reason,omitempty"`
}

// Kicked tells a client it was kicked and banned
type Kicked struct {
	Reason string `json:"reason"`
}

// Removed tells a client it was removed and may rejoin
type Removed struct {
	Reason string `json:"reason"`
}

// ChatMessage is a chat line
type ChatMessage struct {
	domain.ChatMessage
}

// ReactionEmote is a transient reaction
type ReactionEmote struct {
	domain.Reaction
}

func (Join) Type() MessageType           { return MsgJoin }
func (SubmitAnswer) Type() MessageType   { return MsgSubmitAnswer }
func (LockVotes) Type() MessageType      { return MsgLockVotes }
func (SubmitVote) Type() MessageType     { return MsgSubmitVote }
func (UpdateAvatar) Type() MessageType   { return MsgUpdateAvatar }
func (UpdateName) Type() MessageType     { return MsgUpdateName }
func (RequestGhost) Type() MessageType   { return MsgRequestGhost }
func (Sync) Type() MessageType           { return MsgSync }
func (Pending) Type() MessageType        { return MsgPending }
func (AuthError) Type() MessageType      { return MsgAuthError }
func (Rejected) Type() MessageType       { return MsgRejected }
func (GhostOptions) Type() MessageType   { return MsgGhostOptions }
func (GhostError) Type() MessageType     { return MsgGhostError }
func (ChatDeleteUser) Type() MessageType { return MsgChatDeleteUser }
func (LobbyClosed) Type() MessageType    { return MsgLobbyClosed }
func (Kicked) Type() MessageType         { return MsgKicked }
func (Removed) Type() MessageType        { return MsgRemoved }
func (ChatMessage) Type() MessageType    { return MsgChatMessage }
func (ReactionEmote) Type() MessageType  { return MsgReactionEmote }

// User-facing rejection reasons
const (
	ReasonNameTaken    = "Name already taken"
	ReasonNameRequired = "Name required"
	ReasonBanned       = "You are banned from this lobby."
	ReasonDenied       = "Host denied entry"
	ReasonLobbyFull    = "Lobby is full"
	ReasonBadPassword  = "Incorrect password"
	ReasonKicked       = "You have been kicked by the host."
	ReasonRemoved      = "You have been removed by the host."
	ReasonClosed       = "The host has closed the lobby."
	ReasonWaiting      = "Waiting for host approval"
	ReasonHostIdentity = "Identity already in use by the host"
)
