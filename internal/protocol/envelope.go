package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Decode errors
var (
	ErrUnknownType = errors.New("unknown message type")
	ErrMalformed   = errors.New("malformed message")
)

// Envelope is the wire frame around every message
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode wraps a message in an envelope and serializes it
func Encode(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type(), err)
	}
	return json.Marshal(Envelope{Type: msg.Type(), Payload: payload})
}

// Decode parses an envelope and returns the typed message it carries.
// Unknown types yield ErrUnknownType; bad JSON or a payload of the wrong
// shape yields ErrMalformed.
func Decode(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var (
		msg Message
		err error
	)
	switch env.Type {
	case MsgJoin:
		msg = decodeAs[Join](env.Payload, &err)
	case MsgSubmitAnswer:
		msg = decodeAs[SubmitAnswer](env.Payload, &err)
	case MsgLockVotes:
		msg = decodeAs[LockVotes](env.Payload, &err)
	case MsgSubmitVote:
		msg = decodeAs[SubmitVote](env.Payload, &err)
	case MsgUpdateAvatar:
		msg = decodeAs[UpdateAvatar](env.Payload, &err)
	case MsgUpdateName:
		msg = decodeAs[UpdateName](env.Payload, &err)
	case MsgRequestGhost:
		msg = decodeAs[RequestGhost](env.Payload, &err)
	case MsgSync:
		msg = decodeAs[Sync](env.Payload, &err)
	case MsgPending:
		msg = decodeAs[Pending](env.Payload, &err)
	case MsgAuthError:
		msg = decodeAs[AuthError](env.Payload, &err)
	case MsgRejected:
		msg = decodeAs[Rejected](env.Payload, &err)
	case MsgGhostOptions:
		msg = decodeAs[GhostOptions](env.Payload, &err)
	case MsgGhostError:
		msg = decodeAs[GhostError](env.Payload, &err)
	case MsgChatDeleteUser:
		msg = decodeAs[ChatDeleteUser](env.Payload, &err)
	case MsgLobbyClosed:
		msg = decodeAs[LobbyClosed](env.Payload, &err)
	case MsgKicked:
		msg = decodeAs[Kicked](env.Payload, &err)
	case MsgRemoved:
		msg = decodeAs[Removed](env.Payload, &err)
	case MsgChatMessage:
		msg = decodeAs[ChatMessage](env.Payload, &err)
	case MsgReactionEmote:
		msg = decodeAs[ReactionEmote](env.Payload, &err)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, env.Type, err)
	}
	return msg, nil
}

// decodeAs unmarshals a payload into T. An absent payload yields the zero value.
func decodeAs[T Message](raw json.RawMessage, errp *error) Message {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v
	}
	*errp = json.Unmarshal(raw, &v)
	return v
}
