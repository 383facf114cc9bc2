package protocol

import (
	"encoding/json"
	"time"
)

// Participant roles. A connection holds exactly one role for its lifetime.
const (
	RoleMentor  = "mentor"
	RoleStudent = "student"
)

// Inbound envelope types.
const (
	TypeCreateRoom = "create-room"
	TypeJoinRoom   = "join-room"
	TypeChat       = "chat"
)

// Outbound envelope types.
const (
	TypeRoomCreated = "room-created"
	TypeHistory     = "history"
	TypeError       = "error"
)

// ChatEntry is one accepted chat message. The timestamp is assigned by the
// relay when the message is accepted, never taken from the client.
type ChatEntry struct {
	Name string    `json:"name"`
	Role string    `json:"role"`
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// Envelope is the single inbound wire shape. Fields that do not apply to a
// given type are left empty; unknown JSON fields are ignored.
type Envelope struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
	Text string `json:"text,omitempty"`
}

// ParseEnvelope decodes an inbound payload. A decode failure means the
// payload is malformed and must be discarded by the caller.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// RoomCreated acknowledges a create-room request to the mentor.
type RoomCreated struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// History replays the full message log to a joining student. Messages is
// always non-nil so an empty log serializes as [] rather than null.
type History struct {
	Type     string      `json:"type"`
	Messages []ChatEntry `json:"messages"`
}

// ChatMessage is a fanned-out chat entry. The entry fields are flattened
// into the envelope alongside the type discriminator.
type ChatMessage struct {
	Type string `json:"type"`
	ChatEntry
}

// ErrorMessage reports a user-triggerable failure back to the requester.
type ErrorMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewRoomCreated(code string) RoomCreated {
	return RoomCreated{Type: TypeRoomCreated, Code: code}
}

func NewHistory(messages []ChatEntry) History {
	if messages == nil {
		messages = []ChatEntry{}
	}
	return History{Type: TypeHistory, Messages: messages}
}

func NewChatMessage(entry ChatEntry) ChatMessage {
	return ChatMessage{Type: TypeChat, ChatEntry: entry}
}

func NewErrorMessage(text string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Text: text}
}
