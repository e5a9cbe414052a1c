package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/bidroom/go/internal/chat"
)

// EventType names an outbound room event
type EventType string

const (
	EventTypeUsersCount        EventType = "users_count"
	EventTypeUserJoined        EventType = "user_joined"
	EventTypeUserLeft          EventType = "user_left"
	EventTypeResponse          EventType = "response"
	EventTypeChatHistory       EventType = "chat_history"
	EventTypeUserTyping        EventType = "user_typing"
	EventTypeUserStoppedTyping EventType = "user_stopped_typing"
	EventTypeUsersList         EventType = "users_list"
	EventTypeAuctionState      EventType = "auction_state"
)

// Envelope is the wire shape of every server to client event
type Envelope struct {
	ID        string          `json:"id"`        // Event UUID
	Type      EventType       `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into a fresh envelope. A nil payload leaves
// Data empty.
func NewEnvelope(eventType EventType, payload interface{}, at time.Time) (Envelope, error) {
	env := Envelope{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: at.UTC(),
	}
	if payload == nil {
		return env, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	env.Data = data
	return env, nil
}

// ClientMessage is the wire shape of every client to server message
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// UsersCountPayload is the payload for users_count
type UsersCountPayload struct {
	Count int `json:"count"`
}

// PresencePayload is the payload for user_joined and user_left
type PresencePayload struct {
	Username string   `json:"username"`
	Users    []string `json:"users"`
}

// ChatHistoryPayload is the payload for chat_history
type ChatHistoryPayload struct {
	Messages []chat.Message `json:"messages"`
}

// UserTypingPayload is the payload for user_typing
type UserTypingPayload struct {
	Username string `json:"username"`
}

// UsersListPayload is the payload for users_list
type UsersListPayload struct {
	Users []string `json:"users"`
}
