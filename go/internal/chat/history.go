package chat

import (
	"sync"
	"time"
)

// DefaultMaxHistory is how many chat messages are replayed to newcomers
const DefaultMaxHistory = 50

// MessageKind distinguishes user chat from system notices
type MessageKind string

const (
	MessageKindUser   MessageKind = "user"
	MessageKindSystem MessageKind = "system"
)

// Message is one chat line
type Message struct {
	Username  string      `json:"username"`
	Message   string      `json:"message"`
	Timestamp float64     `json:"timestamp,omitempty"`
	Type      MessageKind `json:"type,omitempty"`
}

// NewMessage creates a chat message stamped with at
func NewMessage(username, text string, kind MessageKind, at time.Time) Message {
	return Message{
		Username:  username,
		Message:   text,
		Timestamp: float64(at.UnixNano()) / float64(time.Second),
		Type:      kind,
	}
}

// History keeps the most recent chat messages, oldest first
type History struct {
	mu       sync.RWMutex
	limit    int
	messages []Message
}

// NewHistory creates a history holding at most limit messages
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = DefaultMaxHistory
	}
	return &History{limit: limit}
}

// Append adds a message, evicting the oldest when full
func (h *History) Append(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msg)
	if over := len(h.messages) - h.limit; over > 0 {
		h.messages = append(h.messages[:0:0], h.messages[over:]...)
	}
}

// Messages returns a copy of the retained messages
func (h *History) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of retained messages
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}
