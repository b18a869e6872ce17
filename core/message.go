package core

import (
	"time"

	"github.com/google/uuid"
)

// Conversation roles used on Message.Role. Tool transcripts use RoleTool.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Message is a single conversational exchange unit. Author is the agent name
// for assistant messages and empty for user input.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Author    string    `json:"author,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage constructs a message with a generated ID and UTC timestamp.
func NewMessage(role, author, content string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage is a convenience wrapper for user-authored input.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, "", content)
}

// LastUserMessage returns the most recent user-role message, or a zero
// Message and false when none exists.
func LastUserMessage(messages []Message) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i], true
		}
	}
	return Message{}, false
}

// NewID generates a unique identifier for messages, events and traces.
func NewID() string { return uuid.NewString() }
