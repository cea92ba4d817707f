package chat

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Status tracks a message's delivery lifecycle.
type Status string

const (
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusError     Status = "error"
	StatusStreaming Status = "streaming"
)

// Message is one entry in the conversation. A streaming assistant message
// starts empty and grows as chunks arrive; once finalized it is never
// mutated again.
type Message struct {
	ID        string
	Content   string
	Role      Role
	Timestamp time.Time
	Status    Status

	// IsStreaming mirrors Status == StatusStreaming, kept for convenience
	IsStreaming bool

	// Error holds a message-level failure description
	Error string

	// Sources holds citation strings, attached only when the message is finalized
	Sources []string
}

// NewUserMessage creates an already-delivered user message.
func NewUserMessage(content string) Message {
	return Message{
		ID:        "user_" + uuid.NewString(),
		Content:   content,
		Role:      RoleUser,
		Timestamp: time.Now(),
		Status:    StatusSent,
	}
}

// NewStreamingMessage creates an empty assistant message that will be
// filled in as chunks arrive from the transport.
func NewStreamingMessage(id string) Message {
	return Message{
		ID:          id,
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		Status:      StatusStreaming,
		IsStreaming: true,
	}
}

// NewAssistantMessage creates a fully-formed assistant message, used by
// the non-streaming REST path and when replaying history.
func NewAssistantMessage(content string, sources []string, timestamp time.Time) Message {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	return Message{
		ID:        "msg_" + uuid.NewString(),
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: timestamp,
		Status:    StatusSent,
		Sources:   sources,
	}
}

// NewErrorMessage creates an assistant message representing a failed turn,
// shown inline so the failure stays visible in context.
func NewErrorMessage(content, errText string) Message {
	return Message{
		ID:        "error_" + uuid.NewString(),
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Status:    StatusError,
		Error:     errText,
	}
}
