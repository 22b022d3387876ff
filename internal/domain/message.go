package domain

import "time"

type MessageType string

const (
	MessageTypeUser      MessageType = "user"
	MessageTypeAssistant MessageType = "assistant"
	MessageTypeSystem    MessageType = "system"
)

// TypingContent is the sentinel content of the transient placeholder that
// represents an outstanding assistant turn. It is never persisted and is
// always removed before the real assistant (or error) message is appended.
const TypingContent = "typing"

type Message struct {
	ID        string
	SessionID string
	Type      MessageType
	Content   string
	CreatedAt time.Time
	Passages  []ContextPassage
}

// IsTyping reports whether the message is the in-flight placeholder.
func (m *Message) IsTyping() bool {
	return m.Type == MessageTypeAssistant && m.Content == TypingContent
}

// ContextPassage is a retrieved snippet attached to an assistant message to
// ground its answer.
type ContextPassage struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}
