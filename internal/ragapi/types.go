package ragapi

import "time"

type AssistantRecord struct {
	AssistantID    string         `json:"assistant_id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	KnowledgeBases []string       `json:"knowledge_bases"`
	ModelConfig    ModelConfig    `json:"model_config"`
	SystemPrompt   string         `json:"system_prompt,omitempty"`
	Status         string         `json:"status,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ModelConfig struct {
	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	PresencePenalty  float64 `json:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
}

type SessionRecord struct {
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	AssistantID  string    `json:"assistant_id,omitempty"`
	DatasetID    string    `json:"dataset_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
	LastMessage  string    `json:"last_message,omitempty"`
}

type CreateSessionRequest struct {
	DatasetID   string `json:"dataset_id"`
	Title       string `json:"title,omitempty"`
	AssistantID string `json:"assistant_id,omitempty"`
}

type UpdateSessionRequest struct {
	Title *string `json:"title,omitempty"`
}

type MessageRecord struct {
	MessageID       string    `json:"message_id"`
	SessionID       string    `json:"session_id"`
	Role            string    `json:"role"`
	Content         string    `json:"content"`
	ContextPassages []Passage `json:"context_passages,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Passage is a retrieved snippet returned alongside an answer.
type Passage struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Score    float64        `json:"score,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type ChatRequest struct {
	Query       string  `json:"query"`
	DatasetID   string  `json:"dataset_id"`
	SessionID   string  `json:"session_id,omitempty"`
	TopK        int     `json:"top_k"`
	ExpandK     int     `json:"expand_k"`
	Mode        string  `json:"mode"`
	AnswerModel string  `json:"answer_model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Stream      bool    `json:"stream"`

	// Enhanced variant only
	UseEnhancedContext bool   `json:"use_enhanced_context,omitempty"`
	MaxContextMessages int    `json:"max_context_messages,omitempty"`
	AdditionalContext  string `json:"additional_context,omitempty"`
}

type ChatResponse struct {
	Answer           string    `json:"answer"`
	Model            string    `json:"model"`
	TopK             int       `json:"top_k"`
	Mode             string    `json:"mode"`
	Passages         []Passage `json:"passages"`
	SessionID        string    `json:"session_id"`
	ProcessingTimeMS float64   `json:"processing_time_ms"`

	// Present when the backend persisted the turn as message records.
	UserMessage      *MessageRecord `json:"user_message,omitempty"`
	AssistantMessage *MessageRecord `json:"assistant_message,omitempty"`
}

// Confirmed reports whether the backend returned persisted records for both
// sides of the turn. The two response shapes are distinguished by this check
// alone.
func (r *ChatResponse) Confirmed() bool {
	return r.UserMessage != nil && r.AssistantMessage != nil
}
