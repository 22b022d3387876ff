package domain

import "time"

// Assistant is a backend-owned snapshot; the client never mutates it.
type Assistant struct {
	ID             string
	Name           string
	Description    string
	KnowledgeBases []string
	Model          ModelSettings
	SystemPrompt   string
	Status         string
	Metadata       map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ModelSettings holds the generation parameters configured for an assistant.
// Bounds are not enforced client-side; the backend validates them.
type ModelSettings struct {
	Model            string
	Temperature      float64
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
}

// PrimaryKnowledgeBase returns the knowledge base sessions are created
// against. Chat cannot function without one.
func (a *Assistant) PrimaryKnowledgeBase() (string, bool) {
	if len(a.KnowledgeBases) == 0 {
		return "", false
	}
	return a.KnowledgeBases[0], true
}
