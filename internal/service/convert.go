package service

import (
	"github.com/opengrove/ragchat/internal/domain"
	"github.com/opengrove/ragchat/internal/ragapi"
)

// AssistantFromRecord maps a backend assistant record into the domain
// snapshot the store works with.
func AssistantFromRecord(r ragapi.AssistantRecord) domain.Assistant {
	return domain.Assistant{
		ID:             r.AssistantID,
		Name:           r.Name,
		Description:    r.Description,
		KnowledgeBases: r.KnowledgeBases,
		Model: domain.ModelSettings{
			Model:            r.ModelConfig.Model,
			Temperature:      r.ModelConfig.Temperature,
			TopP:             r.ModelConfig.TopP,
			PresencePenalty:  r.ModelConfig.PresencePenalty,
			FrequencyPenalty: r.ModelConfig.FrequencyPenalty,
		},
		SystemPrompt: r.SystemPrompt,
		Status:       r.Status,
		Metadata:     r.Metadata,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func sessionFromRecord(r ragapi.SessionRecord) domain.ChatSession {
	return domain.ChatSession{
		ID:           r.SessionID,
		Title:        r.Title,
		AssistantID:  r.AssistantID,
		DatasetID:    r.DatasetID,
		CreatedAt:    r.CreatedAt,
		MessageCount: r.MessageCount,
		LastMessage:  r.LastMessage,
	}
}

func messageFromRecord(r ragapi.MessageRecord) domain.Message {
	return domain.Message{
		ID:        r.MessageID,
		SessionID: r.SessionID,
		Type:      messageType(r.Role),
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		Passages:  passagesFromRecords(r.ContextPassages),
	}
}

func messageType(role string) domain.MessageType {
	switch role {
	case "user":
		return domain.MessageTypeUser
	case "system":
		return domain.MessageTypeSystem
	default:
		return domain.MessageTypeAssistant
	}
}

func passagesFromRecords(records []ragapi.Passage) []domain.ContextPassage {
	if len(records) == 0 {
		return nil
	}
	passages := make([]domain.ContextPassage, len(records))
	for i, r := range records {
		passages[i] = domain.ContextPassage{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Score,
			Metadata: r.Metadata,
		}
	}
	return passages
}
