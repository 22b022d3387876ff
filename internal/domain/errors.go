package domain

import "errors"

var (
	ErrNoAssistant       = errors.New("no assistant selected")
	ErrNoKnowledgeBase   = errors.New("assistant has no knowledge base")
	ErrSendInFlight      = errors.New("send already in flight for this session")
	ErrSessionNotFound   = errors.New("session not found")
	ErrAssistantNotFound = errors.New("assistant not found")
)
