package domain

import (
	"time"
)

// ChatSession is the client's view of a backend session. Identity is always
// server-assigned; sessions are never created optimistically.
type ChatSession struct {
	ID           string
	Title        string
	AssistantID  string
	DatasetID    string
	CreatedAt    time.Time
	MessageCount int
	LastMessage  string
}
