package config

import "time"

const (
	// Chat request fallbacks, applied when the assistant carries no
	// model settings of its own.
	DefaultModel       = "DeepSeek-V3"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000

	// Retrieval parameters
	DefaultTopK    = 5
	DefaultExpandK = 5
	RetrievalMode  = "tree"

	// Enhanced-context requests
	MaxContextMessages = 6

	// Session title length, including the trailing ellipsis
	TitleMaxLen = 50

	// Backend request timeout
	RequestTimeout = 90 * time.Second

	// Assistant list cache duration
	AssistantCacheDuration = 1 * time.Hour

	// Message page size for history fetches
	MessagePageSize = 100

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Minimum interval between streamed status-message edits
	StreamEditInterval = 1500 * time.Millisecond

	// Sessions per page
	SessionsPerPage = 5

	// Assistants per page
	AssistantsPerPage = 5
)
