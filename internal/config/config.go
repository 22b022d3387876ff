package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	BotToken   string `env:"BOT_TOKEN,required"`
	BackendURL string `env:"RAG_BACKEND_URL,required"`
	APIKey     string `env:"RAG_API_KEY"`

	// Assistant selected on startup; empty means the operator picks one
	// via /assistants.
	DefaultAssistantID string `env:"DEFAULT_ASSISTANT_ID"`

	// Chat behavior
	StreamReplies   bool `env:"STREAM_REPLIES" envDefault:"true"`
	EnhancedContext bool `env:"ENHANCED_CONTEXT" envDefault:"false"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
