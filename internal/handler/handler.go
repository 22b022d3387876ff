package handler

import (
	"github.com/go-telegram/bot"
	"github.com/opengrove/ragchat/internal/config"
	"github.com/opengrove/ragchat/internal/ragapi"
	"github.com/opengrove/ragchat/internal/service"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot     *bot.Bot
	cfg     *config.Config
	store   *service.ChatSessionStore
	backend *ragapi.Client
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot     *bot.Bot
	Cfg     *config.Config
	Store   *service.ChatSessionStore
	Backend *ragapi.Client
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:     deps.Bot,
		cfg:     deps.Cfg,
		store:   deps.Store,
		backend: deps.Backend,
	}
}
