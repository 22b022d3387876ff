package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/assistants", bot.MatchTypePrefix, h.handleAssistants)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/sessions", bot.MatchTypePrefix, h.handleSessions)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypePrefix, h.handleNewChat)

	// Assistant callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "assistant_", bot.MatchTypePrefix, h.handleAssistantSelect)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "assistants_page_", bot.MatchTypePrefix, h.handleAssistantsPage)

	// Session callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "new_session", bot.MatchTypePrefix, h.handleNewSession)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "switch_session_", bot.MatchTypePrefix, h.handleSwitchSession)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "sessions_page_", bot.MatchTypePrefix, h.handleSessionsPage)

	// Pagination indicator
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cur", bot.MatchTypeExact, h.handleNoop)
}

// handleNoop acknowledges callback queries from non-interactive inline
// buttons such as pagination indicators.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}
