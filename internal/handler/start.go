package handler

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	chatID := update.Message.Chat.ID

	assistantLine := "No assistant selected yet — pick one with /assistants."
	if assistant := h.store.Assistant(); assistant != nil {
		assistantLine = fmt.Sprintf("Current assistant: *%s*", assistant.Name)
	}

	welcomeText := fmt.Sprintf(
		"👋 Hi!\n\n"+
			"I answer questions from your knowledge bases.\n\n"+
			"%s\n\n"+
			"📋 *Commands:*\n"+
			"/assistants — Pick an assistant\n"+
			"/sessions — Manage chat sessions\n"+
			"/new — Start a fresh session\n\n"+
			"Just send a message to start chatting!",
		assistantLine,
	)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      welcomeText,
		ParseMode: models.ParseModeMarkdown,
	})
}
