package handler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/opengrove/ragchat/internal/config"
	"github.com/opengrove/ragchat/internal/service"
	tg "github.com/opengrove/ragchat/internal/telegram"
)

func (h *Handler) handleAssistants(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.sendAssistantsPage(ctx, b, update.Message.Chat.ID, 0, false, 0)
}

func (h *Handler) sendAssistantsPage(ctx context.Context, b *bot.Bot, chatID int64, page int, edit bool, messageID int) {
	records, err := h.backend.ListAssistants(ctx)
	if err != nil {
		slog.Error("list assistants", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not load assistants. Please try again.",
		})
		return
	}
	if len(records) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "No assistants are configured on the backend.",
		})
		return
	}

	totalPages := int(math.Ceil(float64(len(records)) / float64(config.AssistantsPerPage)))
	if page >= totalPages {
		page = totalPages - 1
	}

	start := page * config.AssistantsPerPage
	end := start + config.AssistantsPerPage
	if end > len(records) {
		end = len(records)
	}

	selectedID := ""
	if assistant := h.store.Assistant(); assistant != nil {
		selectedID = assistant.ID
	}

	var rows [][]models.InlineKeyboardButton
	for _, r := range records[start:end] {
		label := r.Name
		if label == "" {
			label = r.AssistantID
		}
		if r.AssistantID == selectedID {
			label += " ✅"
		}
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(label, "assistant_"+r.AssistantID),
		))
	}
	if totalPages > 1 {
		rows = append(rows, tg.PaginationRow(page, totalPages, "assistants_page"))
	}

	text := fmt.Sprintf("🤖 *Assistants* (%d)\n\nPick the assistant to chat with:", len(records))
	keyboard := tg.InlineKeyboard(rows...)

	if edit && messageID != 0 {
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        text,
			ParseMode:   models.ParseModeMarkdownV1,
			ReplyMarkup: keyboard,
		})
	} else {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        text,
			ParseMode:   models.ParseModeMarkdownV1,
			ReplyMarkup: keyboard,
		})
	}
}

func (h *Handler) handleAssistantSelect(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	var chatID int64
	var messageID int
	if msg := update.CallbackQuery.Message.Message; msg != nil {
		chatID = msg.Chat.ID
		messageID = msg.ID
	}

	assistantID := strings.TrimPrefix(update.CallbackQuery.Data, "assistant_")
	record, err := h.backend.GetAssistant(ctx, assistantID)
	if err != nil {
		slog.Error("get assistant", "error", err, "assistant_id", assistantID)
		return
	}

	assistant := service.AssistantFromRecord(*record)
	h.store.SelectAssistant(ctx, &assistant)

	if len(assistant.KnowledgeBases) == 0 {
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      fmt.Sprintf("⚠️ %s has no knowledge base attached, so it cannot answer questions yet.", assistant.Name),
		})
		return
	}

	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      fmt.Sprintf("✅ Assistant *%s* selected. Just send a message to start chatting!", assistant.Name),
		ParseMode: models.ParseModeMarkdownV1,
	})
}

func (h *Handler) handleAssistantsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	page, _ := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, "assistants_page_"))

	var chatID int64
	var messageID int
	if msg := update.CallbackQuery.Message.Message; msg != nil {
		chatID = msg.Chat.ID
		messageID = msg.ID
	}

	h.sendAssistantsPage(ctx, b, chatID, page, true, messageID)
}
