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
	"github.com/opengrove/ragchat/internal/domain"
	tg "github.com/opengrove/ragchat/internal/telegram"
)

func (h *Handler) handleSessions(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.sendSessionsPage(ctx, b, update.Message.Chat.ID, 0, false, 0)
}

func (h *Handler) sendSessionsPage(ctx context.Context, b *bot.Bot, chatID int64, page int, edit bool, messageID int) {
	if h.store.Assistant() == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Pick an assistant first: /assistants",
		})
		return
	}

	sessions := h.store.Sessions()

	totalPages := int(math.Ceil(float64(len(sessions)) / float64(config.SessionsPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	start := page * config.SessionsPerPage
	end := start + config.SessionsPerPage
	if end > len(sessions) {
		end = len(sessions)
	}

	selectedID := ""
	if session := h.store.Session(); session != nil {
		selectedID = session.ID
	}

	var rows [][]models.InlineKeyboardButton
	for _, s := range sessions[start:end] {
		label := s.Title
		if label == "" {
			label = s.CreatedAt.Format("02.01 15:04")
		}
		if s.ID == selectedID {
			label += " ✅"
		}
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(fmt.Sprintf("💬 %s (%d)", label, s.MessageCount), "switch_session_"+s.ID),
		))
	}

	rows = append(rows, tg.ButtonRow(tg.InlineButton("➕ New session", "new_session")))
	if totalPages > 1 {
		rows = append(rows, tg.PaginationRow(page, totalPages, "sessions_page"))
	}

	text := fmt.Sprintf("📂 *Sessions* (%d)", len(sessions))
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

// handleNewChat starts a fresh session via the /new command.
func (h *Handler) handleNewChat(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	chatID := update.Message.Chat.ID

	session, err := h.store.CreateNewSession(ctx, "")
	if err != nil {
		slog.Error("create session", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.createSessionErrorText(err),
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("🔄 Started *%s*. Send a message to begin.", session.Title),
		ParseMode: models.ParseModeMarkdownV1,
	})
}

func (h *Handler) handleNewSession(ctx context.Context, b *bot.Bot, update *models.Update) {
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

	if _, err := h.store.CreateNewSession(ctx, ""); err != nil {
		slog.Error("create session", "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.createSessionErrorText(err),
		})
		return
	}

	h.sendSessionsPage(ctx, b, chatID, 0, true, messageID)
}

func (h *Handler) handleSwitchSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	sessionID := strings.TrimPrefix(update.CallbackQuery.Data, "switch_session_")

	var chatID int64
	var messageID int
	if msg := update.CallbackQuery.Message.Message; msg != nil {
		chatID = msg.Chat.ID
		messageID = msg.ID
	}

	target, err := h.store.FindSession(sessionID)
	if err != nil {
		// Stale button: the session is gone, re-render the list.
		slog.Warn("switch session", "error", err, "session_id", sessionID)
		h.sendSessionsPage(ctx, b, chatID, 0, true, messageID)
		return
	}

	h.store.SelectSession(ctx, target)

	h.sendSessionsPage(ctx, b, chatID, 0, true, messageID)
}

func (h *Handler) handleSessionsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	page, _ := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, "sessions_page_"))

	var chatID int64
	var messageID int
	if msg := update.CallbackQuery.Message.Message; msg != nil {
		chatID = msg.Chat.ID
		messageID = msg.ID
	}

	h.sendSessionsPage(ctx, b, chatID, page, true, messageID)
}

func (h *Handler) createSessionErrorText(err error) string {
	switch err {
	case domain.ErrNoAssistant:
		return "Pick an assistant first: /assistants"
	case domain.ErrNoKnowledgeBase:
		return "⚠️ The selected assistant has no knowledge base attached."
	default:
		return "❌ Could not create a session. Please try again."
	}
}
