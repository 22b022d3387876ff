package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/opengrove/ragchat/internal/config"
	"github.com/opengrove/ragchat/internal/domain"
	tg "github.com/opengrove/ragchat/internal/telegram"
)

// HandleTextPrivate routes free-form private messages into the current chat
// session, creating one lazily when nothing is selected yet.
func (h *Handler) HandleTextPrivate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}
	chatID := update.Message.Chat.ID

	assistant := h.store.Assistant()
	if assistant == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Pick an assistant first: /assistants",
		})
		return
	}

	knowledgeBaseID, ok := assistant.PrimaryKnowledgeBase()
	if !ok {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⚠️ The selected assistant has no knowledge base attached.",
		})
		return
	}

	session := h.store.Session()
	if session == nil {
		created, err := h.store.CreateNewSession(ctx, "")
		if err != nil {
			slog.Error("create session", "error", err)
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   h.createSessionErrorText(err),
			})
			return
		}
		session = created
	}

	stopTyping := tg.StartTyping(ctx, b, chatID)
	defer stopTyping()

	var reply *domain.Message
	var err error
	switch {
	case h.cfg.StreamReplies:
		reply, err = h.streamReply(ctx, b, chatID, text, session.ID, knowledgeBaseID)
	case h.cfg.EnhancedContext:
		reply, err = h.store.SendEnhancedMessageToAssistant(ctx, text, session.ID, knowledgeBaseID, "")
	default:
		reply, err = h.store.SendMessageToAssistant(ctx, text, session.ID, knowledgeBaseID)
	}

	if err != nil {
		if errors.Is(err, domain.ErrSendInFlight) {
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "⏳ Still answering your previous message, one moment...",
			})
			return
		}
		slog.Error("send message", "error", err, "session_id", session.ID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Something went wrong while answering. Please try again.",
		})
		return
	}
	if reply == nil {
		return
	}

	stopTyping()

	final := reply.Content + tg.FormatSources(reply.Passages)
	if err := tg.SendLongMessage(ctx, b, chatID, final); err != nil {
		slog.Error("send reply", "error", err, "session_id", session.ID)
	}
}

// streamReply runs the streaming send cycle while live-editing a status
// message with the partial answer. The status message is deleted before the
// final reply goes out, so the caller renders the complete text exactly once.
func (h *Handler) streamReply(ctx context.Context, b *bot.Bot, chatID int64, text, sessionID, knowledgeBaseID string) (*domain.Message, error) {
	status, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "✍️ ...",
	})
	if err != nil {
		slog.Warn("send status message", "error", err)
		return h.store.SendMessageToAssistant(ctx, text, sessionID, knowledgeBaseID)
	}

	var mu sync.Mutex
	var partial strings.Builder
	lastEdit := time.Now()

	onChunk := func(chunk string) {
		mu.Lock()
		partial.WriteString(chunk)
		if time.Since(lastEdit) < config.StreamEditInterval || partial.Len() == 0 {
			mu.Unlock()
			return
		}
		lastEdit = time.Now()
		preview := partial.String() + " ▌"
		mu.Unlock()

		if err := tg.EditLongMessage(ctx, b, chatID, status.ID, preview); err != nil {
			slog.Debug("edit stream preview", "error", err)
		}
	}

	reply, err := h.store.StreamMessageToAssistant(ctx, text, sessionID, knowledgeBaseID, onChunk)

	b.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: status.ID,
	})

	return reply, err
}
