package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/opengrove/ragchat/internal/config"
	"github.com/opengrove/ragchat/internal/handler"
	"github.com/opengrove/ragchat/internal/middleware"
	"github.com/opengrove/ragchat/internal/ragapi"
	"github.com/opengrove/ragchat/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize backend client and session store
	backend := ragapi.NewClient(cfg.BackendURL, cfg.APIKey)
	store := service.NewChatSessionStore(backend)

	// Preselect an assistant when one is configured
	if cfg.DefaultAssistantID != "" {
		record, err := backend.GetAssistant(ctx, cfg.DefaultAssistantID)
		if err != nil {
			slog.Error("failed to load default assistant", "error", err, "assistant_id", cfg.DefaultAssistantID)
		} else {
			assistant := service.AssistantFromRecord(*record)
			store.SelectAssistant(ctx, &assistant)
			slog.Info("default assistant selected", "assistant_id", assistant.ID, "name", assistant.Name)
		}
	}

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
		),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	if cfg.DropPendingUpdates {
		b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true})
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	// Initialize handler
	h := handler.New(handler.Deps{
		Bot:     b,
		Cfg:     cfg,
		Store:   store,
		Backend: backend,
	})

	// Register all handlers
	h.Register()

	// Register default text handler for chat messages
	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		// Skip commands
		if len(update.Message.Text) > 0 && update.Message.Text[0] == '/' {
			return
		}
		if update.Message.Chat.Type == "private" {
			h.HandleTextPrivate(ctx, b, update)
		}
	})

	// Start bot
	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	// Graceful shutdown
	slog.Info("bot stopped gracefully")
}
