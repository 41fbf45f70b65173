package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharpline/sharpline-alerts/internal/engine"
	"github.com/sharpline/sharpline-alerts/internal/store"
)

// TelegramSender delivers alerts as Telegram messages to the chat each user
// registered. Nil-safe: when not configured, Send is a no-op.
type TelegramSender struct {
	bot    *tgbotapi.BotAPI
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTelegramSender creates a Telegram sender from a bot token. Returns nil
// if token is empty (channel disabled).
func NewTelegramSender(token string, pool *pgxpool.Pool, logger *slog.Logger) *TelegramSender {
	if token == "" {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create telegram bot", "error", err)
		return nil
	}
	bot.Debug = false
	return &TelegramSender{bot: bot, pool: pool, logger: logger}
}

func (s *TelegramSender) Name() string { return "telegram" }

// Send looks up the user's registered chat and posts the alert there.
// Users without an active chat are not an error for the batch; the caller
// records the row as failed and moves on.
func (s *TelegramSender) Send(ctx context.Context, row store.DeliveryRow) error {
	if s == nil {
		return nil
	}

	chatID, err := store.GetTelegramChatID(ctx, s.pool, row.UserID)
	if err != nil {
		return fmt.Errorf("no telegram chat: %w", err)
	}

	text := fmt.Sprintf("%s %s\n%s",
		engine.TypeIcon(row.Type), row.Title, row.Message)

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
