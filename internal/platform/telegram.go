package platform

import (
	"context"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"

	"github.com/ejwen/inkroute/internal/util"
)

// TelegramChannel posts to a Telegram channel through the bot client itself.
type TelegramChannel struct {
	bot       *tgbot.Bot
	channelID int64
	logger    *slog.Logger
}

// NewTelegramChannel creates a Telegram channel adapter. The bot must be an
// administrator of the target channel.
func NewTelegramChannel(bot *tgbot.Bot, channelID int64, logger *slog.Logger) *TelegramChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramChannel{
		bot:       bot,
		channelID: channelID,
		logger:    logger.With("component", "telegram_poster"),
	}
}

// Post sends text to the configured channel.
func (t *TelegramChannel) Post(ctx context.Context, text string) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: bot client not configured")
	}
	if t.channelID == 0 {
		return fmt.Errorf("telegram: missing channel id")
	}

	ctx, cancel := context.WithTimeout(ctx, postTimeout)
	defer cancel()

	if _, err := t.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: t.channelID,
		Text:   text,
	}); err != nil {
		return fmt.Errorf("telegram: send to channel %d: %w", t.channelID, err)
	}

	t.logger.Info("Posted to Telegram channel", "channel_id", t.channelID, "text_preview", util.Truncate(text, 30))
	return nil
}
