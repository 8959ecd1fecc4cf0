package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// AdminOnly creates a middleware that checks if the message sender is the
// configured admin user. Updates from anyone else are dropped without a
// reply so the bot stays invisible to strangers.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				return
			}

			userID := update.Message.From.ID
			if userID != deps.Config.Telegram.AdminUserID {
				deps.Logger.With("middleware", "AdminOnly").
					WarnContext(ctx, "Ignoring update from unauthorized user", "user_id", userID, "chat_id", update.Message.Chat.ID)
				return
			}

			next(ctx, b, update)
		}
	}
}

// TrackUpdates creates a middleware that persists the highest update ID seen
// so far. Restarts resume fetching after this marker instead of replaying
// already-delivered updates. It runs before authorization so the marker also
// advances past ignored updates.
func TrackUpdates(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if _, err := deps.Store.SaveLastUpdateID(ctx, update.ID); err != nil {
				deps.Logger.With("middleware", "TrackUpdates").
					ErrorContext(ctx, "Failed to persist update marker", "error", err, "update_id", update.ID)
			}

			next(ctx, b, update)
		}
	}
}
