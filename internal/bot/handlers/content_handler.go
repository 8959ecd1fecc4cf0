package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ejwen/inkroute/internal/router"
)

// NewContentHandler returns the default handler for inbound messages. Text
// starting with "!" is treated as a queue command; everything else goes
// through the router.
func NewContentHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return contentHandler{deps}.Handle
}

type contentHandler struct {
	deps HandlerDeps
}

func (h contentHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "content")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Content handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	text := update.Message.Text
	if strings.TrimSpace(text) == "" {
		log.DebugContext(ctx, "Skipping message without text", "chat_id", update.Message.Chat.ID)
		return
	}

	chatID := update.Message.Chat.ID

	if strings.HasPrefix(text, "!") {
		h.handleCommand(ctx, b, chatID, strings.TrimSpace(text))
		return
	}

	messageID := strconv.Itoa(update.Message.ID)
	res, err := h.deps.Router.Route(ctx, messageID, text)
	if err != nil {
		log.ErrorContext(ctx, "Routing failed", "error", err, "message_id", messageID)
		h.reply(ctx, b, chatID, "❌ "+err.Error())
		return
	}

	log.InfoContext(ctx, "Message routed", "kind", res.Kind, "title", res.Title, "language", res.Language)
	h.reply(ctx, b, chatID, confirmation(res))
}

// confirmation builds the localized acknowledgement for a routed message.
func confirmation(res *router.Result) string {
	zh := res.Language == "zh"

	switch res.Kind {
	case router.KindDaily:
		if zh {
			return fmt.Sprintf("✅ 已添加到今日日记：%s", res.Title)
		}
		return fmt.Sprintf("✅ Added to today's digest: %s", res.Title)
	case router.KindDraft, router.KindPost, router.KindIdea:
		if zh {
			return fmt.Sprintf("✅ 已处理您的内容：%s", res.Title)
		}
		return fmt.Sprintf("✅ Processed your content: %s", res.Title)
	case router.KindSNS:
		targets := strings.Join(res.Platforms, ", ")
		if zh {
			return fmt.Sprintf("✅ 已加入发布队列：%s", targets)
		}
		return fmt.Sprintf("✅ Added to publish queues: %s", targets)
	case router.KindUntagged:
		if zh {
			return "📝 已保存未标记的想法，稍后会提醒您整理。"
		}
		return "📝 Saved as an untagged thought, you'll get a reminder to sort it."
	default:
		if zh {
			return "ℹ️ 没有可处理的目标。"
		}
		return "ℹ️ Nothing to route."
	}
}

func (h contentHandler) reply(ctx context.Context, b *tgbot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
