package tasks

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"

	"github.com/ejwen/inkroute/internal/database"
	"github.com/ejwen/inkroute/internal/util"
)

const reminderSnippetLen = 50

// newReminderTask creates the task that nudges the admin about thoughts
// saved without any tag. When nothing is pending it stays silent.
func newReminderTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "reminder")

	return func(ctx context.Context) error {
		thoughts, err := deps.Store.ListUntagged(ctx)
		if err != nil {
			return fmt.Errorf("list untagged thoughts: %w", err)
		}

		if len(thoughts) == 0 {
			log.DebugContext(ctx, "No untagged thoughts, skipping reminder")
			return nil
		}

		msg := FormatReminder(thoughts)
		_, err = deps.TgBot.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: deps.AdminUserID,
			Text:   msg,
		})
		if err != nil {
			return fmt.Errorf("send reminder: %w", err)
		}

		log.InfoContext(ctx, "Sent untagged-thought reminder", "count", len(thoughts))
		return nil
	}
}

// FormatReminder renders the reminder message, grouping thoughts by
// language with the Chinese block first.
func FormatReminder(thoughts []database.UntaggedThought) string {
	var zh, en []database.UntaggedThought
	for _, t := range thoughts {
		if t.Language == "en" {
			en = append(en, t)
		} else {
			zh = append(zh, t)
		}
	}

	var parts []string
	if len(zh) > 0 {
		var sb strings.Builder
		sb.WriteString("🔔 提醒：您有未标记的想法\n")
		for _, t := range zh {
			fmt.Fprintf(&sb, "\n• %s", util.Truncate(t.Content, reminderSnippetLen))
		}
		sb.WriteString("\n\n请为这些想法添加标签以进行处理。")
		parts = append(parts, sb.String())
	}
	if len(en) > 0 {
		var sb strings.Builder
		sb.WriteString("🔔 Reminder: You have untagged thoughts\n")
		for _, t := range en {
			fmt.Fprintf(&sb, "\n• %s", util.Truncate(t.Content, reminderSnippetLen))
		}
		sb.WriteString("\n\nPlease tag these thoughts to process them.")
		parts = append(parts, sb.String())
	}

	return strings.Join(parts, "\n\n---\n\n")
}
