package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	tgbot "github.com/go-telegram/bot"

	"github.com/ejwen/inkroute/internal/util"
)

// queuePreviewLen caps how much of each queued text shows in listings.
const queuePreviewLen = 60

// handleCommand dispatches "!" prefixed queue commands.
func (h contentHandler) handleCommand(ctx context.Context, b *tgbot.Bot, chatID int64, text string) {
	log := h.deps.Logger.With("handler", "command")
	cmd := strings.ToLower(strings.Fields(text)[0])

	var reply string
	var err error

	switch {
	case cmd == "!queues":
		reply, err = h.listAllQueues(ctx)
	case strings.HasPrefix(cmd, "!dequeue_"):
		reply, err = h.dequeue(ctx, strings.TrimPrefix(cmd, "!dequeue_"))
	case strings.HasPrefix(cmd, "!queue_"):
		reply, err = h.listQueue(ctx, strings.TrimPrefix(cmd, "!queue_"))
	default:
		reply = fmt.Sprintf("Unknown command: %s\nAvailable: !queues, !queue_<platform>, !dequeue_<platform>", cmd)
	}

	if err != nil {
		log.ErrorContext(ctx, "Queue command failed", "command", cmd, "error", err)
		reply = "❌ " + err.Error()
	}

	log.InfoContext(ctx, "Handled queue command", "command", cmd)
	h.reply(ctx, b, chatID, reply)
}

// listAllQueues renders every platform queue, empty ones included. The
// platform set is the union of configured platforms and platforms that still
// hold queued items, so rows enqueued under a since-removed platform stay
// visible and drainable.
func (h contentHandler) listAllQueues(ctx context.Context) (string, error) {
	names, err := h.allPlatforms(ctx)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "No platforms configured.", nil
	}

	var sb strings.Builder
	for i, name := range names {
		section, err := h.renderQueue(ctx, name)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(section)
	}
	return sb.String(), nil
}

func (h contentHandler) listQueue(ctx context.Context, platform string) (string, error) {
	known, err := h.knownPlatform(ctx, platform)
	if err != nil {
		return "", err
	}
	if !known {
		return fmt.Sprintf("Unknown platform: %s", platform), nil
	}
	return h.renderQueue(ctx, platform)
}

func (h contentHandler) dequeue(ctx context.Context, platform string) (string, error) {
	known, err := h.knownPlatform(ctx, platform)
	if err != nil {
		return "", err
	}
	if !known {
		return fmt.Sprintf("Unknown platform: %s", platform), nil
	}

	item, err := h.deps.Store.DequeueHead(ctx, platform)
	if err != nil {
		return "", fmt.Errorf("dequeue %s: %w", platform, err)
	}
	if item == nil {
		return fmt.Sprintf("%s queue is already empty.", titleCase(platform)), nil
	}
	return fmt.Sprintf("Removed from %s queue:\n%s", titleCase(platform), util.Truncate(item.Text, queuePreviewLen)), nil
}

func (h contentHandler) renderQueue(ctx context.Context, platform string) (string, error) {
	items, err := h.deps.Store.ListQueue(ctx, platform)
	if err != nil {
		return "", fmt.Errorf("list %s queue: %w", platform, err)
	}

	if len(items) == 0 {
		return fmt.Sprintf("%s Queue: Empty", titleCase(platform)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Queue (%d items):", titleCase(platform), len(items))
	for i, item := range items {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, util.Truncate(item.Text, queuePreviewLen))
	}
	return sb.String(), nil
}

// allPlatforms returns the sorted union of configured platform names and
// platform names present in the queue store.
func (h contentHandler) allPlatforms(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool, len(h.deps.Config.Platforms))
	names := make([]string, 0, len(h.deps.Config.Platforms))
	for name := range h.deps.Config.Platforms {
		seen[name] = true
		names = append(names, name)
	}

	stored, err := h.deps.Store.Platforms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored platforms: %w", err)
	}
	for _, name := range stored {
		if !seen[name] {
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names, nil
}

func (h contentHandler) knownPlatform(ctx context.Context, name string) (bool, error) {
	if _, ok := h.deps.Config.Platforms[name]; ok {
		return true, nil
	}
	stored, err := h.deps.Store.Platforms(ctx)
	if err != nil {
		return false, fmt.Errorf("list stored platforms: %w", err)
	}
	for _, s := range stored {
		if s == name {
			return true, nil
		}
	}
	return false, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
