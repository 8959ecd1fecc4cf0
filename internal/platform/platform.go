// Package platform implements the outbound posting adapters, one per social
// destination. Adapters are resolved from configuration at startup into a
// registry keyed by platform name; each takes plain text and returns an
// error carrying a diagnostic payload on failure.
package platform

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/ejwen/inkroute/internal/config"
)

// postTimeout bounds every outbound posting call.
const postTimeout = 30 * time.Second

// Poster publishes plain text to one external platform.
type Poster interface {
	// Post publishes text. The implementation applies a bounded timeout; the
	// caller decides whether and when to retry.
	Post(ctx context.Context, text string) error
}

// NewRegistry builds posting adapters for every configured platform. Platform
// names without a known adapter are logged and skipped rather than treated
// as fatal, so a config typo disables one queue instead of the whole bot.
func NewRegistry(cfgs map[string]config.PlatformConfig, tg *tgbot.Bot, logger *slog.Logger) map[string]Poster {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "platform_registry")

	httpClient := &http.Client{Timeout: postTimeout}

	posters := make(map[string]Poster, len(cfgs))
	for name, cfg := range cfgs {
		switch name {
		case "mastodon":
			posters[name] = NewMastodon(cfg.InstanceURL, cfg.AccessToken, httpClient, logger)
		case "threads":
			posters[name] = NewThreads(cfg.UserID, cfg.AccessToken, httpClient, logger)
		case "telegram":
			posters[name] = NewTelegramChannel(tg, cfg.ChannelID, logger)
		default:
			log.Warn("No posting adapter for configured platform, skipping", "platform", name)
		}
	}
	return posters
}
