// Package main contains the entrypoint for the inkroute Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/ejwen/inkroute/internal/bot"
	"github.com/ejwen/inkroute/internal/bot/handlers"
	"github.com/ejwen/inkroute/internal/bot/tasks"
	"github.com/ejwen/inkroute/internal/config"
	"github.com/ejwen/inkroute/internal/content"
	"github.com/ejwen/inkroute/internal/database"
	"github.com/ejwen/inkroute/internal/digest"
	"github.com/ejwen/inkroute/internal/dispatch"
	"github.com/ejwen/inkroute/internal/logger"
	"github.com/ejwen/inkroute/internal/platform"
	"github.com/ejwen/inkroute/internal/router"
	"github.com/ejwen/inkroute/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components, starts the bot, and blocks until shutdown.
// It returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	loc, err := cfg.Location()
	if err != nil {
		log.Error("Failed to load configured time zone", "timezone", cfg.Content.Timezone, "error", err)
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	digestStore := digest.NewStore(cfg.Content.Dir, loc, log)
	contentStore := content.NewStore(cfg.Content.Dir, loc, log)

	platformNames := make([]string, 0, len(cfg.Platforms))
	for name := range cfg.Platforms {
		platformNames = append(platformNames, name)
	}
	sort.Strings(platformNames)

	rtr := router.New(router.Deps{
		Logger:         log,
		Store:          store,
		Digest:         digestStore,
		Content:        contentStore,
		KnownPlatforms: platformNames,
	})

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Store:  store,
		Router: rtr,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(
			logger.Middleware(log),
			handlers.TrackUpdates(hDeps),
			handlers.AdminOnly(hDeps),
		),
		tgbot.WithDefaultHandler(handlers.NewContentHandler(hDeps)),
	}

	// Resume fetching after the last update seen before the previous
	// shutdown instead of replaying delivered updates.
	lastUpdate, err := store.LastUpdateID(ctx)
	if err != nil {
		log.Error("Failed to read last update marker", "error", err)
		return 1
	}
	if lastUpdate > 0 {
		log.Info("Resuming after persisted update marker", "last_update_id", lastUpdate)
		botOpts = append(botOpts, tgbot.WithInitialOffset(lastUpdate+1))
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	posters := platform.NewRegistry(cfg.Platforms, tg, log)
	dispatcher := dispatch.New(dispatch.Deps{
		Logger:    log,
		Store:     store,
		Posters:   posters,
		Platforms: cfg.Platforms,
		Location:  loc,
	})

	tDeps := tasks.TaskDeps{
		Logger:      log,
		Store:       store,
		Digest:      digestStore,
		Dispatcher:  dispatcher,
		TgBot:       tg,
		AdminUserID: cfg.Telegram.AdminUserID,
		Location:    loc,
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.New(log, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
