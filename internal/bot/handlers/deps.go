// Package handlers implements the Telegram message handlers for the bot.
package handlers

import (
	"log/slog"

	"github.com/ejwen/inkroute/internal/config"
	"github.com/ejwen/inkroute/internal/database"
	"github.com/ejwen/inkroute/internal/router"
)

// HandlerDeps holds the dependencies required by the handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
	Router *router.Router
}
