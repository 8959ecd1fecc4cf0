// Package tasks implements the bot's scheduled tasks: queue dispatch,
// daily digest creation, and the untagged-thought reminder.
package tasks

import (
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/ejwen/inkroute/internal/database"
	"github.com/ejwen/inkroute/internal/digest"
	"github.com/ejwen/inkroute/internal/dispatch"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger     *slog.Logger
	Store      database.Store
	Digest     *digest.Store
	Dispatcher *dispatch.Dispatcher
	TgBot      *tgbot.Bot
	// AdminUserID is where reminders get delivered.
	AdminUserID int64
	// Location anchors "today" for the digest task.
	Location *time.Location
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

func (d TaskDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
