// Package dispatch decides, once per invocation, whether each enabled
// platform's head queue item should be posted now, based on the configured
// time-of-day posting windows.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ejwen/inkroute/internal/config"
	"github.com/ejwen/inkroute/internal/database"
	"github.com/ejwen/inkroute/internal/platform"
	"github.com/ejwen/inkroute/internal/util"
)

// windowTolerance is how far (in minutes, either direction) the current time
// may be from a posting window for the platform to be eligible this cycle.
const windowTolerance = 5

// Deps carries the dispatcher's collaborators.
type Deps struct {
	Logger    *slog.Logger
	Store     database.Store
	Posters   map[string]platform.Poster
	Platforms map[string]config.PlatformConfig
	Location  *time.Location
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// Dispatcher drains platform queues inside their posting windows. Each
// RunCycle dispatches at most one item per platform regardless of how many
// windows matched, and never retries a failed post within the same cycle.
type Dispatcher struct {
	deps Deps
}

// New creates a Dispatcher.
func New(deps Deps) *Dispatcher {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Logger = deps.Logger.With("component", "dispatcher")
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Dispatcher{deps: deps}
}

// RunCycle processes every configured platform once and returns the number
// of platforms whose queue changed. A failed post puts the item back at the
// queue head, so a cycle with only post failures leaves every queue
// untouched and returns no error; the error return aggregates store-level
// failures (dequeue or requeue) across platforms.
func (d *Dispatcher) RunCycle(ctx context.Context) (int, error) {
	now := d.deps.Now().In(d.deps.Location)
	log := d.deps.Logger
	log.InfoContext(ctx, "Processing platform queues", "local_time", now.Format("15:04"))

	// Deterministic platform order keeps logs and tests stable.
	names := make([]string, 0, len(d.deps.Platforms))
	for name := range d.deps.Platforms {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := 0
	var errs []error
	for _, name := range names {
		cfg := d.deps.Platforms[name]
		if !cfg.Enabled {
			log.DebugContext(ctx, "Platform disabled, skipping", "platform", name)
			continue
		}
		if !Eligible(now, cfg.Windows) {
			continue
		}

		poster, ok := d.deps.Posters[name]
		if !ok {
			log.WarnContext(ctx, "Platform has no posting adapter, skipping", "platform", name)
			continue
		}

		item, err := d.deps.Store.DequeueHead(ctx, name)
		if err != nil {
			log.ErrorContext(ctx, "Failed to dequeue head item", "platform", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: dequeue head: %w", name, err))
			continue
		}
		if item == nil {
			continue
		}

		log.InfoContext(ctx, "Posting window matched, dispatching head item",
			"platform", name, "text_preview", util.Truncate(item.Text, 30))

		if err := poster.Post(ctx, item.Text); err != nil {
			log.ErrorContext(ctx, "Failed to post, requeuing at front",
				"platform", name, "source_message_id", item.SourceMessageID, "error", err)
			if rqErr := d.deps.Store.RequeueFront(ctx, name, *item); rqErr != nil {
				// The item has left the queue and could not go back: this is
				// the one path that loses a post, so it gets a loud log.
				log.ErrorContext(ctx, "Failed to requeue item after failed post, item dropped",
					"platform", name, "source_message_id", item.SourceMessageID, "error", rqErr)
				errs = append(errs, fmt.Errorf("%s: requeue after failed post: %w", name, rqErr))
			}
			continue
		}

		changed++
		log.InfoContext(ctx, "Dispatched queue item", "platform", name)
	}

	log.InfoContext(ctx, "Queue processing finished", "platforms_changed", changed)
	return changed, errors.Join(errs...)
}

// Eligible reports whether any window ("HH:MM") is within the dispatch
// tolerance of now, comparing absolute minute-of-day distance. Multiple
// matching windows are a boolean OR; malformed windows are ignored.
func Eligible(now time.Time, windows []string) bool {
	nowMinutes := now.Hour()*60 + now.Minute()
	for _, window := range windows {
		t, err := time.Parse("15:04", window)
		if err != nil {
			continue
		}
		windowMinutes := t.Hour()*60 + t.Minute()
		diff := nowMinutes - windowMinutes
		if diff < 0 {
			diff = -diff
		}
		if diff <= windowTolerance {
			return true
		}
	}
	return false
}
