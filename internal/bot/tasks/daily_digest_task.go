package tasks

import (
	"context"
	"fmt"
)

// digestLanguage is the language used for digests created by schedule
// rather than by an inbound message.
const digestLanguage = "zh"

// newDailyDigestTask creates the task that makes sure today's digest
// document exists, so the day's file is there even before the first entry.
func newDailyDigestTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "daily_digest")

	return func(ctx context.Context) error {
		now := deps.now().In(deps.Location)

		created, err := deps.Digest.Ensure(now, digestLanguage)
		if err != nil {
			return fmt.Errorf("ensure daily digest: %w", err)
		}

		if created {
			log.InfoContext(ctx, "Created daily digest document", "date", now.Format("2006-01-02"))
		} else {
			log.DebugContext(ctx, "Daily digest document already exists", "date", now.Format("2006-01-02"))
		}
		return nil
	}
}
