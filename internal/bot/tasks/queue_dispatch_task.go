package tasks

import (
	"context"
	"fmt"
	"time"
)

const dispatchTimeout = 2 * time.Minute

// newQueueDispatchTask creates the task that runs one dispatch cycle over
// the platform queues. The dispatcher itself decides which platforms are
// inside a posting window.
func newQueueDispatchTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "queue_dispatch")

	return func(ctx context.Context) error {
		timeoutCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
		defer cancel()

		posted, err := deps.Dispatcher.RunCycle(timeoutCtx)
		if err != nil {
			return fmt.Errorf("dispatch cycle: %w", err)
		}

		if posted > 0 {
			log.InfoContext(ctx, "Dispatch cycle posted items", "count", posted)
		} else {
			log.DebugContext(ctx, "Dispatch cycle posted nothing")
		}
		return nil
	}
}
