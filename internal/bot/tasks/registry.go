package tasks

import "context"

// ScheduledTaskFunc is the signature every scheduled task implements. The
// scheduler's context should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks initializes and returns the map of scheduled tasks. The
// keys match the task names in the scheduler section of the configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := make(map[string]ScheduledTaskFunc)

	tasks["queue_dispatch"] = newQueueDispatchTask(deps)
	tasks["daily_digest"] = newDailyDigestTask(deps)
	tasks["reminder"] = newReminderTask(deps)

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
