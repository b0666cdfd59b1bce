package tasks

import (
	"context"
	"log/slog"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context
// should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// SQLMaintenance is the config key of the database maintenance task.
const SQLMaintenance = "sql_maintenance"

// RegisterAllTasks returns every known task keyed by its config name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	tasks := map[string]ScheduledTaskFunc{
		SQLMaintenance: newSQLMaintenanceTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
