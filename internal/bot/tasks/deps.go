// Package tasks implements the collector's scheduled maintenance tasks.
package tasks

import (
	"log/slog"

	"github.com/edgard/tgcollector/internal/config"
	"github.com/edgard/tgcollector/internal/database"
)

// TaskDeps contains the dependencies of scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
