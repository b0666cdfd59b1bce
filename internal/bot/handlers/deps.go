package handlers

import (
	"log/slog"
	"time"

	"github.com/edgard/tgcollector/internal/config"
	"github.com/edgard/tgcollector/internal/database"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d HandlerDeps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d HandlerDeps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
