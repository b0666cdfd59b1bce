// Package bot runs the collector: the Telegram long-polling listener and the
// scheduler, with coordinated startup and shutdown.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/tgcollector/internal/config"
	"github.com/edgard/tgcollector/internal/database"
)

// Listener is the long-polling update source. *tgbot.Bot satisfies it.
type Listener interface {
	Start(ctx context.Context)
}

var _ Listener = (*tgbot.Bot)(nil)

// Bot manages the lifecycle of the collector's long-running components.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	store     database.Store
	listener  Listener
	scheduler *Scheduler
}

// NewBot creates a new orchestrator.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	store database.Store,
	listener Listener,
	scheduler *Scheduler,
) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		store:     store,
		listener:  listener,
		scheduler: scheduler,
	}
}

// Run starts the listener and the scheduler and blocks until ctx is
// cancelled or one of them fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	if err := b.store.Ping(ctx); err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram listener...", "admin_user_id", b.cfg.Telegram.AdminUserID)

		b.listener.Start(gCtx)
		b.logger.Info("Telegram listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram listener stopped unexpectedly without context cancellation.")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
