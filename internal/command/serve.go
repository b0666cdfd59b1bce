package command

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/cobra"

	"github.com/edgard/tgcollector/internal/bot"
	"github.com/edgard/tgcollector/internal/bot/handlers"
	"github.com/edgard/tgcollector/internal/bot/tasks"
	"github.com/edgard/tgcollector/internal/collector"
	"github.com/edgard/tgcollector/internal/config"
	"github.com/edgard/tgcollector/internal/database"
	"github.com/edgard/tgcollector/internal/logger"
	"github.com/edgard/tgcollector/internal/media"
	"github.com/edgard/tgcollector/internal/telegram"
)

// NewServeCmd runs the collector bot until interrupted.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the collector bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configPath(cmd))
		},
	}
}

// serve initializes every component (config, logger, db, media, telegram,
// scheduler) and blocks until ctx is cancelled.
func serve(ctx context.Context, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return err
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	// The default handler is bound after the bot exists, since the media
	// downloader needs the bot's file API. No update is delivered before Start.
	var ingest tgbot.HandlerFunc
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			ingest(ctx, b, update)
		}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return err
	}

	downloader, err := media.New(cfg.Media, tg, log)
	if err != nil {
		log.Error("Failed to initialize media storage", "backend", cfg.Media.Backend, "error", err)
		return err
	}
	ingest = telegram.NewIngestHandler(collector.New(collector.Deps{
		Store:      store,
		Downloader: downloader,
		Logger:     log,
	}), log)
	log.Info("Collector initialized", "media_enabled", cfg.Media.Enabled, "media_backend", cfg.Media.Backend)

	if cfg.Telegram.DropPendingUpdates {
		if _, err := tg.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			log.Warn("Failed to drop pending updates", "error", err)
		}
	}

	hDeps := handlers.HandlerDeps{Logger: log, Config: cfg, Store: store}
	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return err
	}

	tDeps := tasks.TaskDeps{Logger: log, Store: store, Config: cfg}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		return err
	}

	app := bot.NewBot(log, cfg, store, tg, sched)

	log.Info("Starting collector...")
	runErr := app.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Collector stopped due to error", "error", runErr)
		return runErr
	}

	log.Info("Collector stopped gracefully.")
	return nil
}
