// Package telegram adapts the go-telegram/bot client to the collector: it
// builds the bot, registers command handlers and turns updates into events.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tgcollector/internal/bot/handlers"
	apperrors "github.com/edgard/tgcollector/internal/errors"
	"github.com/edgard/tgcollector/internal/events"
)

// AllowedUpdates are the update kinds requested from the Bot API. Reaction
// updates are only delivered when asked for explicitly.
var AllowedUpdates = bot.AllowedUpdates{"message", "edited_message", "message_reaction"}

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	opts = append([]bot.Option{bot.WithAllowedUpdates(AllowedUpdates)}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", tokenPrefix(token))
	return b, nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}

// applyMiddleware wraps a handler function with a slice of middleware.
// Middleware are applied in reverse order so the first one in the slice is the outermost.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers command handlers with the Telegram bot instance,
// wrapping each one in its own middleware.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	for name, regHandler := range registeredHandlers {
		if regHandler.Handler == nil {
			log.Warn("Skipping registration for nil handler", "command", name)
			continue
		}

		finalHandler := applyMiddleware(regHandler.Handler, regHandler.Middleware)
		b.RegisterHandler(regHandler.HandlerType, regHandler.Pattern, regHandler.MatchType, finalHandler)
		log.Debug("Registered handler", "command", name, "middleware_count", len(regHandler.Middleware))
	}

	log.Info("Registered Telegram handlers successfully", "count", len(registeredHandlers))
	return nil
}

// EventHandler consumes collector events.
type EventHandler interface {
	Handle(ctx context.Context, ev events.Event) error
}

// NewIngestHandler returns the default update handler. It converts every
// update that no command matched and hands it to h. Failures are logged
// per update and never stop the poller.
func NewIngestHandler(h EventHandler, logger *slog.Logger) bot.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "ingest")

	return func(ctx context.Context, _ *bot.Bot, update *models.Update) {
		ev, err := EventFromUpdate(update)
		if err == nil {
			err = h.Handle(ctx, ev)
		}
		if err == nil {
			return
		}

		switch {
		case apperrors.IsValidation(err):
			log.DebugContext(ctx, "Update skipped", "update_id", update.ID, "reason", err)
		default:
			log.ErrorContext(ctx, "Failed to collect update",
				"update_id", update.ID, "code", apperrors.Code(err), "error", err)
		}
	}
}
