// Package logger provides structured logging for the collector.
// It uses Go's slog package with configurable levels and formats.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewLogger creates a slog Logger writing to stdout and installs it as the default.
// format is "json" or "text"; unknown values fall back to JSON.
func NewLogger(levelStr, format string) *slog.Logger {
	logger := New(os.Stdout, levelStr, format)
	slog.SetDefault(logger)
	return logger
}

// New creates a slog Logger writing to w without touching the default logger.
func New(w io.Writer, levelStr, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
	}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a configured level name to a slog.Level, defaulting to info.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Middleware creates a logging middleware for the Telegram bot.
// Every update is logged at debug level with its kind and identifiers.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			startTime := time.Now()

			logEntry := log.With(append([]any{"update_id", update.ID}, UpdateAttrs(update)...)...)
			logEntry.DebugContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.DebugContext(ctx, "Finished processing update", "duration", time.Since(startTime))
		}
	}
}

// UpdateAttrs returns the log attributes that identify an update.
func UpdateAttrs(update *models.Update) []any {
	switch {
	case update.Message != nil:
		return messageAttrs("message", update.Message)
	case update.EditedMessage != nil:
		return messageAttrs("edited_message", update.EditedMessage)
	case update.MessageReaction != nil:
		r := update.MessageReaction
		attrs := []any{"update_type", "message_reaction", "chat_id", r.Chat.ID, "message_id", r.MessageID}
		if r.User != nil {
			attrs = append(attrs, "user_id", r.User.ID)
		}
		return attrs
	case update.CallbackQuery != nil:
		return []any{"update_type", "callback_query", "user_id", update.CallbackQuery.From.ID}
	default:
		return []any{"update_type", "other"}
	}
}

func messageAttrs(kind string, msg *models.Message) []any {
	attrs := []any{"update_type", kind, "message_id", msg.ID, "chat_id", msg.Chat.ID}
	if msg.From != nil {
		attrs = append(attrs, "user_id", msg.From.ID)
	}
	if msg.Text != "" {
		attrs = append(attrs, "text_preview", truncateString(msg.Text, 50))
	}
	return attrs
}

func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}
