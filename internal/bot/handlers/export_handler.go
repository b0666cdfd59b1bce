package handlers

import (
	"context"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tgcollector/internal/export"
)

// NewExportHandler returns a handler for /export <chat_id> <days>.
func NewExportHandler(deps HandlerDeps) bot.HandlerFunc {
	return exportHandler{deps: deps, byDate: false}.Handle
}

// NewExportDateHandler returns a handler for
// /export_date <chat_id> <YYYY-MM-DD> <YYYY-MM-DD>.
func NewExportDateHandler(deps HandlerDeps) bot.HandlerFunc {
	return exportHandler{deps: deps, byDate: true}.Handle
}

// exportHandler renders the messages of one chat over a period.
type exportHandler struct {
	deps   HandlerDeps
	byDate bool
}

func (h exportHandler) name() string {
	if h.byDate {
		return "export_date"
	}
	return "export"
}

func (h exportHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.logger().With("handler", h.name())

	if update.Message == nil {
		log.WarnContext(ctx, "Export handler received update with nil message", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Admin requested export", "chat_id", chatID, "args", update.Message.Text)
	h.buildReply(ctx, commandArgs(update.Message.Text)).send(ctx, b, chatID, log)
}

func (h exportHandler) buildReply(ctx context.Context, args []string) reply {
	log := h.deps.logger().With("handler", h.name())
	msgs := h.deps.Config.Messages

	want := 2
	if h.byDate {
		want = 3
	}
	if len(args) < want {
		return textReply(msgs.ExportUsage)
	}

	target, err := export.ParseChatID(args[0])
	if err != nil {
		return textReply(msgs.ExportUsage)
	}

	var period export.Period
	if h.byDate {
		period, err = export.ParseDateRange(args[1], args[2])
		if err != nil {
			return textReply(msgs.InvalidDate)
		}
	} else {
		days, err := export.ParseDays(args[1])
		if err != nil {
			return textReply(msgs.ExportUsage)
		}
		if period, err = export.LastDays(h.deps.now(), days); err != nil {
			return textReply(msgs.ExportUsage)
		}
	}

	res, err := export.Export(ctx, h.deps.Store, target, period)
	if err != nil {
		log.ErrorContext(ctx, "Export failed", "error", err, "target_chat_id", target)
		return textReply(msgs.GeneralError)
	}
	if len(res.Messages) == 0 {
		return textReply(msgs.NoMessages)
	}

	log.InfoContext(ctx, "Export rendered", "target_chat_id", res.ChatID, "messages", len(res.Messages))
	if utf8.RuneCountInString(res.Text) > export.MaxMessageLength {
		return reply{FileName: export.FileName(res.ChatID, h.deps.now()), File: []byte(res.Text)}
	}
	return textReply(res.Text)
}
