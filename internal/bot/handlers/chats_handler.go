package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/tgcollector/internal/export"
)

// NewChatsHandler returns a handler for the /chats command.
func NewChatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return chatsHandler{deps}.Handle
}

// chatsHandler lists collected group chats.
type chatsHandler struct {
	deps HandlerDeps
}

func (h chatsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.logger().With("handler", "chats")

	if update.Message == nil {
		log.WarnContext(ctx, "Chats handler received update with nil message", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Admin requested chat list", "chat_id", chatID)
	h.buildReply(ctx).send(ctx, b, chatID, log)
}

func (h chatsHandler) buildReply(ctx context.Context) reply {
	log := h.deps.logger().With("handler", "chats")

	chats, err := h.deps.Store.ListChats(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to list chats", "error", err)
		return textReply(h.deps.Config.Messages.GeneralError)
	}

	chats = export.FilterChats(chats)
	if len(chats) == 0 {
		return textReply(h.deps.Config.Messages.NoChats)
	}

	return reply{Texts: export.Chunk(export.FormatChatList(chats), export.MaxMessageLength)}
}
