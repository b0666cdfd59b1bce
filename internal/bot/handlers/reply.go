package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// reply is what a command answers with: plain messages, or one text document.
type reply struct {
	Texts    []string
	FileName string
	File     []byte
}

func textReply(text string) reply {
	return reply{Texts: []string{text}}
}

func (r reply) send(ctx context.Context, b *bot.Bot, chatID int64, log *slog.Logger) {
	for _, text := range r.Texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
			log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
			return
		}
	}

	if r.FileName == "" {
		return
	}
	_, err := b.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: r.FileName, Data: bytes.NewReader(r.File)},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send document", "error", err, "chat_id", chatID, "file_name", r.FileName)
		return
	}
	log.DebugContext(ctx, "Sent document reply", "chat_id", chatID, "file_name", r.FileName, "size", len(r.File))
}

// commandArgs returns the whitespace-separated arguments after the command.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}
