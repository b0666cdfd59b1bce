// Package collector turns inbound chat events into store records.
//
// Handle is safe for concurrent use; every store call runs in its own
// transaction, so events for different chats never share state.
package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/edgard/tgcollector/internal/database"
	apperrors "github.com/edgard/tgcollector/internal/errors"
	"github.com/edgard/tgcollector/internal/events"
	"github.com/edgard/tgcollector/internal/media"
)

// Deps contains the collaborators of the Collector. Downloader may be nil,
// in which case attachments are recorded without a local copy.
type Deps struct {
	Store      database.Store
	Downloader media.Downloader
	Logger     *slog.Logger
}

// Collector normalizes and persists events.
type Collector struct {
	store      database.Store
	downloader media.Downloader
	logger     *slog.Logger
}

// New creates a Collector.
func New(deps Deps) *Collector {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collector{
		store:      deps.Store,
		downloader: deps.Downloader,
		logger:     logger.With("component", "collector"),
	}
}

// Handle processes one event. Dropped events return a ValidationError and
// failed message persistence returns a StoreError. Attachment failures are
// logged and never returned.
func (c *Collector) Handle(ctx context.Context, ev events.Event) error {
	switch e := ev.(type) {
	case *events.NewMessage:
		return c.handleContent(ctx, &e.Content, nil)
	case *events.EditedMessage:
		editDate := e.EditDate.UTC()
		if e.EditDate.IsZero() {
			editDate = time.Now().UTC()
		}
		return c.handleContent(ctx, &e.Content, &editDate)
	case *events.ReactionUpdate:
		return c.reconcile(ctx, e)
	case nil:
		return apperrors.NewValidationError("nil event", nil)
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unsupported event %T", ev), nil)
	}
}

// handleContent persists a new message, or an edit when editDate is set.
// Edits only touch the message row. Attachments are recorded once, by the
// delivery that inserts the row, so a redelivered message adds nothing.
func (c *Collector) handleContent(ctx context.Context, content *events.Content, editDate *time.Time) error {
	log := c.logger.With("chat_id", content.Chat.ID, "message_id", content.MessageID, "edit", editDate != nil)

	if err := checkContent(content); err != nil {
		return err
	}

	author := content.From
	if _, err := c.store.UpsertUser(ctx, userParams(author)); err != nil {
		return fmt.Errorf("failed to save author: %w", err)
	}

	if _, err := c.store.UpsertChat(ctx, chatParams(content.Chat)); err != nil {
		return fmt.Errorf("failed to save chat: %w", err)
	}

	text := RenderText(content)
	params := database.MessageParams{
		MessageID:   content.MessageID,
		ChatID:      content.Chat.ID,
		UserID:      &author.ID,
		MessageDate: messageDate(content.Date),
		EditedDate:  editDate,
	}
	if text != "" || editDate != nil {
		params.Text = &text
	}

	msg, err := c.store.UpsertMessage(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	if editDate != nil {
		log.DebugContext(ctx, "Edited message saved", "id", msg.ID)
		return nil
	}
	if !msg.Inserted {
		log.DebugContext(ctx, "Message already stored, skipping attachments", "id", msg.ID)
		return nil
	}

	documents := c.saveDocuments(ctx, log, msg.ID, content)
	reactions := c.saveReactions(ctx, log, msg.ID, content.Reactions)
	log.DebugContext(ctx, "Message saved", "id", msg.ID, "documents", documents, "reactions", reactions)
	return nil
}

func (c *Collector) saveDocuments(ctx context.Context, log *slog.Logger, messageID int64, content *events.Content) int {
	saved := 0
	for _, att := range ExtractAttachments(content) {
		params := att.params(messageID)
		if c.downloader != nil {
			location, err := c.downloader.Fetch(ctx, att.FileID, media.Hint{
				DocumentType: string(att.Type),
				FileName:     att.FileName,
				MimeType:     att.MimeType,
				ChatID:       content.Chat.ID,
			})
			if err != nil {
				log.WarnContext(ctx, "Media download failed, keeping metadata only",
					"file_id", att.FileID, "document_type", att.Type, "error", err)
			} else {
				params.LocalPath = &location
			}
		}

		if _, err := c.store.AddDocument(ctx, params); err != nil {
			log.ErrorContext(ctx, "Failed to save document", "file_id", att.FileID, "document_type", att.Type, "error", err)
			continue
		}
		saved++
	}
	return saved
}

func (c *Collector) saveReactions(ctx context.Context, log *slog.Logger, messageID int64, entries []events.ReactionEntry) int {
	saved := 0
	for i, entry := range entries {
		emoji, ok := entryEmoji(entry)
		if !ok {
			log.WarnContext(ctx, "Skipping reaction with unrecognized shape", "index", i)
			continue
		}

		var userID *int64
		if id, ok := entryReactor(entry); ok {
			userID = &id
		}

		if _, err := c.store.AddReaction(ctx, messageID, &emoji, userID); err != nil {
			log.ErrorContext(ctx, "Failed to save reaction", "index", i, "error", err)
			continue
		}
		saved++
	}
	return saved
}

func userParams(u *events.User) database.UserParams {
	return database.UserParams{
		ID:        u.ID,
		Username:  optional(u.Username),
		FirstName: optional(u.FirstName),
		LastName:  optional(u.LastName),
	}
}

// chatParams falls back to the chat username, then to a synthetic title,
// so every stored chat has a displayable name.
func chatParams(chat events.Chat) database.ChatParams {
	title := chat.Title
	if title == "" {
		title = chat.Username
	}
	if title == "" {
		title = "Chat " + strconv.FormatInt(chat.ID, 10)
	}
	chatType := database.ParseChatType(chat.Type)
	return database.ChatParams{ID: chat.ID, Title: &title, Type: &chatType}
}

func messageDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
