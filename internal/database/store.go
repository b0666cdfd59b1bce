package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/edgard/tgcollector/internal/errors"
)

// Store defines the persistence operations of the collector.
// Every write runs in its own transaction and fails with a StoreError,
// leaving prior state untouched.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser inserts a user or merges the supplied non-nil fields into it.
	UpsertUser(ctx context.Context, params UserParams) (*User, error)

	// UpsertChat inserts or merges a chat, folding a promoted group into its
	// new supergroup identity when one matches.
	UpsertChat(ctx context.Context, params ChatParams) (*Chat, error)

	// UpsertMessage inserts a message, applies an edit, or returns the
	// stored row unchanged for a duplicate non-edit delivery. The returned
	// row has Inserted set only when this call created it.
	UpsertMessage(ctx context.Context, params MessageParams) (*Message, error)

	// FindMessage looks a message up by platform id and chat. Returns nil, nil if not found.
	FindMessage(ctx context.Context, messageID, chatID int64) (*Message, error)

	// AddReaction unconditionally inserts a reaction row.
	AddReaction(ctx context.Context, messageID int64, emoji *string, userID *int64) (*Reaction, error)

	// AddDocument unconditionally inserts a document row.
	AddDocument(ctx context.Context, params DocumentParams) (*Document, error)

	// ApplyReactionDiff deletes the removed and inserts the added emoji of one
	// user on one message in a single transaction.
	ApplyReactionDiff(ctx context.Context, diff ReactionDiff) error

	// QueryMessagesInRange returns the messages of a chat whose date falls in
	// [start, end], ascending by date, with user, documents and reactions loaded.
	QueryMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]*Message, error)

	// ListChats returns every stored chat ordered by creation time.
	ListChats(ctx context.Context) ([]*Chat, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}

const (
	userColumns     = `id, username, first_name, last_name, created_at`
	chatColumns     = `id, title, chat_type, created_at`
	messageColumns  = `id, message_id, chat_id, user_id, text, message_date, edited_date, created_at`
	reactionColumns = `id, message_id, emoji, user_id, created_at`
	documentColumns = `id, message_id, file_id, file_unique_id, file_name, mime_type, file_size, document_type, local_path, created_at`
)

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction. The transaction is rolled back on every
// path that does not reach the commit, and failures come back as StoreError.
func (s *sqlxStore) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	if ctx.Err() != nil {
		return apperrors.NewStoreError(op, ctx.Err())
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", "op", op, "error", err)
		return apperrors.NewStoreError(op+": begin transaction", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "op", op, "error", rollbackErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		var storeErr *apperrors.StoreError
		if errors.As(err, &storeErr) {
			return err
		}
		return apperrors.NewStoreError(op, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "op", op, "error", err)
		return apperrors.NewStoreError(op+": commit transaction", err)
	}
	tx = nil
	return nil
}

// UpsertUser inserts the user or overwrites only the fields supplied as non-nil.
func (s *sqlxStore) UpsertUser(ctx context.Context, params UserParams) (*User, error) {
	if params.ID == 0 {
		return nil, apperrors.NewStoreError("upsert user", errors.New("user id cannot be zero"))
	}

	var user User
	err := s.withTx(ctx, "upsert user", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, username, first_name, last_name, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				username   = COALESCE(excluded.username, users.username),
				first_name = COALESCE(excluded.first_name, users.first_name),
				last_name  = COALESCE(excluded.last_name, users.last_name)`,
			params.ID, nullString(params.Username), nullString(params.FirstName), nullString(params.LastName),
			formatTime(s.now()))
		if err != nil {
			return fmt.Errorf("failed to upsert user %d: %w", params.ID, err)
		}
		return tx.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, params.ID)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "user_id", params.ID, "error", err)
		return nil, err
	}

	s.logger.DebugContext(ctx, "User upserted", "user_id", user.ID)
	return &user, nil
}

// UpsertMessage stores a message keyed by (message_id, chat_id).
func (s *sqlxStore) UpsertMessage(ctx context.Context, params MessageParams) (*Message, error) {
	if params.ChatID == 0 {
		return nil, apperrors.NewStoreError("upsert message", errors.New("message must have a non-zero chat_id"))
	}
	if params.MessageDate.IsZero() {
		return nil, apperrors.NewStoreError("upsert message", errors.New("message must have a non-zero date"))
	}

	var (
		message   *Message
		operation string
	)
	err := s.withTx(ctx, "upsert message", func(tx *sqlx.Tx) error {
		existing, err := getMessage(ctx, tx, params.MessageID, params.ChatID)
		if err != nil {
			return err
		}

		if existing != nil {
			if params.EditedDate == nil {
				operation = "duplicate"
				message = existing
				return nil
			}

			operation = "edited"
			if params.Text != nil {
				_, err = tx.ExecContext(ctx,
					`UPDATE messages SET text = NULLIF(?, ''), edited_date = ? WHERE id = ?`,
					*params.Text, formatTime(*params.EditedDate), existing.ID)
			} else {
				_, err = tx.ExecContext(ctx,
					`UPDATE messages SET edited_date = ? WHERE id = ?`,
					formatTime(*params.EditedDate), existing.ID)
			}
			if err != nil {
				return fmt.Errorf("failed to update message %d in chat %d: %w", params.MessageID, params.ChatID, err)
			}
			message, err = getMessageByID(ctx, tx, existing.ID)
			return err
		}

		operation = "created"
		result, err := tx.ExecContext(ctx, `
			INSERT INTO messages (message_id, chat_id, user_id, text, message_date, edited_date, created_at)
			VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?)`,
			params.MessageID, params.ChatID, nullInt64(params.UserID), nullString(params.Text),
			formatTime(params.MessageDate), nullTime(params.EditedDate), formatTime(s.now()))
		if err != nil {
			return fmt.Errorf("failed to insert message %d in chat %d: %w", params.MessageID, params.ChatID, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted message id: %w", err)
		}
		if message, err = getMessageByID(ctx, tx, id); err != nil {
			return err
		}
		message.Inserted = true
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error upserting message",
			"message_id", params.MessageID, "chat_id", params.ChatID, "error", err)
		return nil, err
	}

	s.logger.DebugContext(ctx, "Message upserted",
		"operation", operation, "message_id", params.MessageID, "chat_id", params.ChatID, "id", message.ID)
	return message, nil
}

// FindMessage looks a message up by its platform id within a chat.
func (s *sqlxStore) FindMessage(ctx context.Context, messageID, chatID int64) (*Message, error) {
	msg, err := getMessage(ctx, s.db, messageID, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error finding message", "message_id", messageID, "chat_id", chatID, "error", err)
		return nil, apperrors.NewStoreError("find message", err)
	}
	return msg, nil
}

// AddReaction inserts one reaction row.
func (s *sqlxStore) AddReaction(ctx context.Context, messageID int64, emoji *string, userID *int64) (*Reaction, error) {
	var reaction Reaction
	err := s.withTx(ctx, "add reaction", func(tx *sqlx.Tx) error {
		id, err := insertReaction(ctx, tx, messageID, nullString(emoji), nullInt64(userID), s.now())
		if err != nil {
			return err
		}
		return tx.GetContext(ctx, &reaction, `SELECT `+reactionColumns+` FROM reactions WHERE id = ?`, id)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving reaction", "message_db_id", messageID, "error", err)
		return nil, err
	}
	return &reaction, nil
}

// AddDocument inserts one document row.
func (s *sqlxStore) AddDocument(ctx context.Context, params DocumentParams) (*Document, error) {
	if params.FileID == "" {
		return nil, apperrors.NewStoreError("add document", errors.New("document must have a file_id"))
	}

	var doc Document
	err := s.withTx(ctx, "add document", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO documents (message_id, file_id, file_unique_id, file_name, mime_type, file_size, document_type, local_path, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			params.MessageID, params.FileID, nullString(params.FileUniqueID), nullString(params.FileName),
			nullString(params.MimeType), nullInt64(params.FileSize), string(params.DocumentType),
			nullString(params.LocalPath), formatTime(s.now()))
		if err != nil {
			return fmt.Errorf("failed to insert %s document for message %d: %w", params.DocumentType, params.MessageID, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted document id: %w", err)
		}
		return tx.GetContext(ctx, &doc, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving document",
			"message_db_id", params.MessageID, "document_type", params.DocumentType, "error", err)
		return nil, err
	}
	return &doc, nil
}

// ApplyReactionDiff applies one reaction-update event atomically.
func (s *sqlxStore) ApplyReactionDiff(ctx context.Context, diff ReactionDiff) error {
	var removed int64
	err := s.withTx(ctx, "apply reaction diff", func(tx *sqlx.Tx) error {
		for _, emoji := range diff.Removed {
			result, err := tx.ExecContext(ctx,
				`DELETE FROM reactions WHERE message_id = ? AND user_id = ? AND emoji = ?`,
				diff.MessageID, diff.UserID, emoji)
			if err != nil {
				return fmt.Errorf("failed to delete reaction %q: %w", emoji, err)
			}
			if n, err := result.RowsAffected(); err == nil {
				removed += n
			}
		}

		now := s.now()
		userID := sql.NullInt64{Int64: diff.UserID, Valid: true}
		for _, emoji := range diff.Added {
			if _, err := insertReaction(ctx, tx, diff.MessageID, sql.NullString{String: emoji, Valid: true}, userID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error applying reaction diff",
			"message_db_id", diff.MessageID, "user_id", diff.UserID, "error", err)
		return err
	}

	s.logger.DebugContext(ctx, "Reaction diff applied",
		"message_db_id", diff.MessageID, "user_id", diff.UserID,
		"removed_rows", removed, "added", len(diff.Added))
	return nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return apperrors.NewStoreError("vacuum", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}

func insertReaction(ctx context.Context, tx *sqlx.Tx, messageID int64, emoji sql.NullString, userID sql.NullInt64, now time.Time) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reactions (message_id, emoji, user_id, created_at) VALUES (?, ?, ?, ?)`,
		messageID, emoji, userID, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to insert reaction for message %d: %w", messageID, err)
	}
	return result.LastInsertId()
}

func getMessage(ctx context.Context, q sqlx.QueryerContext, messageID, chatID int64) (*Message, error) {
	var msg Message
	err := sqlx.GetContext(ctx, q, &msg,
		`SELECT `+messageColumns+` FROM messages WHERE message_id = ? AND chat_id = ?`, messageID, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message %d in chat %d: %w", messageID, chatID, err)
	}
	return &msg, nil
}

func getMessageByID(ctx context.Context, q sqlx.QueryerContext, id int64) (*Message, error) {
	var msg Message
	if err := sqlx.GetContext(ctx, q, &msg, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to reload message row %d: %w", id, err)
	}
	return &msg, nil
}
