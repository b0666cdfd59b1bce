package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/edgard/tgcollector/internal/errors"
)

// timeLayout is the naive UTC text form every timestamp is stored in.
// Its fixed width keeps lexical and chronological order identical.
const timeLayout = "2006-01-02 15:04:05"

// QueryMessagesInRange loads the messages of chatID dated within [start, end]
// and attaches users, documents and reactions with one query per relation.
func (s *sqlxStore) QueryMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]*Message, error) {
	var messages []*Message
	err := s.db.SelectContext(ctx, &messages, `
		SELECT `+messageColumns+` FROM messages
		WHERE chat_id = ? AND message_date >= ? AND message_date <= ?
		ORDER BY message_date ASC, id ASC`,
		chatID, formatTime(start), formatTime(end))
	if err != nil {
		s.logger.ErrorContext(ctx, "Error querying messages", "chat_id", chatID, "error", err)
		return nil, apperrors.NewStoreError("query messages in range", err)
	}
	if len(messages) == 0 {
		return messages, nil
	}

	if err := s.attachRelations(ctx, messages); err != nil {
		s.logger.ErrorContext(ctx, "Error loading message relations", "chat_id", chatID, "error", err)
		return nil, apperrors.NewStoreError("load message relations", err)
	}

	s.logger.DebugContext(ctx, "Messages queried", "chat_id", chatID, "count", len(messages))
	return messages, nil
}

func (s *sqlxStore) attachRelations(ctx context.Context, messages []*Message) error {
	byID := make(map[int64]*Message, len(messages))
	messageIDs := make([]int64, 0, len(messages))
	userSet := make(map[int64]struct{})
	userIDs := make([]int64, 0)
	for _, m := range messages {
		byID[m.ID] = m
		messageIDs = append(messageIDs, m.ID)
		if m.UserID.Valid {
			if _, seen := userSet[m.UserID.Int64]; !seen {
				userSet[m.UserID.Int64] = struct{}{}
				userIDs = append(userIDs, m.UserID.Int64)
			}
		}
	}

	if len(userIDs) > 0 {
		var users []*User
		if err := s.selectIn(ctx, &users, `SELECT `+userColumns+` FROM users WHERE id IN (?)`, userIDs); err != nil {
			return fmt.Errorf("failed to load users: %w", err)
		}
		usersByID := make(map[int64]*User, len(users))
		for _, u := range users {
			usersByID[u.ID] = u
		}
		for _, m := range messages {
			if m.UserID.Valid {
				m.User = usersByID[m.UserID.Int64]
			}
		}
	}

	var documents []*Document
	if err := s.selectIn(ctx, &documents,
		`SELECT `+documentColumns+` FROM documents WHERE message_id IN (?) ORDER BY id`, messageIDs); err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	for _, d := range documents {
		if m, ok := byID[d.MessageID]; ok {
			m.Documents = append(m.Documents, d)
		}
	}

	var reactions []*Reaction
	if err := s.selectIn(ctx, &reactions,
		`SELECT `+reactionColumns+` FROM reactions WHERE message_id IN (?) ORDER BY id`, messageIDs); err != nil {
		return fmt.Errorf("failed to load reactions: %w", err)
	}
	for _, r := range reactions {
		if m, ok := byID[r.MessageID]; ok {
			m.Reactions = append(m.Reactions, r)
		}
	}

	return nil
}

func (s *sqlxStore) selectIn(ctx context.Context, dest interface{}, query string, ids []int64) error {
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}

// ListChats returns every stored chat, oldest first.
func (s *sqlxStore) ListChats(ctx context.Context) ([]*Chat, error) {
	var chats []*Chat
	if err := s.db.SelectContext(ctx, &chats, `SELECT `+chatColumns+` FROM chats ORDER BY created_at ASC, id ASC`); err != nil {
		s.logger.ErrorContext(ctx, "Error listing chats", "error", err)
		return nil, apperrors.NewStoreError("list chats", err)
	}
	return chats, nil
}

// Close releases the underlying connection pool.
func (s *sqlxStore) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}
