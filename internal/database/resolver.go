package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/edgard/tgcollector/internal/errors"
)

// UpsertChat inserts or merges a chat. When a supergroup arrives under an id
// the store has never seen, a single stale group with the same title is
// folded into it so history stays under one chat.
func (s *sqlxStore) UpsertChat(ctx context.Context, params ChatParams) (*Chat, error) {
	if params.ID == 0 {
		return nil, apperrors.NewStoreError("upsert chat", errors.New("chat id cannot be zero"))
	}

	var (
		chat      *Chat
		operation string
	)
	err := s.withTx(ctx, "upsert chat", func(tx *sqlx.Tx) error {
		existing, err := getChat(ctx, tx, params.ID)
		if err != nil {
			return err
		}

		if existing != nil {
			operation = "merged"
			if err := s.mergeChat(ctx, tx, params); err != nil {
				return err
			}
			chat, err = getChat(ctx, tx, params.ID)
			return err
		}

		if isPromotion(params) {
			oldID, found, err := s.findPromotedGroup(ctx, tx, *params.Title)
			if err != nil {
				return err
			}
			if found {
				operation = "migrated"
				if err := s.migrateGroup(ctx, tx, oldID, params); err != nil {
					return err
				}
				chat, err = getChat(ctx, tx, params.ID)
				return err
			}
		}

		operation = "created"
		if err := s.insertChat(ctx, tx, params); err != nil {
			return err
		}
		chat, err = getChat(ctx, tx, params.ID)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error upserting chat", "chat_id", params.ID, "error", err)
		return nil, err
	}

	s.logger.DebugContext(ctx, "Chat upserted", "operation", operation, "chat_id", chat.ID, "chat_type", chat.ChatType)
	return chat, nil
}

func isPromotion(params ChatParams) bool {
	return params.Type != nil && *params.Type == ChatTypeSupergroup &&
		params.Title != nil && normalizeTitle(*params.Title) != ""
}

func normalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// findPromotedGroup returns the id of the only group chat whose title matches.
// Several matches are reported as an ambiguous merge and treated as none.
func (s *sqlxStore) findPromotedGroup(ctx context.Context, tx *sqlx.Tx, title string) (int64, bool, error) {
	var groups []Chat
	err := tx.SelectContext(ctx, &groups,
		`SELECT `+chatColumns+` FROM chats WHERE chat_type = ? AND title IS NOT NULL ORDER BY created_at, id`,
		string(ChatTypeGroup))
	if err != nil {
		return 0, false, fmt.Errorf("failed to scan group chats: %w", err)
	}

	want := normalizeTitle(title)
	var candidates []int64
	for _, g := range groups {
		if strings.EqualFold(normalizeTitle(g.Title.String), want) {
			candidates = append(candidates, g.ID)
		}
	}

	switch len(candidates) {
	case 0:
		return 0, false, nil
	case 1:
		return candidates[0], true, nil
	default:
		s.logger.WarnContext(ctx, "Skipping chat migration, title matches several groups",
			"title", want, "error", apperrors.NewAmbiguousMergeError(want, candidates))
		return 0, false, nil
	}
}

// migrateGroup moves oldID to params.ID. With history the new parent is
// inserted before messages are repointed and the old parent deleted last,
// so no foreign key is ever dangling. Without history the row is relabelled.
func (s *sqlxStore) migrateGroup(ctx context.Context, tx *sqlx.Tx, oldID int64, params ChatParams) error {
	var messageCount int64
	if err := tx.GetContext(ctx, &messageCount, `SELECT COUNT(*) FROM messages WHERE chat_id = ?`, oldID); err != nil {
		return fmt.Errorf("failed to count messages of chat %d: %w", oldID, err)
	}

	if messageCount == 0 {
		_, err := tx.ExecContext(ctx,
			`UPDATE chats SET id = ?, chat_type = ?, title = ? WHERE id = ?`,
			params.ID, string(ChatTypeSupergroup), *params.Title, oldID)
		if err != nil {
			return fmt.Errorf("failed to relabel chat %d as %d: %w", oldID, params.ID, err)
		}
		s.logger.InfoContext(ctx, "Relabelled group chat as supergroup", "old_chat_id", oldID, "new_chat_id", params.ID)
		return nil
	}

	if err := s.insertChat(ctx, tx, params); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE messages SET chat_id = ? WHERE chat_id = ?`, params.ID, oldID); err != nil {
		return fmt.Errorf("failed to repoint messages from chat %d to %d: %w", oldID, params.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, oldID); err != nil {
		return fmt.Errorf("failed to delete migrated chat %d: %w", oldID, err)
	}

	s.logger.InfoContext(ctx, "Migrated group chat history to supergroup",
		"old_chat_id", oldID, "new_chat_id", params.ID, "messages", messageCount)
	return nil
}

func (s *sqlxStore) insertChat(ctx context.Context, tx *sqlx.Tx, params ChatParams) error {
	chatType := ChatTypeUnknown
	if params.Type != nil {
		chatType = *params.Type
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO chats (id, title, chat_type, created_at) VALUES (?, ?, ?, ?)`,
		params.ID, nullString(params.Title), string(chatType), formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("failed to insert chat %d: %w", params.ID, err)
	}
	return nil
}

func (s *sqlxStore) mergeChat(ctx context.Context, tx *sqlx.Tx, params ChatParams) error {
	var chatType sql.NullString
	if params.Type != nil {
		chatType = sql.NullString{String: string(*params.Type), Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE chats SET
			title     = COALESCE(?, title),
			chat_type = COALESCE(?, chat_type)
		WHERE id = ?`,
		nullString(params.Title), chatType, params.ID)
	if err != nil {
		return fmt.Errorf("failed to update chat %d: %w", params.ID, err)
	}
	return nil
}

func getChat(ctx context.Context, q sqlx.QueryerContext, id int64) (*Chat, error) {
	var chat Chat
	err := sqlx.GetContext(ctx, q, &chat, `SELECT `+chatColumns+` FROM chats WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat %d: %w", id, err)
	}
	return &chat, nil
}
