package collector

import (
	"context"
	"fmt"

	"github.com/edgard/tgcollector/internal/database"
	apperrors "github.com/edgard/tgcollector/internal/errors"
	"github.com/edgard/tgcollector/internal/events"
)

// reconcile applies one user's reaction change to a stored message. Events
// for messages that were never collected are ignored.
func (c *Collector) reconcile(ctx context.Context, e *events.ReactionUpdate) error {
	log := c.logger.With("chat_id", e.ChatID, "message_id", e.MessageID)

	if e.User == nil {
		return apperrors.NewValidationError("reaction update without user", nil)
	}

	if _, err := c.store.UpsertUser(ctx, userParams(e.User)); err != nil {
		return fmt.Errorf("failed to save reacting user: %w", err)
	}

	msg, err := c.store.FindMessage(ctx, e.MessageID, e.ChatID)
	if err != nil {
		return fmt.Errorf("failed to look up reacted message: %w", err)
	}
	if msg == nil {
		log.DebugContext(ctx, "Reaction for unknown message ignored")
		return nil
	}

	diff := database.ReactionDiff{
		MessageID: msg.ID,
		UserID:    e.User.ID,
		Removed:   c.reactionEmojis(ctx, e.Old),
		Added:     c.reactionEmojis(ctx, e.New),
	}
	if err := c.store.ApplyReactionDiff(ctx, diff); err != nil {
		return fmt.Errorf("failed to apply reaction change: %w", err)
	}

	log.DebugContext(ctx, "Reactions updated", "user_id", e.User.ID, "removed", diff.Removed, "added", diff.Added)
	return nil
}

func (c *Collector) reactionEmojis(ctx context.Context, types []events.ReactionType) []string {
	out := make([]string, 0, len(types))
	for _, rt := range types {
		emoji, ok := reactionEmoji(rt)
		if !ok {
			c.logger.DebugContext(ctx, "Skipping reaction of unsupported type", "type", rt.Type)
			continue
		}
		out = append(out, emoji)
	}
	return out
}
