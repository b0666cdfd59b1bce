package collector

import "github.com/edgard/tgcollector/internal/events"

// customEmojiPrefix marks custom emoji, which have an id instead of a glyph.
const customEmojiPrefix = "custom:"

// emojiExtractor reads the emoji of a reaction entry in one known shape.
type emojiExtractor func(events.ReactionEntry) (string, bool)

// reactorExtractor reads the reacting user id of a reaction entry in one known shape.
type reactorExtractor func(events.ReactionEntry) (int64, bool)

// Tried in order; the first success wins.
var (
	emojiExtractors = []emojiExtractor{
		directEmoji,
		typedEmoji,
		typedCustomEmoji,
	}
	reactorExtractors = []reactorExtractor{
		directReactor,
		nestedReactor,
	}
)

func directEmoji(e events.ReactionEntry) (string, bool) {
	return e.Emoji, e.Emoji != ""
}

func typedEmoji(e events.ReactionEntry) (string, bool) {
	if e.Type == nil || e.Type.Emoji == "" {
		return "", false
	}
	if e.Type.Type != "" && e.Type.Type != events.ReactionTypeEmoji {
		return "", false
	}
	return e.Type.Emoji, true
}

func typedCustomEmoji(e events.ReactionEntry) (string, bool) {
	if e.Type == nil || e.Type.Type != events.ReactionTypeCustomEmoji || e.Type.CustomEmojiID == "" {
		return "", false
	}
	return customEmojiPrefix + e.Type.CustomEmojiID, true
}

func directReactor(e events.ReactionEntry) (int64, bool) {
	return e.UserID, e.UserID != 0
}

func nestedReactor(e events.ReactionEntry) (int64, bool) {
	if e.User == nil || e.User.ID == 0 {
		return 0, false
	}
	return e.User.ID, true
}

func entryEmoji(e events.ReactionEntry) (string, bool) {
	for _, extract := range emojiExtractors {
		if emoji, ok := extract(e); ok {
			return emoji, true
		}
	}
	return "", false
}

func entryReactor(e events.ReactionEntry) (int64, bool) {
	for _, extract := range reactorExtractors {
		if id, ok := extract(e); ok {
			return id, true
		}
	}
	return 0, false
}

// reactionEmoji reads the emoji of a reaction-update entry.
func reactionEmoji(rt events.ReactionType) (string, bool) {
	return entryEmoji(events.ReactionEntry{Type: &rt})
}
