package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewFormats(t *testing.T) {
	t.Parallel()

	var jsonBuf, textBuf bytes.Buffer
	New(&jsonBuf, "info", "json").Info("hello", "k", "v")
	New(&textBuf, "info", "text").Info("hello", "k", "v")

	assert.True(t, strings.HasPrefix(jsonBuf.String(), "{"))
	assert.Contains(t, textBuf.String(), "k=v")

	var quiet bytes.Buffer
	New(&quiet, "warn", "json").Info("dropped")
	assert.Empty(t, quiet.String())
}

func TestUpdateAttrs(t *testing.T) {
	t.Parallel()

	msg := &models.Update{Message: &models.Message{ID: 3, Chat: models.Chat{ID: -10}, From: &models.User{ID: 5}, Text: "hi"}}
	assert.Equal(t, []any{"update_type", "message", "message_id", 3, "chat_id", int64(-10), "user_id", int64(5), "text_preview", "hi"}, UpdateAttrs(msg))

	edited := &models.Update{EditedMessage: &models.Message{ID: 4, Chat: models.Chat{ID: -10}}}
	assert.Equal(t, []any{"update_type", "edited_message", "message_id", 4, "chat_id", int64(-10)}, UpdateAttrs(edited))

	assert.Equal(t, []any{"update_type", "other"}, UpdateAttrs(&models.Update{}))
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcd...", truncateString("abcdefghij", 7))
	assert.Equal(t, "привет...", truncateString("приветствую всех", 9))
	assert.Equal(t, "...", truncateString("abcdef", 2))
}
