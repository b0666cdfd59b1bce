package handlers

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/tgcollector/internal/config"
	"github.com/edgard/tgcollector/internal/database"
)

var fixedNow = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func newDeps(t *testing.T) HandlerDeps {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	store := database.NewStore(db, nil)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{Messages: config.DefaultMessages}
	cfg.Telegram.AdminUserID = 1

	return HandlerDeps{Config: cfg, Store: store, Now: func() time.Time { return fixedNow }}
}

func seedMessages(t *testing.T, store database.Store, chatID int64, title string, chatType database.ChatType, n int, text string) {
	t.Helper()
	ctx := context.Background()

	_, err := store.UpsertChat(ctx, database.ChatParams{ID: chatID, Title: ptr(title), Type: ptr(chatType)})
	require.NoError(t, err)
	_, err = store.UpsertUser(ctx, database.UserParams{ID: 7, FirstName: ptr("Ana")})
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		_, err := store.UpsertMessage(ctx, database.MessageParams{
			MessageID:   int64(i + 1),
			ChatID:      chatID,
			UserID:      ptr(int64(7)),
			Text:        ptr(text),
			MessageDate: fixedNow.Add(-time.Duration(i+1) * time.Hour),
		})
		require.NoError(t, err)
	}
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"-100", "7"}, commandArgs("/export  -100 7"))
	assert.Empty(t, commandArgs("/chats"))
	assert.Nil(t, commandArgs(""))
}

func TestChatsReply(t *testing.T) {
	t.Parallel()
	deps := newDeps(t)
	h := chatsHandler{deps}

	assert.Equal(t, textReply(deps.Config.Messages.NoChats), h.buildReply(context.Background()))

	seedMessages(t, deps.Store, 5, "Ana", database.ChatTypePrivate, 1, "hi")
	assert.Equal(t, textReply(deps.Config.Messages.NoChats), h.buildReply(context.Background()))

	seedMessages(t, deps.Store, -300, "Ops", database.ChatTypeGroup, 1, "hi")
	r := h.buildReply(context.Background())
	require.Len(t, r.Texts, 1)
	assert.Contains(t, r.Texts[0], "ID: -300")
	assert.NotContains(t, r.Texts[0], "ID: 5\n")
}

func TestExportReply(t *testing.T) {
	t.Parallel()
	deps := newDeps(t)
	seedMessages(t, deps.Store, -100, "Eng", database.ChatTypeGroup, 3, "status update")
	msgs := deps.Config.Messages

	tests := []struct {
		name   string
		byDate bool
		args   []string
		want   string
	}{
		{"missing args", false, []string{"-100"}, msgs.ExportUsage},
		{"bad chat id", false, []string{"eng", "7"}, msgs.ExportUsage},
		{"bad days", false, []string{"-100", "0"}, msgs.ExportUsage},
		{"bad date", true, []string{"-100", "2025-01-01", "tomorrow"}, msgs.InvalidDate},
		{"unknown chat", false, []string{"-999", "7"}, msgs.NoMessages},
		{"empty range", true, []string{"-100", "2024-01-01", "2024-01-31"}, msgs.NoMessages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := exportHandler{deps: deps, byDate: tt.byDate}
			assert.Equal(t, textReply(tt.want), h.buildReply(context.Background(), tt.args))
		})
	}
}

func TestExportReplyRendersMessages(t *testing.T) {
	t.Parallel()
	deps := newDeps(t)
	seedMessages(t, deps.Store, -100, "Eng", database.ChatTypeGroup, 3, "status update")

	byDays := exportHandler{deps: deps}.buildReply(context.Background(), []string{"100", "1"})
	require.Len(t, byDays.Texts, 1)
	assert.Contains(t, byDays.Texts[0], "Total messages: 3")
	assert.Contains(t, byDays.Texts[0], "From: Ana (ID: 7)")

	byDate := exportHandler{deps: deps, byDate: true}.buildReply(context.Background(), []string{"-100", "2025-01-10", "2025-01-10"})
	require.Len(t, byDate.Texts, 1)
	assert.Contains(t, byDate.Texts[0], "Period: 2025-01-10 - 2025-01-10")
}

func TestExportReplyLongOutputIsDocument(t *testing.T) {
	t.Parallel()
	deps := newDeps(t)
	seedMessages(t, deps.Store, -100, "Eng", database.ChatTypeGroup, 20, strings.Repeat("x", 300))

	r := exportHandler{deps: deps}.buildReply(context.Background(), []string{"-100", "2"})
	assert.Empty(t, r.Texts)
	assert.Equal(t, "export_-100_20250110_120000.txt", r.FileName)
	assert.Contains(t, string(r.File), "Total messages: 20")
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()
	deps := newDeps(t)

	registered := RegisterAllCommands(deps)
	for _, name := range []string{"/start", "/chats", "/export", "/export_date"} {
		h, ok := registered[name]
		require.True(t, ok, name)
		assert.NotNil(t, h.Handler)
		assert.Len(t, h.Middleware, 1)
		assert.Equal(t, strings.TrimPrefix(name, "/"), h.Pattern)
	}
}
