package export

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/tgcollector/internal/database"
	apperrors "github.com/edgard/tgcollector/internal/errors"
)

func str(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func chat(id int64, title string, typ database.ChatType, day int) *database.Chat {
	c := &database.Chat{ID: id, ChatType: typ, CreatedAt: time.Date(2024, time.May, day, 12, 0, 0, 0, time.UTC)}
	if title != "" {
		c.Title = str(title)
	}
	return c
}

func TestFilterChats(t *testing.T) {
	t.Parallel()

	chats := []*database.Chat{
		chat(-1, "Eng", database.ChatTypeGroup, 1),
		chat(5, "Alice", database.ChatTypePrivate, 2),
		chat(-200, "eng ", database.ChatTypeSupergroup, 3),
		chat(-300, "ENG", database.ChatTypeSupergroup, 5),
		chat(-2, "Ops", database.ChatTypeGroup, 4),
		chat(-400, "", database.ChatTypeSupergroup, 6),
		chat(-3, "", database.ChatTypeGroup, 0),
		chat(-500, "News", database.ChatTypeChannel, 7),
	}

	got := FilterChats(chats)

	ids := make([]int64, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{-3, -2, -300, -400, -500}, ids)
}

func TestFormatChatList(t *testing.T) {
	t.Parallel()

	out := FormatChatList([]*database.Chat{chat(-2, "Ops", database.ChatTypeGroup, 4), chat(-9, "", database.ChatTypeSupergroup, 8)})

	assert.True(t, strings.HasPrefix(out, "Chats:\n\n"))
	assert.Contains(t, out, "ID: -2\nTitle: Ops\nType: group\nCreated: 2024-05-04 12:00\n")
	assert.Contains(t, out, "Title: Untitled\n")
}

func TestParseDateRange(t *testing.T) {
	t.Parallel()

	p, err := ParseDateRange("2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2025, time.January, 31, 23, 59, 59, 0, time.UTC), p.End)

	sameDay, err := ParseDateRange("2025-03-02", "2025-03-02")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour-time.Second, sameDay.End.Sub(sameDay.Start))

	tests := []struct {
		name     string
		from, to string
	}{
		{"bad start", "2025-13-01", "2025-01-31"},
		{"bad end", "2025-01-01", "31.01.2025"},
		{"reversed", "2025-02-01", "2025-01-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDateRange(tt.from, tt.to)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestParseArguments(t *testing.T) {
	t.Parallel()

	days, err := ParseDays("7")
	require.NoError(t, err)
	assert.Equal(t, 7, days)

	for _, bad := range []string{"0", "-1", "week"} {
		_, err := ParseDays(bad)
		assert.True(t, apperrors.IsValidation(err), bad)
	}

	id, err := ParseChatID("-5148403988")
	require.NoError(t, err)
	assert.Equal(t, int64(-5148403988), id)

	_, err = ParseChatID("0")
	assert.True(t, apperrors.IsValidation(err))
	_, err = ParseChatID("abc")
	assert.True(t, apperrors.IsValidation(err))

	now := time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)
	p, err := LastDays(now, 3)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 7, 8, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, now, p.End)
}

func TestFormatExport(t *testing.T) {
	t.Parallel()

	msgs := []*database.Message{
		{
			MessageDate: time.Date(2025, time.January, 2, 9, 30, 0, 0, time.UTC),
			EditedDate:  sql.NullTime{Time: time.Date(2025, time.January, 2, 9, 45, 0, 0, time.UTC), Valid: true},
			Text:        str("Hello team"),
			User:        &database.User{ID: 7, FirstName: str("Ana"), LastName: str("Lima"), Username: str("ana")},
			Documents: []*database.Document{
				{FileID: "f1", FileName: str("plan.pdf"), FileSize: sql.NullInt64{Int64: 2048, Valid: true}, DocumentType: database.DocumentTypeDocument},
				{FileID: "f2", DocumentType: database.DocumentTypePhoto},
			},
			Reactions: []*database.Reaction{
				{Emoji: str("👍")}, {Emoji: str("🔥")}, {Emoji: str("👍")}, {},
			},
		},
		{
			MessageDate: time.Date(2025, time.January, 3, 10, 0, 0, 0, time.UTC),
			User:        &database.User{ID: 8, Username: str("bob")},
		},
	}
	p := Period{Start: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2025, time.January, 31, 23, 59, 59, 0, time.UTC)}

	out := FormatExport(msgs, p)

	assert.Contains(t, out, "Period: 2025-01-01 - 2025-01-31\nTotal messages: 2\n")
	assert.Contains(t, out, "[2025-01-02 09:30:00] (edited: 2025-01-02 09:45:00)\n")
	assert.Contains(t, out, "From: Ana Lima (@ana) (ID: 7)\n")
	assert.Contains(t, out, "Text: Hello team\n")
	assert.Contains(t, out, "Files:\n  - document: plan.pdf (2.0 kB)\n  - photo: f2\n")
	assert.Contains(t, out, "Reactions: 👍 x2, 🔥, ? (total: 4)\n")
	assert.Contains(t, out, "[2025-01-03 10:00:00]\nFrom: (@bob) (ID: 8)\n")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

type fakeQuerier struct {
	byChat map[int64][]*database.Message
	calls  []int64
	err    error
}

func (f *fakeQuerier) QueryMessagesInRange(_ context.Context, chatID int64, _, _ time.Time) ([]*database.Message, error) {
	f.calls = append(f.calls, chatID)
	return f.byChat[chatID], f.err
}

func TestExportFallsBackToNegatedID(t *testing.T) {
	t.Parallel()

	msg := &database.Message{MessageDate: time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC), Text: str("hi")}
	q := &fakeQuerier{byChat: map[int64][]*database.Message{-42: {msg}}}

	res, err := Export(context.Background(), q, 42, Period{})
	require.NoError(t, err)
	assert.Equal(t, int64(-42), res.ChatID)
	assert.Equal(t, []int64{42, -42}, q.calls)
	assert.Contains(t, res.Text, "Text: hi")
}

func TestExportNothingFound(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{}
	res, err := Export(context.Background(), q, -42, Period{})
	require.NoError(t, err)
	assert.Empty(t, res.Messages)
	assert.Empty(t, res.Text)
	assert.Equal(t, []int64{-42}, q.calls)

	failing := &fakeQuerier{err: errors.New("db down")}
	_, err = Export(context.Background(), failing, 1, Period{})
	assert.Error(t, err)
}

func TestChunk(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Chunk("", 10))
	assert.Equal(t, []string{"abc"}, Chunk("abc", 10))
	assert.Equal(t, []string{"ab", "cd", "e"}, Chunk("abcde", 2))
	assert.Equal(t, []string{"ёж", "ик"}, Chunk("ёжик", 2))
}

func TestFileName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "export_-42_20250102_030405.txt", FileName(-42, time.Date(2025, time.January, 2, 3, 4, 5, 0, time.UTC)))
}
