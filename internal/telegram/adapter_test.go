package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/edgard/tgcollector/internal/errors"
	"github.com/edgard/tgcollector/internal/events"
)

func TestEventFromUpdateNewMessage(t *testing.T) {
	t.Parallel()

	update := &models.Update{Message: &models.Message{
		ID:   12,
		Date: 1715300000,
		Chat: models.Chat{ID: -100, Type: "supergroup", Title: "Eng"},
		From: &models.User{ID: 5, Username: "ana", FirstName: "Ana"},
		Caption: "pic",
		Photo: []models.PhotoSize{
			{FileID: "s", FileUniqueID: "us", Width: 90, Height: 90},
			{FileID: "l", FileUniqueID: "ul", Width: 800, Height: 600, FileSize: 5000},
		},
		Location: &models.Location{Latitude: 1.5, Longitude: 2.5, LivePeriod: 60},
	}}

	ev, err := EventFromUpdate(update)
	require.NoError(t, err)

	msg, ok := ev.(*events.NewMessage)
	require.True(t, ok)
	assert.Equal(t, int64(12), msg.MessageID)
	assert.Equal(t, time.Unix(1715300000, 0).UTC(), msg.Date)
	assert.Equal(t, events.Chat{ID: -100, Type: "supergroup", Title: "Eng"}, msg.Chat)
	assert.Equal(t, &events.User{ID: 5, Username: "ana", FirstName: "Ana"}, msg.From)
	assert.Equal(t, "pic", msg.Caption)
	require.Len(t, msg.Photo, 2)
	assert.Equal(t, int64(5000), msg.Photo[1].FileSize)
	require.NotNil(t, msg.Location)
	assert.Equal(t, 60, msg.Location.LivePeriod)
	assert.Empty(t, msg.ServiceKind)
	assert.False(t, msg.IsCommand)
}

func TestEventFromUpdateEditedMessage(t *testing.T) {
	t.Parallel()

	update := &models.Update{EditedMessage: &models.Message{
		ID:       3,
		Date:     1715300000,
		EditDate: 1715300600,
		Chat:     models.Chat{ID: -1, Type: "group"},
		From:     &models.User{ID: 5},
		Text:     "fixed",
	}}

	ev, err := EventFromUpdate(update)
	require.NoError(t, err)

	edit, ok := ev.(*events.EditedMessage)
	require.True(t, ok)
	assert.Equal(t, "fixed", edit.Text)
	assert.Equal(t, time.Unix(1715300600, 0).UTC(), edit.EditDate)
}

func TestEventFromUpdateReaction(t *testing.T) {
	t.Parallel()

	update := &models.Update{MessageReaction: &models.MessageReactionUpdated{
		Chat:      models.Chat{ID: -1, Type: "group", Title: "G"},
		MessageID: 8,
		User:      &models.User{ID: 9},
		OldReaction: []models.ReactionType{
			{Type: models.ReactionTypeTypeEmoji, ReactionTypeEmoji: &models.ReactionTypeEmoji{Emoji: "👍"}},
		},
		NewReaction: []models.ReactionType{
			{Type: models.ReactionTypeTypeCustomEmoji, ReactionTypeCustomEmoji: &models.ReactionTypeCustomEmoji{CustomEmojiID: "77"}},
		},
	}}

	ev, err := EventFromUpdate(update)
	require.NoError(t, err)

	r, ok := ev.(*events.ReactionUpdate)
	require.True(t, ok)
	assert.Equal(t, int64(8), r.MessageID)
	assert.Equal(t, int64(-1), r.ChatID)
	assert.Equal(t, int64(9), r.User.ID)
	assert.Equal(t, []events.ReactionType{{Type: events.ReactionTypeEmoji, Emoji: "👍"}}, r.Old)
	assert.Equal(t, []events.ReactionType{{Type: events.ReactionTypeCustomEmoji, CustomEmojiID: "77"}}, r.New)
}

func TestEventFromUpdateFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msg     *models.Message
		command bool
		service string
	}{
		{
			name:    "command at start",
			msg:     &models.Message{Text: "/chats", Entities: []models.MessageEntity{{Type: models.MessageEntityTypeBotCommand, Offset: 0, Length: 6}}},
			command: true,
		},
		{
			name: "command later in text",
			msg:  &models.Message{Text: "see /chats", Entities: []models.MessageEntity{{Type: models.MessageEntityTypeBotCommand, Offset: 4, Length: 6}}},
		},
		{
			name:    "members joined",
			msg:     &models.Message{NewChatMembers: []models.User{{ID: 1}}},
			service: "new_chat_members",
		},
		{
			name:    "migration marker",
			msg:     &models.Message{MigrateToChatID: -200},
			service: "migrate_to_chat_id",
		},
		{
			name:    "title change",
			msg:     &models.Message{NewChatTitle: "New"},
			service: "new_chat_title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev, err := EventFromUpdate(&models.Update{Message: tt.msg})
			require.NoError(t, err)
			msg := ev.(*events.NewMessage)
			assert.Equal(t, tt.command, msg.IsCommand)
			assert.Equal(t, tt.service, msg.ServiceKind)
		})
	}
}

func TestEventFromUpdateUnsupported(t *testing.T) {
	t.Parallel()

	_, err := EventFromUpdate(&models.Update{CallbackQuery: &models.CallbackQuery{ID: "x"}})
	assert.True(t, apperrors.IsValidation(err))

	_, err = EventFromUpdate(nil)
	assert.True(t, apperrors.IsValidation(err))
}

type recordingHandler struct {
	events []events.Event
	err    error
}

func (r *recordingHandler) Handle(_ context.Context, ev events.Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func TestIngestHandler(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	ingest := NewIngestHandler(h, nil)

	ingest(context.Background(), nil, &models.Update{ID: 1, Message: &models.Message{ID: 1, Text: "hi"}})
	ingest(context.Background(), nil, &models.Update{ID: 2})
	require.Len(t, h.events, 1)

	failing := &recordingHandler{err: apperrors.NewStoreError("insert", errors.New("locked"))}
	assert.NotPanics(t, func() {
		NewIngestHandler(failing, nil)(context.Background(), nil, &models.Update{ID: 3, Message: &models.Message{ID: 2}})
	})
	assert.Len(t, failing.events, 1)
}
