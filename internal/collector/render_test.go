package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgard/tgcollector/internal/database"
	"github.com/edgard/tgcollector/internal/events"
)

func TestRenderText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content events.Content
		want    string
	}{
		{
			name:    "plain text",
			content: events.Content{Text: "hello"},
			want:    "hello",
		},
		{
			name:    "caption when no text",
			content: events.Content{Caption: "look", Photo: []events.PhotoSize{{FileID: "p"}}},
			want:    "look",
		},
		{
			name: "poll with flags",
			content: events.Content{Poll: &events.Poll{
				Question: "Lunch?", Options: []string{"Pizza", "Sushi"}, IsClosed: true, IsAnonymous: true,
			}},
			want: "Poll: Lunch?\n1. Pizza\n2. Sushi\n(closed)\n(anonymous)",
		},
		{
			name:    "caption then location",
			content: events.Content{Caption: "here", Location: &events.Location{Latitude: 52.52, Longitude: 13.405, LivePeriod: 900, Heading: 90}},
			want:    "here\n\nLocation: 52.52, 13.405 (live for 900s), heading 90°",
		},
		{
			name: "venue with location",
			content: events.Content{
				Location: &events.Location{Latitude: 1.5, Longitude: -2},
				Venue:    &events.Venue{Title: "Cafe", Address: "Main St 1", FoursquareID: "4sq"},
			},
			want: "Location: 1.5, -2\n\nVenue: Cafe\nAddress: Main St 1\nFoursquare ID: 4sq",
		},
		{
			name:    "contact",
			content: events.Content{Contact: &events.Contact{FirstName: "Ana", LastName: "Lima", PhoneNumber: "+100", UserID: 7}},
			want:    "Contact: Ana Lima\nPhone: +100\nUser ID: 7",
		},
		{
			name:    "voice placeholder",
			content: events.Content{Voice: &events.File{FileID: "v", Duration: 12, FileSize: 4000}},
			want:    "Voice message (12s), 4.0 kB",
		},
		{
			name:    "voice with caption keeps caption",
			content: events.Content{Caption: "listen", Voice: &events.File{FileID: "v", Duration: 3}},
			want:    "listen",
		},
		{
			name:    "video note placeholder",
			content: events.Content{VideoNote: &events.VideoNote{FileID: "n", Duration: 8, Length: 240}},
			want:    "Video note (8s), 240px",
		},
		{
			name:    "media only",
			content: events.Content{Document: &events.File{FileID: "d"}},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RenderText(&tt.content))
		})
	}
}

func TestExtractAttachments(t *testing.T) {
	t.Parallel()

	content := &events.Content{
		Photo: []events.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "large", Width: 1280, Height: 960, FileSize: 100},
			{FileID: "medium", Width: 320, Height: 240},
		},
		Document: &events.File{FileID: "doc", FileName: "a.pdf", MimeType: "application/pdf", FileSize: 10},
		Sticker:  &events.File{FileID: "st"},
	}

	got := ExtractAttachments(content)
	if assert.Len(t, got, 3) {
		assert.Equal(t, database.DocumentTypePhoto, got[0].Type)
		assert.Equal(t, "large", got[0].FileID)
		assert.Equal(t, database.DocumentTypeDocument, got[1].Type)
		assert.Equal(t, "a.pdf", got[1].FileName)
		assert.Equal(t, database.DocumentTypeSticker, got[2].Type)
		assert.Equal(t, "image/webp", got[2].MimeType)
	}

	noDims := ExtractAttachments(&events.Content{Photo: []events.PhotoSize{{FileID: "first"}, {FileID: "last"}}})
	if assert.Len(t, noDims, 1) {
		assert.Equal(t, "last", noDims[0].FileID)
	}
}

func TestReactionExtractors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		entry     events.ReactionEntry
		emoji     string
		emojiOK   bool
		reactor   int64
		reactorOK bool
	}{
		{"direct fields", events.ReactionEntry{Emoji: "👍", UserID: 5}, "👍", true, 5, true},
		{"typed emoji nested user", events.ReactionEntry{Type: &events.ReactionType{Type: events.ReactionTypeEmoji, Emoji: "🔥"}, User: &events.User{ID: 9}}, "🔥", true, 9, true},
		{"untyped emoji", events.ReactionEntry{Type: &events.ReactionType{Emoji: "🎉"}}, "🎉", true, 0, false},
		{"custom emoji", events.ReactionEntry{Type: &events.ReactionType{Type: events.ReactionTypeCustomEmoji, CustomEmojiID: "5368"}}, "custom:5368", true, 0, false},
		{"direct wins over typed", events.ReactionEntry{Emoji: "👍", Type: &events.ReactionType{Emoji: "👎"}, UserID: 1, User: &events.User{ID: 2}}, "👍", true, 1, true},
		{"paid reaction", events.ReactionEntry{Type: &events.ReactionType{Type: "paid"}}, "", false, 0, false},
		{"empty", events.ReactionEntry{}, "", false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			emoji, ok := entryEmoji(tt.entry)
			assert.Equal(t, tt.emojiOK, ok)
			assert.Equal(t, tt.emoji, emoji)

			reactor, ok := entryReactor(tt.entry)
			assert.Equal(t, tt.reactorOK, ok)
			assert.Equal(t, tt.reactor, reactor)
		})
	}
}
