package telegram

import (
	"time"

	"github.com/go-telegram/bot/models"

	apperrors "github.com/edgard/tgcollector/internal/errors"
	"github.com/edgard/tgcollector/internal/events"
)

// EventFromUpdate converts a Bot API update into a collector event. Updates
// the collector has no use for return a ValidationError.
func EventFromUpdate(update *models.Update) (events.Event, error) {
	if update == nil {
		return nil, apperrors.NewValidationError("nil update", nil)
	}

	switch {
	case update.Message != nil:
		return &events.NewMessage{Content: convertContent(update.Message)}, nil
	case update.EditedMessage != nil:
		msg := update.EditedMessage
		return &events.EditedMessage{
			Content:  convertContent(msg),
			EditDate: unixTime(int64(msg.EditDate)),
		}, nil
	case update.MessageReaction != nil:
		return convertReaction(update.MessageReaction), nil
	default:
		return nil, apperrors.NewValidationError("unsupported update type", nil)
	}
}

func convertContent(msg *models.Message) events.Content {
	c := events.Content{
		MessageID:   int64(msg.ID),
		Chat:        convertChat(msg.Chat),
		From:        convertUser(msg.From),
		Date:        unixTime(int64(msg.Date)),
		Text:        msg.Text,
		Caption:     msg.Caption,
		IsCommand:   startsWithCommand(msg.Entities),
		ServiceKind: serviceKind(msg),
	}

	for _, p := range msg.Photo {
		c.Photo = append(c.Photo, events.PhotoSize{
			FileID:       p.FileID,
			FileUniqueID: p.FileUniqueID,
			Width:        int(p.Width),
			Height:       int(p.Height),
			FileSize:     int64(p.FileSize),
		})
	}
	if d := msg.Document; d != nil {
		c.Document = &events.File{FileID: d.FileID, FileUniqueID: d.FileUniqueID, FileName: d.FileName, MimeType: d.MimeType, FileSize: int64(d.FileSize)}
	}
	if v := msg.Video; v != nil {
		c.Video = &events.File{FileID: v.FileID, FileUniqueID: v.FileUniqueID, FileName: v.FileName, MimeType: v.MimeType, FileSize: int64(v.FileSize), Duration: int(v.Duration)}
	}
	if a := msg.Audio; a != nil {
		c.Audio = &events.File{FileID: a.FileID, FileUniqueID: a.FileUniqueID, FileName: a.FileName, MimeType: a.MimeType, FileSize: int64(a.FileSize), Duration: int(a.Duration)}
	}
	if v := msg.Voice; v != nil {
		c.Voice = &events.File{FileID: v.FileID, FileUniqueID: v.FileUniqueID, MimeType: v.MimeType, FileSize: int64(v.FileSize), Duration: int(v.Duration)}
	}
	if s := msg.Sticker; s != nil {
		c.Sticker = &events.File{FileID: s.FileID, FileUniqueID: s.FileUniqueID, FileSize: int64(s.FileSize)}
	}
	if n := msg.VideoNote; n != nil {
		c.VideoNote = &events.VideoNote{FileID: n.FileID, FileUniqueID: n.FileUniqueID, Duration: int(n.Duration), Length: int(n.Length), FileSize: int64(n.FileSize)}
	}
	if p := msg.Poll; p != nil {
		poll := &events.Poll{Question: p.Question, IsClosed: p.IsClosed, IsAnonymous: p.IsAnonymous}
		for _, opt := range p.Options {
			poll.Options = append(poll.Options, opt.Text)
		}
		c.Poll = poll
	}
	if l := msg.Location; l != nil {
		loc := convertLocation(*l)
		c.Location = &loc
	}
	if v := msg.Venue; v != nil {
		c.Venue = &events.Venue{
			Location:     convertLocation(v.Location),
			Title:        v.Title,
			Address:      v.Address,
			FoursquareID: v.FoursquareID,
		}
	}
	if ct := msg.Contact; ct != nil {
		c.Contact = &events.Contact{PhoneNumber: ct.PhoneNumber, FirstName: ct.FirstName, LastName: ct.LastName, UserID: int64(ct.UserID)}
	}

	return c
}

func convertReaction(r *models.MessageReactionUpdated) *events.ReactionUpdate {
	return &events.ReactionUpdate{
		MessageID: int64(r.MessageID),
		ChatID:    r.Chat.ID,
		Chat:      convertChat(r.Chat),
		User:      convertUser(r.User),
		Date:      unixTime(int64(r.Date)),
		Old:       convertReactionTypes(r.OldReaction),
		New:       convertReactionTypes(r.NewReaction),
	}
}

func convertReactionTypes(in []models.ReactionType) []events.ReactionType {
	out := make([]events.ReactionType, 0, len(in))
	for _, rt := range in {
		t := events.ReactionType{Type: string(rt.Type)}
		if rt.ReactionTypeEmoji != nil {
			t.Emoji = rt.ReactionTypeEmoji.Emoji
			if t.Type == "" {
				t.Type = events.ReactionTypeEmoji
			}
		}
		if rt.ReactionTypeCustomEmoji != nil {
			t.CustomEmojiID = rt.ReactionTypeCustomEmoji.CustomEmojiID
			if t.Type == "" {
				t.Type = events.ReactionTypeCustomEmoji
			}
		}
		out = append(out, t)
	}
	return out
}

func convertChat(c models.Chat) events.Chat {
	return events.Chat{ID: c.ID, Title: c.Title, Username: c.Username, Type: string(c.Type)}
}

func convertUser(u *models.User) *events.User {
	if u == nil {
		return nil
	}
	return &events.User{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
	}
}

func convertLocation(l models.Location) events.Location {
	return events.Location{
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
		LivePeriod: int(l.LivePeriod),
		Heading:    int(l.Heading),
	}
}

func startsWithCommand(entities []models.MessageEntity) bool {
	for _, e := range entities {
		if e.Type == models.MessageEntityTypeBotCommand && e.Offset == 0 {
			return true
		}
	}
	return false
}

// serviceKind names the administrative notice a message carries, if any.
// Pinned-message notices carry no content of their own and are dropped by
// the content check instead.
func serviceKind(msg *models.Message) string {
	switch {
	case len(msg.NewChatMembers) > 0:
		return "new_chat_members"
	case msg.LeftChatMember != nil:
		return "left_chat_member"
	case msg.NewChatTitle != "":
		return "new_chat_title"
	case len(msg.NewChatPhoto) > 0:
		return "new_chat_photo"
	case msg.DeleteChatPhoto:
		return "delete_chat_photo"
	case msg.GroupChatCreated, msg.SupergroupChatCreated:
		return "chat_created"
	case msg.MigrateToChatID != 0:
		return "migrate_to_chat_id"
	case msg.MigrateFromChatID != 0:
		return "migrate_from_chat_id"
	}
	return ""
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
