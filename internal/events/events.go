// Package events defines the inbound event shapes handed to the collector.
//
// Event is a closed union: only the types in this package implement it, and
// consumers dispatch on it once with a type switch.
package events

import "time"

// Event is one of *NewMessage, *EditedMessage or *ReactionUpdate.
type Event interface {
	event()
}

func (*NewMessage) event()     {}
func (*EditedMessage) event()  {}
func (*ReactionUpdate) event() {}

// Chat identifies the conversation an event belongs to.
type Chat struct {
	ID       int64
	Title    string
	Username string
	Type     string
}

// User is the author of a message or the actor of a reaction change.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	IsBot     bool
}

// PhotoSize is one resolution variant of a photo.
type PhotoSize struct {
	FileID       string
	FileUniqueID string
	Width        int
	Height       int
	FileSize     int64
}

// File describes a document, video, audio, voice or sticker attachment.
type File struct {
	FileID       string
	FileUniqueID string
	FileName     string
	MimeType     string
	FileSize     int64
	Duration     int
}

// VideoNote is a round video message.
type VideoNote struct {
	FileID       string
	FileUniqueID string
	Duration     int
	Length       int
	FileSize     int64
}

type Poll struct {
	Question    string
	Options     []string
	IsClosed    bool
	IsAnonymous bool
}

type Location struct {
	Latitude   float64
	Longitude  float64
	LivePeriod int
	Heading    int
}

type Venue struct {
	Location     Location
	Title        string
	Address      string
	FoursquareID string
}

type Contact struct {
	PhoneNumber string
	FirstName   string
	LastName    string
	UserID      int64
}

// ReactionType is a reaction as the platform reports it: a plain emoji or a
// custom emoji referenced by id.
type ReactionType struct {
	Type          string
	Emoji         string
	CustomEmojiID string
}

// Reaction type discriminators.
const (
	ReactionTypeEmoji       = "emoji"
	ReactionTypeCustomEmoji = "custom_emoji"
)

// ReactionEntry is a reaction attached directly to a message. Different
// platform versions fill different fields, so every field is optional.
type ReactionEntry struct {
	Emoji  string
	Type   *ReactionType
	UserID int64
	User   *User
}

// Content carries everything a new or edited message can hold.
type Content struct {
	MessageID int64
	Chat      Chat
	From      *User
	Date      time.Time

	Text      string
	Caption   string
	IsCommand bool

	Photo     []PhotoSize
	Document  *File
	Video     *File
	Audio     *File
	Voice     *File
	Sticker   *File
	VideoNote *VideoNote
	Poll      *Poll
	Location  *Location
	Venue     *Venue
	Contact   *Contact

	// ServiceKind names the administrative notice this message carries,
	// such as "new_chat_members" or "pinned_message". Empty for content.
	ServiceKind string

	Reactions []ReactionEntry
}

// HasPayload reports whether the message carries any recognized non-text payload.
func (c *Content) HasPayload() bool {
	return len(c.Photo) > 0 || c.Document != nil || c.Video != nil || c.Audio != nil ||
		c.Voice != nil || c.Sticker != nil || c.VideoNote != nil || c.Poll != nil ||
		c.Location != nil || c.Venue != nil || c.Contact != nil
}

// NewMessage is a message seen for the first time.
type NewMessage struct {
	Content
}

// EditedMessage is a later version of an already sent message.
type EditedMessage struct {
	Content
	EditDate time.Time
}

// ReactionUpdate is one user's change of reactions on one message.
type ReactionUpdate struct {
	MessageID int64
	ChatID    int64
	Chat      Chat
	// User is nil when the reaction was left anonymously on behalf of a chat.
	User *User
	Date time.Time
	Old  []ReactionType
	New  []ReactionType
}
