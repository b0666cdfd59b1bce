package database

import (
	"database/sql"
	"time"
)

// ChatType is the closed set of chat kinds the store accepts.
type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
	ChatTypeUnknown    ChatType = "unknown"
)

// ParseChatType maps a platform chat type onto ChatType, falling back to unknown.
func ParseChatType(s string) ChatType {
	switch t := ChatType(s); t {
	case ChatTypePrivate, ChatTypeGroup, ChatTypeSupergroup, ChatTypeChannel:
		return t
	default:
		return ChatTypeUnknown
	}
}

// DocumentType tags the media kind a Document row was extracted from.
type DocumentType string

const (
	DocumentTypePhoto    DocumentType = "photo"
	DocumentTypeDocument DocumentType = "document"
	DocumentTypeVideo    DocumentType = "video"
	DocumentTypeAudio    DocumentType = "audio"
	DocumentTypeVoice    DocumentType = "voice"
	DocumentTypeSticker  DocumentType = "sticker"
)

// User is a platform account observed as a message author or reactor.
type User struct {
	ID        int64          `db:"id"`
	Username  sql.NullString `db:"username"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	CreatedAt time.Time      `db:"created_at"`
}

// Chat is a conversation. Its ID changes when a group becomes a supergroup.
type Chat struct {
	ID        int64          `db:"id"`
	Title     sql.NullString `db:"title"`
	ChatType  ChatType       `db:"chat_type"`
	CreatedAt time.Time      `db:"created_at"`
}

// Message is the latest-state projection of one platform message.
// MessageID is only unique together with ChatID.
type Message struct {
	ID          int64          `db:"id"`
	MessageID   int64          `db:"message_id"`
	ChatID      int64          `db:"chat_id"`
	UserID      sql.NullInt64  `db:"user_id"`
	Text        sql.NullString `db:"text"`
	MessageDate time.Time      `db:"message_date"`
	EditedDate  sql.NullTime   `db:"edited_date"`
	CreatedAt   time.Time      `db:"created_at"`

	// Populated by QueryMessagesInRange only.
	User      *User       `db:"-"`
	Documents []*Document `db:"-"`
	Reactions []*Reaction `db:"-"`

	// Inserted is set by UpsertMessage when the call created the row.
	Inserted bool `db:"-"`
}

// Reaction is one emoji left on a message by one user.
type Reaction struct {
	ID        int64          `db:"id"`
	MessageID int64          `db:"message_id"`
	Emoji     sql.NullString `db:"emoji"`
	UserID    sql.NullInt64  `db:"user_id"`
	CreatedAt time.Time      `db:"created_at"`
}

// Document is the metadata of a media attachment.
type Document struct {
	ID           int64          `db:"id"`
	MessageID    int64          `db:"message_id"`
	FileID       string         `db:"file_id"`
	FileUniqueID sql.NullString `db:"file_unique_id"`
	FileName     sql.NullString `db:"file_name"`
	MimeType     sql.NullString `db:"mime_type"`
	FileSize     sql.NullInt64  `db:"file_size"`
	DocumentType DocumentType   `db:"document_type"`
	LocalPath    sql.NullString `db:"local_path"`
	CreatedAt    time.Time      `db:"created_at"`
}

// UserParams carries the optional fields of a user upsert. Nil fields keep
// whatever is already stored.
type UserParams struct {
	ID        int64
	Username  *string
	FirstName *string
	LastName  *string
}

// ChatParams carries a chat upsert. Nil fields keep whatever is already stored.
type ChatParams struct {
	ID    int64
	Title *string
	Type  *ChatType
}

// MessageParams carries a message upsert. All times must already be UTC.
// A non-nil EditedDate marks the call as an edit; an edit with a non-nil
// empty Text clears the stored text.
type MessageParams struct {
	MessageID   int64
	ChatID      int64
	UserID      *int64
	Text        *string
	MessageDate time.Time
	EditedDate  *time.Time
}

// DocumentParams carries a document insert.
type DocumentParams struct {
	MessageID    int64
	FileID       string
	FileUniqueID *string
	FileName     *string
	MimeType     *string
	FileSize     *int64
	DocumentType DocumentType
	LocalPath    *string
}

// ReactionDiff is one user's reaction change on one stored message.
type ReactionDiff struct {
	MessageID int64
	UserID    int64
	Removed   []string
	Added     []string
}
