package collector

import (
	"github.com/edgard/tgcollector/internal/database"
	"github.com/edgard/tgcollector/internal/events"
)

// stickerMimeType is recorded for stickers that arrive without a mime type.
const stickerMimeType = "image/webp"

// Attachment is one document row to be written for a message.
type Attachment struct {
	Type         database.DocumentType
	FileID       string
	FileUniqueID string
	FileName     string
	MimeType     string
	FileSize     int64
}

func (a Attachment) params(messageID int64) database.DocumentParams {
	p := database.DocumentParams{
		MessageID:    messageID,
		FileID:       a.FileID,
		FileUniqueID: optional(a.FileUniqueID),
		FileName:     optional(a.FileName),
		MimeType:     optional(a.MimeType),
		DocumentType: a.Type,
	}
	if a.FileSize > 0 {
		size := a.FileSize
		p.FileSize = &size
	}
	return p
}

// ExtractAttachments returns one attachment per media kind present, in a
// fixed order: photo, document, video, audio, voice, sticker.
func ExtractAttachments(c *events.Content) []Attachment {
	var out []Attachment

	if photo, ok := largestPhoto(c.Photo); ok {
		out = append(out, Attachment{
			Type:         database.DocumentTypePhoto,
			FileID:       photo.FileID,
			FileUniqueID: photo.FileUniqueID,
			FileSize:     photo.FileSize,
		})
	}

	files := []struct {
		kind database.DocumentType
		file *events.File
	}{
		{database.DocumentTypeDocument, c.Document},
		{database.DocumentTypeVideo, c.Video},
		{database.DocumentTypeAudio, c.Audio},
		{database.DocumentTypeVoice, c.Voice},
		{database.DocumentTypeSticker, c.Sticker},
	}
	for _, f := range files {
		if f.file == nil || f.file.FileID == "" {
			continue
		}
		att := Attachment{
			Type:         f.kind,
			FileID:       f.file.FileID,
			FileUniqueID: f.file.FileUniqueID,
			FileName:     f.file.FileName,
			MimeType:     f.file.MimeType,
			FileSize:     f.file.FileSize,
		}
		if f.kind == database.DocumentTypeSticker && att.MimeType == "" {
			att.MimeType = stickerMimeType
		}
		out = append(out, att)
	}

	return out
}

// largestPhoto picks the variant with the most pixels. Ties and missing
// dimensions resolve to the later entry, which the platform orders by size.
func largestPhoto(sizes []events.PhotoSize) (events.PhotoSize, bool) {
	if len(sizes) == 0 {
		return events.PhotoSize{}, false
	}
	best := sizes[len(sizes)-1]
	bestArea := best.Width * best.Height
	for _, s := range sizes {
		if area := s.Width * s.Height; area > bestArea {
			best, bestArea = s, area
		}
	}
	return best, best.FileID != ""
}
