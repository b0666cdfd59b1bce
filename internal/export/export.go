// Package export renders collected chats and messages as plain text for the
// administrative surfaces (Telegram commands and the CLI).
package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/edgard/tgcollector/internal/database"
	apperrors "github.com/edgard/tgcollector/internal/errors"
)

// MaxMessageLength is the longest reply sent inline; longer exports go out
// as a document and longer chat lists are split.
const MaxMessageLength = 4000

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
	ruleWidth       = 50
)

// Period is an inclusive UTC time range.
type Period struct {
	Start time.Time
	End   time.Time
}

// LastDays returns the period ending at now and starting days earlier.
func LastDays(now time.Time, days int) (Period, error) {
	if days <= 0 {
		return Period{}, apperrors.NewValidationError("days must be positive", nil)
	}
	now = now.UTC()
	return Period{Start: now.AddDate(0, 0, -days), End: now}, nil
}

// ParseDays parses a positive day count.
func ParseDays(s string) (int, error) {
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, apperrors.NewValidationError("invalid day count", err)
	}
	if days <= 0 {
		return 0, apperrors.NewValidationError("days must be positive", nil)
	}
	return days, nil
}

// ParseDateRange parses two YYYY-MM-DD dates into a period covering both
// days in full (00:00:00 to 23:59:59 UTC).
func ParseDateRange(from, to string) (Period, error) {
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(from), time.UTC)
	if err != nil {
		return Period{}, apperrors.NewValidationError("invalid start date", err)
	}
	end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(to), time.UTC)
	if err != nil {
		return Period{}, apperrors.NewValidationError("invalid end date", err)
	}
	end = end.Add(24*time.Hour - time.Second)
	if end.Before(start) {
		return Period{}, apperrors.NewValidationError("start date is after end date", nil)
	}
	return Period{Start: start, End: end}, nil
}

// ParseChatID parses a chat id argument. Group ids are negative but the
// sign is optional, see Export.
func ParseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("invalid chat id", err)
	}
	return id, nil
}

// MessageQuerier is the read path Export needs from the store.
type MessageQuerier interface {
	QueryMessagesInRange(ctx context.Context, chatID int64, start, end time.Time) ([]*database.Message, error)
}

// Result is a rendered export.
type Result struct {
	ChatID   int64
	Period   Period
	Messages []*database.Message
	Text     string
}

// Export loads the messages of chatID within p and renders them. When a
// positive id yields nothing the negated id is tried, since group ids are
// often typed without their sign. A Result with no messages and empty Text
// means nothing was found.
func Export(ctx context.Context, q MessageQuerier, chatID int64, p Period) (*Result, error) {
	msgs, err := q.QueryMessagesInRange(ctx, chatID, p.Start, p.End)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 && chatID > 0 {
		alt, err := q.QueryMessagesInRange(ctx, -chatID, p.Start, p.End)
		if err != nil {
			return nil, err
		}
		if len(alt) > 0 {
			chatID, msgs = -chatID, alt
		}
	}

	res := &Result{ChatID: chatID, Period: p, Messages: msgs}
	if len(msgs) > 0 {
		res.Text = FormatExport(msgs, p)
	}
	return res, nil
}

// FileName names the document an export is sent or written as.
func FileName(chatID int64, now time.Time) string {
	return fmt.Sprintf("export_%d_%s.txt", chatID, now.UTC().Format("20060102_150405"))
}

// FormatExport renders messages in the order given.
func FormatExport(messages []*database.Message, p Period) string {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	b.WriteString(rule + "\n")
	b.WriteString("MESSAGE EXPORT\n")
	fmt.Fprintf(&b, "Period: %s - %s\n", p.Start.Format(dateLayout), p.End.Format(dateLayout))
	fmt.Fprintf(&b, "Total messages: %d\n", len(messages))
	b.WriteString(rule + "\n\n")

	for _, msg := range messages {
		writeMessage(&b, msg)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeMessage(b *strings.Builder, msg *database.Message) {
	fmt.Fprintf(b, "[%s]", msg.MessageDate.UTC().Format(timestampLayout))
	if msg.EditedDate.Valid {
		fmt.Fprintf(b, " (edited: %s)", msg.EditedDate.Time.UTC().Format(timestampLayout))
	}
	b.WriteString("\n")

	if u := msg.User; u != nil {
		fmt.Fprintf(b, "From: %s (ID: %d)\n", authorName(u), u.ID)
	}
	if msg.Text.Valid && msg.Text.String != "" {
		fmt.Fprintf(b, "Text: %s\n", msg.Text.String)
	}

	if len(msg.Documents) > 0 {
		b.WriteString("Files:\n")
		for _, d := range msg.Documents {
			name := d.FileID
			if d.FileName.Valid && d.FileName.String != "" {
				name = d.FileName.String
			}
			fmt.Fprintf(b, "  - %s: %s", d.DocumentType, name)
			if d.FileSize.Valid && d.FileSize.Int64 > 0 {
				fmt.Fprintf(b, " (%s)", humanize.Bytes(uint64(d.FileSize.Int64)))
			}
			b.WriteString("\n")
		}
	}

	if len(msg.Reactions) > 0 {
		fmt.Fprintf(b, "Reactions: %s (total: %d)\n", groupReactions(msg.Reactions), len(msg.Reactions))
	}

	b.WriteString(strings.Repeat("-", ruleWidth) + "\n\n")
}

func authorName(u *database.User) string {
	name := strings.TrimSpace(u.FirstName.String + " " + u.LastName.String)
	if u.Username.Valid && u.Username.String != "" {
		if name != "" {
			name += " "
		}
		name += "(@" + u.Username.String + ")"
	}
	return name
}

// groupReactions counts reactions per emoji in first-seen order.
func groupReactions(reactions []*database.Reaction) string {
	counts := make(map[string]int, len(reactions))
	var order []string
	for _, r := range reactions {
		emoji := "?"
		if r.Emoji.Valid && r.Emoji.String != "" {
			emoji = r.Emoji.String
		}
		if counts[emoji] == 0 {
			order = append(order, emoji)
		}
		counts[emoji]++
	}

	parts := make([]string, 0, len(order))
	for _, emoji := range order {
		if n := counts[emoji]; n > 1 {
			parts = append(parts, fmt.Sprintf("%s x%d", emoji, n))
		} else {
			parts = append(parts, emoji)
		}
	}
	return strings.Join(parts, ", ")
}

// Chunk splits s into pieces of at most size runes.
func Chunk(s string, size int) []string {
	if size <= 0 || s == "" {
		return nil
	}
	runes := []rune(s)
	chunks := make([]string, 0, len(runes)/size+1)
	for len(runes) > size {
		chunks = append(chunks, string(runes[:size]))
		runes = runes[size:]
	}
	return append(chunks, string(runes))
}
