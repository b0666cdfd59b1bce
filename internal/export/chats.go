package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edgard/tgcollector/internal/database"
)

const untitled = "Untitled"

// FilterChats selects the chats worth listing. Private chats are dropped.
// A group is hidden when a supergroup with the same normalized title exists,
// since it is most likely the pre-promotion copy. Among supergroups sharing
// a title only the most recently created one is kept. The result is sorted
// by creation time.
func FilterChats(chats []*database.Chat) []*database.Chat {
	newest := make(map[string]*database.Chat)
	for _, c := range chats {
		if c.ChatType != database.ChatTypeSupergroup {
			continue
		}
		key := titleKey(c)
		if key == "" {
			continue
		}
		if cur, ok := newest[key]; !ok || c.CreatedAt.After(cur.CreatedAt) {
			newest[key] = c
		}
	}

	out := make([]*database.Chat, 0, len(chats))
	for _, c := range chats {
		key := titleKey(c)
		switch c.ChatType {
		case database.ChatTypePrivate:
			continue
		case database.ChatTypeGroup:
			if _, ok := newest[key]; key != "" && ok {
				continue
			}
		case database.ChatTypeSupergroup:
			if key != "" && newest[key] != c {
				continue
			}
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func titleKey(c *database.Chat) string {
	if !c.Title.Valid {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(c.Title.String))
}

// FormatChatList renders the chats as a plain-text listing.
func FormatChatList(chats []*database.Chat) string {
	var b strings.Builder
	b.WriteString("Chats:\n\n")
	for _, c := range chats {
		title := untitled
		if c.Title.Valid && c.Title.String != "" {
			title = c.Title.String
		}
		fmt.Fprintf(&b, "ID: %d\n", c.ID)
		fmt.Fprintf(&b, "Title: %s\n", title)
		fmt.Fprintf(&b, "Type: %s\n", c.ChatType)
		fmt.Fprintf(&b, "Created: %s\n", c.CreatedAt.UTC().Format("2006-01-02 15:04"))
		b.WriteString(strings.Repeat("─", 20) + "\n")
	}
	return b.String()
}
