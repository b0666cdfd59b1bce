package collector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/edgard/tgcollector/internal/events"
)

// RenderText builds the stored text of a message: its text or caption
// followed by one paragraph per structured payload. Voice and video-note
// placeholders are used only when nothing else produced text.
func RenderText(c *events.Content) string {
	var blocks []string

	base := c.Text
	if base == "" {
		base = c.Caption
	}
	if base != "" {
		blocks = append(blocks, base)
	}

	if c.Poll != nil {
		blocks = append(blocks, renderPoll(c.Poll))
	}
	if c.Location != nil {
		blocks = append(blocks, renderLocation(c.Location))
	}
	if c.Venue != nil {
		blocks = append(blocks, renderVenue(c.Venue))
	}
	if c.Contact != nil {
		blocks = append(blocks, renderContact(c.Contact))
	}

	if len(blocks) > 0 {
		return strings.Join(blocks, "\n\n")
	}

	switch {
	case c.Voice != nil:
		return renderVoice(c.Voice)
	case c.VideoNote != nil:
		return renderVideoNote(c.VideoNote)
	}
	return ""
}

func renderPoll(p *events.Poll) string {
	var b strings.Builder
	b.WriteString("Poll: ")
	b.WriteString(p.Question)
	for i, opt := range p.Options {
		fmt.Fprintf(&b, "\n%d. %s", i+1, opt)
	}
	if p.IsClosed {
		b.WriteString("\n(closed)")
	}
	if p.IsAnonymous {
		b.WriteString("\n(anonymous)")
	}
	return b.String()
}

func renderLocation(l *events.Location) string {
	s := "Location: " + formatCoord(l.Latitude) + ", " + formatCoord(l.Longitude)
	if l.LivePeriod > 0 {
		s += fmt.Sprintf(" (live for %ds)", l.LivePeriod)
	}
	if l.Heading > 0 {
		s += fmt.Sprintf(", heading %d°", l.Heading)
	}
	return s
}

func renderVenue(v *events.Venue) string {
	s := "Venue: " + v.Title
	if v.Address != "" {
		s += "\nAddress: " + v.Address
	}
	if v.FoursquareID != "" {
		s += "\nFoursquare ID: " + v.FoursquareID
	}
	return s
}

func renderContact(c *events.Contact) string {
	s := "Contact: " + strings.TrimSpace(c.FirstName+" "+c.LastName)
	if c.PhoneNumber != "" {
		s += "\nPhone: " + c.PhoneNumber
	}
	if c.UserID != 0 {
		s += "\nUser ID: " + strconv.FormatInt(c.UserID, 10)
	}
	return s
}

func renderVoice(v *events.File) string {
	s := "Voice message"
	if v.Duration > 0 {
		s += fmt.Sprintf(" (%ds)", v.Duration)
	}
	if v.FileSize > 0 {
		s += ", " + humanize.Bytes(uint64(v.FileSize))
	}
	return s
}

func renderVideoNote(v *events.VideoNote) string {
	s := "Video note"
	if v.Duration > 0 {
		s += fmt.Sprintf(" (%ds)", v.Duration)
	}
	if v.Length > 0 {
		s += fmt.Sprintf(", %dpx", v.Length)
	}
	return s
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
