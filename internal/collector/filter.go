package collector

import (
	apperrors "github.com/edgard/tgcollector/internal/errors"
	"github.com/edgard/tgcollector/internal/events"
)

// AnonymousAdminID is the account Telegram uses as the author of messages
// sent by anonymous group administrators.
const AnonymousAdminID int64 = 1087968824

// checkContent rejects events that carry no user content. It runs before
// any store call.
func checkContent(c *events.Content) error {
	switch {
	case c.ServiceKind != "":
		return apperrors.NewValidationError("service message: "+c.ServiceKind, nil)
	case c.From == nil:
		return apperrors.NewValidationError("message has no author", nil)
	case c.From.IsBot:
		return apperrors.NewValidationError("message from bot", nil)
	case c.From.ID == AnonymousAdminID:
		return apperrors.NewValidationError("message from anonymous admin", nil)
	case c.IsCommand:
		return apperrors.NewValidationError("bot command", nil)
	case c.Text == "" && c.Caption == "" && !c.HasPayload():
		return apperrors.NewValidationError("message has no content", nil)
	}
	return nil
}
