package messaging

import (
	"context"
	"log/slog"

	"mediagate/internal/logging"
)

// Option is one choice offered to the user as a button.
type Option struct {
	Code  string
	Label string
}

// Messenger sends outbound replies to a user. SendText returns the
// transport's reference to the sent message so it can be edited later;
// an empty reference means the transport does not support editing. Media
// sends reference local file paths; the transport streams the bytes out.
type Messenger interface {
	SendText(ctx context.Context, userID int64, text string) (string, error)
	EditText(ctx context.Context, userID int64, messageID, text string) error
	SendOptions(ctx context.Context, userID int64, text string, options []Option) error
	SendAudio(ctx context.Context, userID int64, path, title string) error
	SendVideo(ctx context.Context, userID int64, path, caption string) error
	SendDocument(ctx context.Context, userID int64, path, caption string) error
}

// NotifyText sends a status line where delivery failure must not fail the
// surrounding flow; the error is logged and swallowed.
func NotifyText(ctx context.Context, m Messenger, logger *slog.Logger, userID int64, text string) {
	if m == nil {
		return
	}
	if _, err := m.SendText(ctx, userID, text); err != nil && logger != nil {
		logger.Warn("status message dropped",
			logging.Error(err),
			slog.Int64(logging.FieldUserID, userID))
	}
}
