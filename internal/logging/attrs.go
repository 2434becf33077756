package logging

import "log/slog"

const (
	// FieldComponent is the standardized key for component names.
	FieldComponent = "component"
	// FieldUserID is the standardized key for chat user identifiers.
	FieldUserID = "user_id"
	// FieldEventID is the standardized key for inbound event correlation ids.
	FieldEventID = "event_id"
	// FieldFlow is the standardized key for flow names ("upload", "download").
	FieldFlow = "flow"
)

// Error wraps an error for structured logging, tolerating nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// WithComponent returns a child logger tagged with a component name.
func WithComponent(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	return logger.With(slog.String(FieldComponent, name))
}
