package messaging

import (
	"time"

	"mediagate/internal/media"
)

// EventKind tags the inbound event variants.
type EventKind string

const (
	// EventFileUpload carries a file handle plus its advertised metadata.
	EventFileUpload EventKind = "file_upload"
	// EventText carries a plain message, which may contain a URL or command.
	EventText EventKind = "text"
	// EventButton carries the payload code of a pressed option button.
	EventButton EventKind = "button"
)

// FileAttachment is the metadata the transport advertises for an uploaded
// file before any bytes are fetched.
type FileAttachment struct {
	Handle    media.FileHandle
	Name      string
	SizeBytes int64
}

// Event is one inbound interaction from a user.
type Event struct {
	ID         string
	UserID     int64
	Kind       EventKind
	Text       string
	ButtonCode string
	File       *FileAttachment
	ReceivedAt time.Time
}
