package session

import (
	"time"

	"mediagate/internal/media"
)

// Kind names the variant currently held in a user's slot.
type Kind string

const (
	NoSession          Kind = "none"
	HasPendingUpload   Kind = "upload"
	HasPendingDownload Kind = "download"
)

// UploadStage is the position of an upload flow inside its state machine.
type UploadStage string

const (
	UploadRightsPending  UploadStage = "rights_pending"
	UploadActionPending  UploadStage = "action_pending"
	UploadQualityPending UploadStage = "quality_pending"
	UploadProcessing     UploadStage = "processing"
)

// DownloadStage is the position of a download flow inside its state machine.
type DownloadStage string

const (
	DownloadFormatPending DownloadStage = "format_pending"
	DownloadFetching      DownloadStage = "fetching"
)

// PendingUpload is the session record of an active upload flow.
type PendingUpload struct {
	Token      string
	Stage      UploadStage
	FileHandle media.FileHandle
	FileName   string
	Extension  string
	SizeBytes  int64
	Action     string
	Quality    string
	TempPaths  []string
	CreatedAt  time.Time
}

// PendingDownload is the session record of an active download flow.
type PendingDownload struct {
	Token     string
	Stage     DownloadStage
	URL       string
	Info      media.RemoteInfo
	Format    string
	TempPaths []string
	CreatedAt time.Time
}

// Snapshot is a copy of a user's slot at read time. Mutating it has no
// effect on the store.
type Snapshot struct {
	UserID   int64
	Kind     Kind
	Upload   *PendingUpload
	Download *PendingDownload
}
