package media

import "context"

// FileHandle is an opaque reference issued by the chat transport that can
// be resolved to file bytes.
type FileHandle string

// StreamKind distinguishes stream types inside a container.
type StreamKind string

const (
	StreamVideo StreamKind = "video"
	StreamAudio StreamKind = "audio"
)

// Stream describes one stream reported by a probe.
type Stream struct {
	Kind         StreamKind
	Codec        string
	Width        int
	Height       int
	FPS          float64
	SampleRateHz int
	Channels     int
}

// ProbeResult is the container-level metadata of a local media file.
type ProbeResult struct {
	Container       string
	DurationSeconds float64
	SizeBytes       int64
	BitrateBps      int64
	Streams         []Stream
}

// RemoteKind selects the payload type of a remote fetch.
type RemoteKind string

const (
	RemoteVideo RemoteKind = "video"
	RemoteAudio RemoteKind = "audio"
)

// RemoteInfo is the metadata of a remote media source.
type RemoteInfo struct {
	Title           string
	DurationSeconds int64
	Uploader        string
	ViewCount       int64
	Platform        string
}

// FileSource resolves transport file handles to local bytes.
type FileSource interface {
	Retrieve(ctx context.Context, handle FileHandle, destPath string) error
}

// Operations is the capability set the flows drive. Implementations wrap
// external tools and translate their failures into the package sentinels.
type Operations interface {
	FileSource

	// Probe inspects a local file. Fails with ErrToolMissing or ErrToolError.
	Probe(ctx context.Context, path string) (ProbeResult, error)

	// TranscodeToAudio extracts/converts the input into an MP3 at the given
	// bitrate label (e.g. "192k").
	TranscodeToAudio(ctx context.Context, inputPath, outputPath, bitrate string) error

	// TranscodeVideo re-encodes the input at the given "WxH" resolution,
	// letterboxed to preserve aspect ratio.
	TranscodeVideo(ctx context.Context, inputPath, outputPath, resolution string) error

	// ConvertAudioToMP4 wraps an audio file into an MP4 container with an
	// AAC track at the given bitrate label.
	ConvertAudioToMP4(ctx context.Context, inputPath, outputPath, bitrate string) error

	// FetchRemoteInfo retrieves metadata without downloading bytes. Fails
	// with ErrUnavailable, ErrAuthRequired, or ErrFetch.
	FetchRemoteInfo(ctx context.Context, url string) (RemoteInfo, error)

	// FetchRemoteMedia downloads the source into destDir and returns the
	// local path. Failure modes of FetchRemoteInfo plus ErrTooLarge.
	FetchRemoteMedia(ctx context.Context, url string, kind RemoteKind, maxHeight int, destDir string) (string, RemoteInfo, error)
}
