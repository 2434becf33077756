// Package media defines the boundary between the gateway's flows and the
// external tooling that does the actual work: probing and transcoding via
// ffmpeg/ffprobe, and remote info/media fetching via yt-dlp.
//
// Flows depend only on the Operations interface and the sentinel errors
// declared here; classification of tool output into those sentinels is the
// job of the concrete clients, never of callers.
package media
