// Package ytdlp wraps the yt-dlp command line tool for fetching remote
// media metadata and payloads. Tool failures are classified here into the
// media package sentinels so callers never inspect yt-dlp output.
package ytdlp
