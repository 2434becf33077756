// Package ffmpeg wraps the ffmpeg and ffprobe command line tools for
// probing and transcoding local media files.
package ffmpeg
