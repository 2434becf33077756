// Package toolset assembles the concrete tool clients into the Operations
// capability set the flows consume.
package toolset

import (
	"context"
	"errors"
	"time"

	"mediagate/internal/config"
	"mediagate/internal/media"
	"mediagate/internal/media/ffmpeg"
	"mediagate/internal/media/ytdlp"
)

// Toolset implements media.Operations on top of ffmpeg and yt-dlp plus a
// transport-provided file source.
type Toolset struct {
	files  media.FileSource
	ffmpeg *ffmpeg.Client
	ytdlp  *ytdlp.Client
}

// New builds a toolset from configuration. The file source comes from the
// chat transport and is injected by the daemon at wiring time.
func New(cfg *config.Config, files media.FileSource) (*Toolset, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if files == nil {
		return nil, errors.New("file source required")
	}
	ffmpegClient, err := ffmpeg.New(
		cfg.Tools.FFmpegBinary,
		cfg.Tools.FFprobeBinary,
		time.Duration(cfg.Tools.TranscodeTimeoutMin)*time.Minute,
	)
	if err != nil {
		return nil, err
	}
	ytdlpClient, err := ytdlp.New(
		cfg.Tools.YtdlpBinary,
		time.Duration(cfg.Tools.InfoFetchTimeoutSec)*time.Second,
		time.Duration(cfg.Tools.DownloadTimeoutMin)*time.Minute,
		ytdlp.WithCookiesFile(cfg.Tools.CookiesFile),
		ytdlp.WithMaxFileSize(cfg.MaxUploadBytes()),
	)
	if err != nil {
		return nil, err
	}
	return &Toolset{files: files, ffmpeg: ffmpegClient, ytdlp: ytdlpClient}, nil
}

func (t *Toolset) Retrieve(ctx context.Context, handle media.FileHandle, destPath string) error {
	return t.files.Retrieve(ctx, handle, destPath)
}

func (t *Toolset) Probe(ctx context.Context, path string) (media.ProbeResult, error) {
	return t.ffmpeg.Probe(ctx, path)
}

func (t *Toolset) TranscodeToAudio(ctx context.Context, inputPath, outputPath, bitrate string) error {
	return t.ffmpeg.TranscodeToAudio(ctx, inputPath, outputPath, bitrate)
}

func (t *Toolset) TranscodeVideo(ctx context.Context, inputPath, outputPath, resolution string) error {
	return t.ffmpeg.TranscodeVideo(ctx, inputPath, outputPath, resolution)
}

func (t *Toolset) ConvertAudioToMP4(ctx context.Context, inputPath, outputPath, bitrate string) error {
	return t.ffmpeg.ConvertAudioToMP4(ctx, inputPath, outputPath, bitrate)
}

func (t *Toolset) FetchRemoteInfo(ctx context.Context, url string) (media.RemoteInfo, error) {
	return t.ytdlp.FetchInfo(ctx, url)
}

func (t *Toolset) FetchRemoteMedia(ctx context.Context, url string, kind media.RemoteKind, maxHeight int, destDir string) (string, media.RemoteInfo, error) {
	return t.ytdlp.Download(ctx, url, kind, maxHeight, destDir)
}

var _ media.Operations = (*Toolset)(nil)
