package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mediagate/internal/media"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout, stderr []byte, err error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps ffmpeg/ffprobe CLI interactions.
type Client struct {
	ffmpegBinary  string
	ffprobeBinary string
	timeout       time.Duration
	exec          Executor
}

// New constructs an ffmpeg client. Timeout bounds each transcode run; zero
// means no bound beyond the caller's context.
func New(ffmpegBinary, ffprobeBinary string, timeout time.Duration, opts ...Option) (*Client, error) {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	ffprobeBinary = strings.TrimSpace(ffprobeBinary)
	if ffmpegBinary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if ffprobeBinary == "" {
		return nil, errors.New("ffprobe binary required")
	}
	client := &Client{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		timeout:       timeout,
		exec:          commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// TranscodeToAudio extracts the audio track into an MP3 at the given
// bitrate label ("128k", "192k", "320k").
func (c *Client) TranscodeToAudio(ctx context.Context, inputPath, outputPath, bitrate string) error {
	if err := validatePaths(inputPath, outputPath); err != nil {
		return err
	}
	if strings.TrimSpace(bitrate) == "" {
		return errors.New("bitrate required")
	}
	args := []string{
		"-y", "-i", inputPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-b:a", bitrate,
		outputPath,
	}
	return c.runFFmpeg(ctx, "extract audio", args)
}

// ConvertAudioToMP4 wraps an audio file into an MP4 container with an AAC
// track at the given bitrate label.
func (c *Client) ConvertAudioToMP4(ctx context.Context, inputPath, outputPath, bitrate string) error {
	if err := validatePaths(inputPath, outputPath); err != nil {
		return err
	}
	if strings.TrimSpace(bitrate) == "" {
		return errors.New("bitrate required")
	}
	args := []string{
		"-y", "-i", inputPath,
		"-c:a", "aac",
		"-b:a", bitrate,
		"-movflags", "+faststart",
		outputPath,
	}
	return c.runFFmpeg(ctx, "convert audio to mp4", args)
}

// TranscodeVideo re-encodes the input at the given "WxH" resolution. The
// scale/pad filter letterboxes instead of stretching.
func (c *Client) TranscodeVideo(ctx context.Context, inputPath, outputPath, resolution string) error {
	if err := validatePaths(inputPath, outputPath); err != nil {
		return err
	}
	width, height, err := splitResolution(resolution)
	if err != nil {
		return err
	}
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		width, height, width, height,
	)
	args := []string{
		"-y", "-i", inputPath,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		outputPath,
	}
	return c.runFFmpeg(ctx, "transcode video", args)
}

func (c *Client) runFFmpeg(ctx context.Context, operation string, args []string) error {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	_, stderr, err := c.exec.Run(runCtx, c.ffmpegBinary, args)
	if err == nil {
		return nil
	}
	if missingBinary(err) {
		return media.Wrap(media.ErrToolMissing, operation, c.ffmpegBinary, err)
	}
	return media.Wrap(media.ErrToolError, operation, tail(stderr), err)
}

func validatePaths(inputPath, outputPath string) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}
	return nil
}

func splitResolution(resolution string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(resolution), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("resolution %q is not WxH", resolution)
	}
	var width, height int
	if _, err := fmt.Sscanf(parts[0]+" "+parts[1], "%d %d", &width, &height); err != nil {
		return 0, 0, fmt.Errorf("resolution %q is not WxH", resolution)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("resolution %q has non-positive dimension", resolution)
	}
	return width, height, nil
}

func missingBinary(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Is(execErr.Err, exec.ErrNotFound)
	}
	return errors.Is(err, exec.ErrNotFound)
}

// tail returns the last few stderr lines, enough to diagnose without
// dumping the whole transcript into the error chain.
func tail(stderr []byte) string {
	text := strings.TrimSpace(string(stderr))
	if text == "" {
		return "no tool output"
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, " | ")
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
