package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
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

// WithCookiesFile points yt-dlp at a Netscape cookies file for sources
// that gate content behind a login.
func WithCookiesFile(path string) Option {
	return func(c *Client) {
		c.cookiesFile = strings.TrimSpace(path)
	}
}

// WithMaxFileSize caps downloads at the given byte count; larger sources
// are rejected with ErrTooLarge instead of being fetched.
func WithMaxFileSize(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxFileSize = limit
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary          string
	cookiesFile     string
	maxFileSize     int64
	infoTimeout     time.Duration
	downloadTimeout time.Duration
	exec            Executor
}

// New constructs a yt-dlp client.
func New(binary string, infoTimeout, downloadTimeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:          binary,
		infoTimeout:     infoTimeout,
		downloadTimeout: downloadTimeout,
		exec:            commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type infoPayload struct {
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Uploader  string  `json:"uploader"`
	Channel   string  `json:"channel"`
	ViewCount int64   `json:"view_count"`
	Extractor string  `json:"extractor_key"`
}

// FetchInfo retrieves source metadata without downloading any media.
func (c *Client) FetchInfo(ctx context.Context, url string) (media.RemoteInfo, error) {
	if strings.TrimSpace(url) == "" {
		return media.RemoteInfo{}, errors.New("url required")
	}
	args := c.commonArgs()
	args = append(args, "--dump-single-json", "--skip-download", url)

	runCtx := ctx
	if c.infoTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.infoTimeout)
		defer cancel()
	}
	stdout, stderr, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		return media.RemoteInfo{}, c.classify("fetch info", stderr, err)
	}

	var payload infoPayload
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return media.RemoteInfo{}, media.Wrap(media.ErrFetch, "fetch info", "malformed yt-dlp output", err)
	}
	return payloadToInfo(payload), nil
}

// Download fetches the source into destDir and returns the final file path
// along with the metadata yt-dlp reported for the downloaded entry.
func (c *Client) Download(ctx context.Context, url string, kind media.RemoteKind, maxHeight int, destDir string) (string, media.RemoteInfo, error) {
	if strings.TrimSpace(url) == "" {
		return "", media.RemoteInfo{}, errors.New("url required")
	}
	if strings.TrimSpace(destDir) == "" {
		return "", media.RemoteInfo{}, errors.New("destination directory required")
	}

	args := c.commonArgs()
	switch kind {
	case media.RemoteAudio:
		args = append(args,
			"-f", "bestaudio/best",
			"-x", "--audio-format", "mp3",
		)
	default:
		if maxHeight > 0 {
			spec := fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", maxHeight, maxHeight)
			args = append(args, "-f", spec)
		} else {
			args = append(args, "-f", "bestvideo+bestaudio/best")
		}
		args = append(args, "--merge-output-format", "mp4")
	}
	if c.maxFileSize > 0 {
		args = append(args, "--max-filesize", strconv.FormatInt(c.maxFileSize, 10))
	}
	args = append(args,
		"-o", destDir+"/%(title).80s.%(ext)s",
		"--no-simulate",
		"--print", "after_move:filepath",
		"--print", printInfoTemplate,
		url,
	)

	runCtx := ctx
	if c.downloadTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.downloadTimeout)
		defer cancel()
	}
	stdout, stderr, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		return "", media.RemoteInfo{}, c.classify("download", stderr, err)
	}

	path, info, ok := parseDownloadOutput(stdout)
	if !ok {
		if mentionsSizeLimit(stdout) || mentionsSizeLimit(stderr) {
			return "", media.RemoteInfo{}, media.Wrap(media.ErrTooLarge, "download", "source exceeds size limit", nil)
		}
		return "", media.RemoteInfo{}, media.Wrap(media.ErrFetch, "download", "yt-dlp reported no output file", nil)
	}
	return path, info, nil
}

// printInfoTemplate emits one tab-separated metadata line after the file
// line so both come from a single yt-dlp run.
const printInfoTemplate = "after_move:%(title)s\t%(duration)s\t%(uploader)s\t%(extractor_key)s"

func (c *Client) commonArgs() []string {
	args := []string{"--no-playlist", "--no-warnings", "--no-progress"}
	if c.cookiesFile != "" {
		args = append(args, "--cookies", c.cookiesFile)
	}
	return args
}

func parseDownloadOutput(stdout []byte) (string, media.RemoteInfo, bool) {
	lines := splitNonEmptyLines(stdout)
	if len(lines) == 0 {
		return "", media.RemoteInfo{}, false
	}
	// The filepath line precedes the metadata line; playlists are disabled
	// so only the final pair matters.
	var path string
	var info media.RemoteInfo
	for _, line := range lines {
		if fields := strings.Split(line, "\t"); len(fields) == 4 {
			info = media.RemoteInfo{
				Title:           fields[0],
				DurationSeconds: int64(parseDuration(fields[1])),
				Uploader:        nonNA(fields[2]),
				Platform:        nonNA(fields[3]),
			}
			continue
		}
		path = line
	}
	if path == "" {
		return "", media.RemoteInfo{}, false
	}
	return path, info, true
}

func payloadToInfo(payload infoPayload) media.RemoteInfo {
	uploader := payload.Uploader
	if uploader == "" {
		uploader = payload.Channel
	}
	return media.RemoteInfo{
		Title:           payload.Title,
		DurationSeconds: int64(payload.Duration),
		Uploader:        uploader,
		ViewCount:       payload.ViewCount,
		Platform:        payload.Extractor,
	}
}

func splitNonEmptyLines(data []byte) []string {
	var lines []string
	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimSpace(string(raw))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func parseDuration(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}

func nonNA(value string) string {
	if value == "NA" {
		return ""
	}
	return value
}

func mentionsSizeLimit(output []byte) bool {
	return bytes.Contains(bytes.ToLower(output), []byte("max-filesize"))
}

// classify maps yt-dlp failures onto the media sentinels. The string
// matching tracks yt-dlp's extractor error messages and may need updating
// across tool releases.
func (c *Client) classify(operation string, stderr []byte, err error) error {
	if missingBinary(err) {
		return media.Wrap(media.ErrToolMissing, operation, c.binary, err)
	}
	lowered := strings.ToLower(string(stderr))
	switch {
	case strings.Contains(lowered, "sign in") ||
		strings.Contains(lowered, "login required") ||
		strings.Contains(lowered, "authentication") ||
		strings.Contains(lowered, "cookies"):
		return media.Wrap(media.ErrAuthRequired, operation, firstLine(stderr), err)
	case strings.Contains(lowered, "private video") ||
		strings.Contains(lowered, "video unavailable") ||
		strings.Contains(lowered, "content unavailable") ||
		strings.Contains(lowered, "has been removed") ||
		strings.Contains(lowered, "not available in your country"):
		return media.Wrap(media.ErrUnavailable, operation, firstLine(stderr), err)
	case strings.Contains(lowered, "max-filesize"):
		return media.Wrap(media.ErrTooLarge, operation, firstLine(stderr), err)
	default:
		return media.Wrap(media.ErrFetch, operation, firstLine(stderr), err)
	}
}

func firstLine(stderr []byte) string {
	lines := splitNonEmptyLines(stderr)
	if len(lines) == 0 {
		return "no tool output"
	}
	return lines[0]
}

func missingBinary(err error) bool {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Is(execErr.Err, exec.ErrNotFound)
	}
	return errors.Is(err, exec.ErrNotFound)
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
