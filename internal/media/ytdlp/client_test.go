package ytdlp

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"mediagate/internal/media"
)

type fakeExecutor struct {
	lastBinary string
	lastArgs   []string
	stdout     []byte
	stderr     []byte
	err        error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) ([]byte, []byte, error) {
	f.lastBinary = binary
	f.lastArgs = args
	return f.stdout, f.stderr, f.err
}

func newTestClient(t *testing.T, fake *fakeExecutor, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithExecutor(fake)}, opts...)
	client, err := New("yt-dlp", time.Minute, time.Hour, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestFetchInfoParsesPayload(t *testing.T) {
	fake := &fakeExecutor{stdout: []byte(`{
		"title": "Ocean Waves",
		"duration": 125.4,
		"uploader": "nature channel",
		"view_count": 91000,
		"extractor_key": "Youtube"
	}`)}
	client := newTestClient(t, fake)

	info, err := client.FetchInfo(context.Background(), "https://example.com/v/1")
	if err != nil {
		t.Fatalf("FetchInfo: %v", err)
	}
	if info.Title != "Ocean Waves" || info.DurationSeconds != 125 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Uploader != "nature channel" || info.ViewCount != 91000 || info.Platform != "Youtube" {
		t.Fatalf("unexpected info: %+v", info)
	}
	joined := strings.Join(fake.lastArgs, " ")
	if !strings.Contains(joined, "--dump-single-json") || !strings.Contains(joined, "--skip-download") {
		t.Fatalf("info args missing flags: %s", joined)
	}
	if !strings.Contains(joined, "--no-playlist") {
		t.Fatalf("playlist guard missing: %s", joined)
	}
}

func TestFetchInfoFallsBackToChannel(t *testing.T) {
	fake := &fakeExecutor{stdout: []byte(`{"title": "x", "channel": "some channel"}`)}
	client := newTestClient(t, fake)

	info, err := client.FetchInfo(context.Background(), "https://example.com/v/1")
	if err != nil {
		t.Fatalf("FetchInfo: %v", err)
	}
	if info.Uploader != "some channel" {
		t.Fatalf("expected channel fallback, got %+v", info)
	}
}

func TestDownloadArgsVideoTier(t *testing.T) {
	fake := &fakeExecutor{stdout: []byte("/tmp/dl/Clip.mp4\nClip\t90\tsomeone\tYoutube\n")}
	client := newTestClient(t, fake)

	path, info, err := client.Download(context.Background(), "https://example.com/v/1", media.RemoteVideo, 720, "/tmp/dl")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != "/tmp/dl/Clip.mp4" {
		t.Fatalf("unexpected path %q", path)
	}
	if info.Title != "Clip" || info.DurationSeconds != 90 || info.Platform != "Youtube" {
		t.Fatalf("unexpected info: %+v", info)
	}
	joined := strings.Join(fake.lastArgs, " ")
	if !strings.Contains(joined, "bestvideo[height<=720]+bestaudio/best[height<=720]") {
		t.Fatalf("format spec missing: %s", joined)
	}
	if !strings.Contains(joined, "--merge-output-format mp4") {
		t.Fatalf("merge format missing: %s", joined)
	}
}

func TestDownloadArgsAudio(t *testing.T) {
	fake := &fakeExecutor{stdout: []byte("/tmp/dl/Track.mp3\nTrack\t30\tNA\tSoundCloud\n")}
	client := newTestClient(t, fake)

	_, info, err := client.Download(context.Background(), "https://example.com/t/1", media.RemoteAudio, 0, "/tmp/dl")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if info.Uploader != "" {
		t.Fatalf("NA uploader should map to empty, got %q", info.Uploader)
	}
	joined := strings.Join(fake.lastArgs, " ")
	if !strings.Contains(joined, "-x") || !strings.Contains(joined, "--audio-format mp3") {
		t.Fatalf("audio extraction flags missing: %s", joined)
	}
}

func TestDownloadAppliesCookiesAndSizeCap(t *testing.T) {
	fake := &fakeExecutor{stdout: []byte("/tmp/dl/a.mp4\n")}
	client := newTestClient(t, fake, WithCookiesFile("/etc/mediagate/cookies.txt"), WithMaxFileSize(52428800))

	if _, _, err := client.Download(context.Background(), "https://example.com/v/1", media.RemoteVideo, 480, "/tmp/dl"); err != nil {
		t.Fatalf("Download: %v", err)
	}
	joined := strings.Join(fake.lastArgs, " ")
	if !strings.Contains(joined, "--cookies /etc/mediagate/cookies.txt") {
		t.Fatalf("cookies flag missing: %s", joined)
	}
	if !strings.Contains(joined, "--max-filesize 52428800") {
		t.Fatalf("max-filesize flag missing: %s", joined)
	}
}

func TestDownloadSkippedBySizeCap(t *testing.T) {
	fake := &fakeExecutor{stdout: []byte(""), stderr: []byte("File is larger than max-filesize\n")}
	client := newTestClient(t, fake, WithMaxFileSize(1024))

	_, _, err := client.Download(context.Background(), "https://example.com/v/1", media.RemoteVideo, 480, "/tmp/dl")
	if !errors.Is(err, media.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestClassifyFailures(t *testing.T) {
	cases := []struct {
		name   string
		stderr string
		want   error
	}{
		{"private", "ERROR: Private video. Sign in if you've been granted access", media.ErrAuthRequired},
		{"unavailable", "ERROR: Video unavailable", media.ErrUnavailable},
		{"removed", "ERROR: This video has been removed by the uploader", media.ErrUnavailable},
		{"geo", "ERROR: This video is not available in your country", media.ErrUnavailable},
		{"login", "ERROR: Login required to access this content", media.ErrAuthRequired},
		{"generic", "ERROR: Unable to download webpage: timed out", media.ErrFetch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeExecutor{stderr: []byte(tc.stderr), err: errors.New("exit status 1")}
			client := newTestClient(t, fake)

			_, err := client.FetchInfo(context.Background(), "https://example.com/v/1")
			if !errors.Is(err, tc.want) {
				t.Fatalf("stderr %q classified as %v, want %v", tc.stderr, err, tc.want)
			}
		})
	}
}

func TestClassifyMissingBinary(t *testing.T) {
	fake := &fakeExecutor{err: &exec.Error{Name: "yt-dlp", Err: exec.ErrNotFound}}
	client := newTestClient(t, fake)

	_, err := client.FetchInfo(context.Background(), "https://example.com/v/1")
	if !errors.Is(err, media.ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}
}
