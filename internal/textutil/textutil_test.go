package textutil_test

import (
	"strings"
	"testing"

	"mediagate/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "clip.mp4", "clip.mp4"},
		{"slashes", "a/b\\c.mkv", "a-b-c.mkv"},
		{"colon and star", "take:2 *final*.mp3", "take-2 -final-.mp3"},
		{"stripped chars", `we"ird<na>me|?.ogg`, "weirdname.ogg"},
		{"whitespace", "  song.flac  ", "song.flac"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := textutil.SanitizeFileName(tc.input); got != tc.expected {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestTruncateCapsLength(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := textutil.Truncate(long, 200)
	if len([]rune(got)) != 203 {
		t.Fatalf("expected 200 runes plus ellipsis, got %d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got[len(got)-10:])
	}
}

func TestTruncateStripsControlCharacters(t *testing.T) {
	got := textutil.Truncate("bad\x1b[31mcolor\x00byte\nnext", 200)
	if strings.ContainsAny(got, "\x1b\x00") {
		t.Fatalf("control characters survived: %q", got)
	}
	if !strings.Contains(got, "\n") {
		t.Fatalf("newline should survive truncation: %q", got)
	}
}

func TestTruncateShortInputUnchanged(t *testing.T) {
	if got := textutil.Truncate("short message", 200); got != "short message" {
		t.Fatalf("unexpected truncation: %q", got)
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		size     int64
		expected string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{16 * 1 << 20, "16.0 MB"},
		{3 * 1 << 30, "3.0 GB"},
		{-1, "unknown"},
	}
	for _, tc := range cases {
		if got := textutil.FormatSize(tc.size); got != tc.expected {
			t.Fatalf("FormatSize(%d) = %q, want %q", tc.size, got, tc.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds  int64
		expected string
	}{
		{0, "unknown"},
		{59, "00:59"},
		{75, "01:15"},
		{3671, "01:01:11"},
	}
	for _, tc := range cases {
		if got := textutil.FormatDuration(tc.seconds); got != tc.expected {
			t.Fatalf("FormatDuration(%d) = %q, want %q", tc.seconds, got, tc.expected)
		}
	}
}

func TestFormatCount(t *testing.T) {
	cases := []struct {
		count    int64
		expected string
	}{
		{0, "unknown"},
		{999, "999"},
		{1500, "1.5K"},
		{2_300_000, "2.3M"},
		{1_200_000_000, "1.2B"},
	}
	for _, tc := range cases {
		if got := textutil.FormatCount(tc.count); got != tc.expected {
			t.Fatalf("FormatCount(%d) = %q, want %q", tc.count, got, tc.expected)
		}
	}
}

func TestFormatBitrate(t *testing.T) {
	if got := textutil.FormatBitrate(192_000); got != "192 kbps" {
		t.Fatalf("FormatBitrate(192000) = %q", got)
	}
	if got := textutil.FormatBitrate(4_500_000); got != "4.5 Mbps" {
		t.Fatalf("FormatBitrate(4500000) = %q", got)
	}
}
