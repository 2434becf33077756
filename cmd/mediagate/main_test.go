package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
temp_dir = %q
storage_dir = %q
log_dir = %q
`, filepath.Join(base, "temp"), filepath.Join(base, "storage"), filepath.Join(base, "logs"))
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := runCLI(t, []string{"config", "init", "--path", target}); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestFilesCommandListsStore(t *testing.T) {
	configPath := writeTestConfig(t)

	base := filepath.Dir(configPath)
	userDir := filepath.Join(base, "storage", "7")
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(userDir, "song.mp3"), []byte("not really audio"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	out, err := runCLI(t, []string{"files", "7", "--config", configPath})
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if !strings.Contains(out, "song.mp3") {
		t.Fatalf("expected listing to include song.mp3, got %q", out)
	}
}

func TestFilesCommandEmptyStore(t *testing.T) {
	configPath := writeTestConfig(t)
	out, err := runCLI(t, []string{"files", "42", "--config", configPath})
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if !strings.Contains(out, "No saved files for user 42") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFilesCommandRejectsBadUserID(t *testing.T) {
	configPath := writeTestConfig(t)
	if _, err := runCLI(t, []string{"files", "abc", "--config", configPath}); err == nil {
		t.Fatal("expected invalid user ID to fail")
	}
}

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Connector", statusWarn, "no", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Connector:", "[WARN] no")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Connector", statusOK, "yes", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}

func TestFormatMillis(t *testing.T) {
	if got := formatMillis(250); got != "250ms" {
		t.Fatalf("formatMillis(250) = %q", got)
	}
	if got := formatMillis(1500); got != "1.5s" {
		t.Fatalf("formatMillis(1500) = %q", got)
	}
}

func TestFormatTimestampFallback(t *testing.T) {
	if got := formatTimestamp("garbage"); got != "garbage" {
		t.Fatalf("expected raw fallback, got %q", got)
	}
	if got := formatTimestamp("2026-08-26T10:00:00Z"); !strings.HasPrefix(got, "2026-08-26") {
		t.Fatalf("expected formatted date, got %q", got)
	}
}

func TestRenderTablePadding(t *testing.T) {
	out := renderTable(
		[]tableColumn{{title: "Name"}, {title: "Size", numeric: true}},
		[][]string{{"clip.mp4", "1.0 MB"}, {"short"}},
	)
	if !strings.Contains(out, "clip.mp4") || !strings.Contains(out, "short") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("empty column set should render nothing")
	}
}
