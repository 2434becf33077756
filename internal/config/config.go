package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and socket configuration.
type Paths struct {
	TempDir         string `toml:"temp_dir"`
	StorageDir      string `toml:"storage_dir"`
	LogDir          string `toml:"log_dir"`
	TransportSocket string `toml:"transport_socket"`
	ControlSocket   string `toml:"control_socket"`
}

// Limits contains size ceilings applied to uploads and deliveries.
type Limits struct {
	MaxUploadMB    int `toml:"max_upload_mb"`
	DeliveryCapMB  int `toml:"delivery_cap_mb"`
	MaxTitleLength int `toml:"max_title_length"`
}

// Formats contains the extension allow-lists for inbound files.
type Formats struct {
	VideoExtensions []string `toml:"video_extensions"`
	AudioExtensions []string `toml:"audio_extensions"`
}

// AudioPreset is one selectable audio bitrate tier.
type AudioPreset struct {
	Key     string `toml:"key"`
	Bitrate string `toml:"bitrate"`
	Label   string `toml:"label"`
}

// VideoPreset is one selectable video resolution tier.
type VideoPreset struct {
	Key        string `toml:"key"`
	Resolution string `toml:"resolution"`
	Label      string `toml:"label"`
}

// DownloadTier is one selectable remote-download quality tier.
type DownloadTier struct {
	Key       string `toml:"key"`
	MaxHeight int    `toml:"max_height"`
	Label     string `toml:"label"`
}

// Quality groups the preset tables offered to users.
type Quality struct {
	Audio    []AudioPreset  `toml:"audio"`
	Video    []VideoPreset  `toml:"video"`
	Download []DownloadTier `toml:"download"`
}

// Cleanup contains temp-artifact sweeping configuration.
type Cleanup struct {
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
	TempMaxAgeMinutes    int `toml:"temp_max_age_minutes"`
}

// Tools contains external tool binaries and timeouts.
type Tools struct {
	FFmpegBinary           string `toml:"ffmpeg_binary"`
	FFprobeBinary          string `toml:"ffprobe_binary"`
	YtdlpBinary            string `toml:"ytdlp_binary"`
	CookiesFile            string `toml:"cookies_file"`
	TranscodeTimeoutMin    int    `toml:"transcode_timeout_minutes"`
	InfoFetchTimeoutSec    int    `toml:"info_fetch_timeout_seconds"`
	DownloadTimeoutMin     int    `toml:"download_timeout_minutes"`
	DeliveryTimeoutMinutes int    `toml:"delivery_timeout_minutes"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the gateway.
//
// Sections by subsystem:
//   - Paths: temp/storage/log directories and daemon sockets
//   - Limits: upload and delivery size ceilings
//   - Formats: supported video/audio extensions
//   - Quality: audio/video transcode presets and download tiers
//   - Cleanup: temp sweep interval and max age
//   - Tools: ffmpeg/ffprobe/yt-dlp binaries and timeouts
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Limits  Limits  `toml:"limits"`
	Formats Formats `toml:"formats"`
	Quality Quality `toml:"quality"`
	Cleanup Cleanup `toml:"cleanup"`
	Tools   Tools   `toml:"tools"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediagate/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediagate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.TempDir, c.Paths.StorageDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MaxUploadBytes returns the inbound file size ceiling in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Limits.MaxUploadMB) * 1024 * 1024
}

// DeliveryCapBytes returns the outbound delivery size ceiling in bytes.
func (c *Config) DeliveryCapBytes() int64 {
	return int64(c.Limits.DeliveryCapMB) * 1024 * 1024
}

// TempMaxAge returns the age threshold beyond which the sweeper reclaims
// temp artifacts.
func (c *Config) TempMaxAge() time.Duration {
	return time.Duration(c.Cleanup.TempMaxAgeMinutes) * time.Minute
}

// SweepInterval returns the period between background sweeps.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Cleanup.SweepIntervalMinutes) * time.Minute
}

// IsVideoExtension reports whether ext (with leading dot) is an allowed
// video extension.
func (c *Config) IsVideoExtension(ext string) bool {
	return containsFold(c.Formats.VideoExtensions, ext)
}

// IsAudioExtension reports whether ext (with leading dot) is an allowed
// audio extension.
func (c *Config) IsAudioExtension(ext string) bool {
	return containsFold(c.Formats.AudioExtensions, ext)
}

// IsSupportedExtension reports whether ext is in either allow-list.
func (c *Config) IsSupportedExtension(ext string) bool {
	return c.IsVideoExtension(ext) || c.IsAudioExtension(ext)
}

// SupportedExtensions returns the combined allow-list for display.
func (c *Config) SupportedExtensions() []string {
	out := make([]string, 0, len(c.Formats.VideoExtensions)+len(c.Formats.AudioExtensions))
	out = append(out, c.Formats.VideoExtensions...)
	out = append(out, c.Formats.AudioExtensions...)
	return out
}

// AudioPresetByKey looks up an audio preset by its key.
func (c *Config) AudioPresetByKey(key string) (AudioPreset, bool) {
	for _, preset := range c.Quality.Audio {
		if strings.EqualFold(preset.Key, key) {
			return preset, true
		}
	}
	return AudioPreset{}, false
}

// VideoPresetByKey looks up a video preset by its key.
func (c *Config) VideoPresetByKey(key string) (VideoPreset, bool) {
	for _, preset := range c.Quality.Video {
		if strings.EqualFold(preset.Key, key) {
			return preset, true
		}
	}
	return VideoPreset{}, false
}

// DownloadTierByKey looks up a download tier by its key.
func (c *Config) DownloadTierByKey(key string) (DownloadTier, bool) {
	for _, tier := range c.Quality.Download {
		if strings.EqualFold(tier.Key, key) {
			return tier, true
		}
	}
	return DownloadTier{}, false
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
