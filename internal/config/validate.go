package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	pathFields := []struct {
		name  string
		value *string
	}{
		{"temp_dir", &c.Paths.TempDir},
		{"storage_dir", &c.Paths.StorageDir},
		{"log_dir", &c.Paths.LogDir},
	}
	for _, field := range pathFields {
		expanded, err := expandPath(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}

	if strings.TrimSpace(c.Paths.TransportSocket) == "" {
		c.Paths.TransportSocket = filepath.Join(c.Paths.LogDir, "mediagate.sock")
	} else {
		expanded, err := expandPath(c.Paths.TransportSocket)
		if err != nil {
			return fmt.Errorf("transport_socket: %w", err)
		}
		c.Paths.TransportSocket = expanded
	}
	if strings.TrimSpace(c.Paths.ControlSocket) == "" {
		c.Paths.ControlSocket = filepath.Join(c.Paths.LogDir, "mediagate-control.sock")
	} else {
		expanded, err := expandPath(c.Paths.ControlSocket)
		if err != nil {
			return fmt.Errorf("control_socket: %w", err)
		}
		c.Paths.ControlSocket = expanded
	}

	if c.Tools.CookiesFile != "" {
		expanded, err := expandPath(c.Tools.CookiesFile)
		if err != nil {
			return fmt.Errorf("cookies_file: %w", err)
		}
		c.Tools.CookiesFile = expanded
	}

	c.Formats.VideoExtensions = normalizeExtensions(c.Formats.VideoExtensions)
	c.Formats.AudioExtensions = normalizeExtensions(c.Formats.AudioExtensions)
	return nil
}

func normalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.TempDir == "" {
		problems = append(problems, "paths.temp_dir is required")
	}
	if c.Paths.StorageDir == "" {
		problems = append(problems, "paths.storage_dir is required")
	}
	if c.Paths.TempDir != "" && c.Paths.TempDir == c.Paths.StorageDir {
		problems = append(problems, "paths.temp_dir and paths.storage_dir must differ")
	}
	if c.Limits.MaxUploadMB <= 0 {
		problems = append(problems, "limits.max_upload_mb must be positive")
	}
	if c.Limits.DeliveryCapMB <= 0 {
		problems = append(problems, "limits.delivery_cap_mb must be positive")
	}
	if len(c.Formats.VideoExtensions) == 0 && len(c.Formats.AudioExtensions) == 0 {
		problems = append(problems, "formats: at least one extension allow-list must be non-empty")
	}
	if c.Cleanup.TempMaxAgeMinutes <= 0 {
		problems = append(problems, "cleanup.temp_max_age_minutes must be positive")
	}
	if c.Cleanup.SweepIntervalMinutes <= 0 {
		problems = append(problems, "cleanup.sweep_interval_minutes must be positive")
	}
	if len(c.Quality.Audio) == 0 {
		problems = append(problems, "quality.audio presets are required")
	}
	if len(c.Quality.Video) == 0 {
		problems = append(problems, "quality.video presets are required")
	}
	if len(c.Quality.Download) == 0 {
		problems = append(problems, "quality.download tiers are required")
	}
	for _, preset := range c.Quality.Video {
		if _, _, err := ParseResolution(preset.Resolution); err != nil {
			problems = append(problems, fmt.Sprintf("quality.video %q: %v", preset.Key, err))
		}
	}
	for _, tier := range c.Quality.Download {
		if tier.MaxHeight <= 0 {
			problems = append(problems, fmt.Sprintf("quality.download %q: max_height must be positive", tier.Key))
		}
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// ParseResolution splits a "WxH" resolution string into its dimensions.
func ParseResolution(value string) (width, height int, err error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(value)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("resolution %q is not WxH", value)
	}
	width, err = strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("resolution %q has invalid width", value)
	}
	height, err = strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("resolution %q has invalid height", value)
	}
	return width, height, nil
}
