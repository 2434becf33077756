package config

// Default returns a configuration populated with shipped defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir:         "~/.local/share/mediagate/temp",
			StorageDir:      "~/.local/share/mediagate/storage",
			LogDir:          "~/.local/share/mediagate/logs",
			TransportSocket: "",
			ControlSocket:   "",
		},
		Limits: Limits{
			MaxUploadMB:    2000,
			DeliveryCapMB:  50,
			MaxTitleLength: 100,
		},
		Formats: Formats{
			VideoExtensions: []string{".mp4", ".avi", ".mkv", ".mov", ".webm", ".flv"},
			AudioExtensions: []string{".mp3", ".wav", ".aac", ".flac", ".ogg", ".m4a"},
		},
		Quality: Quality{
			Audio: []AudioPreset{
				{Key: "low", Bitrate: "128k", Label: "128 kbps (Low)"},
				{Key: "medium", Bitrate: "192k", Label: "192 kbps (Medium)"},
				{Key: "high", Bitrate: "320k", Label: "320 kbps (High)"},
			},
			Video: []VideoPreset{
				{Key: "480p", Resolution: "854x480", Label: "480p (SD)"},
				{Key: "720p", Resolution: "1280x720", Label: "720p (HD)"},
				{Key: "1080p", Resolution: "1920x1080", Label: "1080p (Full HD)"},
			},
			Download: []DownloadTier{
				{Key: "360p", MaxHeight: 360, Label: "360p"},
				{Key: "480p", MaxHeight: 480, Label: "480p"},
				{Key: "720p", MaxHeight: 720, Label: "720p"},
				{Key: "1080p", MaxHeight: 1080, Label: "1080p"},
			},
		},
		Cleanup: Cleanup{
			SweepIntervalMinutes: 15,
			TempMaxAgeMinutes:    60,
		},
		Tools: Tools{
			FFmpegBinary:           "ffmpeg",
			FFprobeBinary:          "ffprobe",
			YtdlpBinary:            "yt-dlp",
			CookiesFile:            "",
			TranscodeTimeoutMin:    30,
			InfoFetchTimeoutSec:    60,
			DownloadTimeoutMin:     30,
			DeliveryTimeoutMinutes: 30,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
