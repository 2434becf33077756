package gateway

import (
	"strings"

	"mediagate/internal/config"
	"mediagate/internal/messaging"
)

// Button payload codes. The connector echoes these back verbatim, so they
// form a stable wire vocabulary.
const (
	codeRightsConfirm = "rights_confirm"
	codeRightsCancel  = "rights_cancel"

	codeActMetadata     = "act_metadata"
	codeActExtractAudio = "act_extract_audio"
	codeActConvertMP3   = "act_convert_mp3"
	codeActVideoQuality = "act_video_quality"
	codeActConvertMP4   = "act_convert_mp4"
	codeActAudioQuality = "act_audio_quality"
	codeActSave         = "act_save"
	codeActCancel       = "act_cancel"

	prefixAudioQuality = "q_audio_"
	prefixVideoQuality = "q_video_"
	codeQualityCancel  = "q_cancel"

	prefixDownloadVideo = "dl_video_"
	codeDownloadAudio   = "dl_audio"
	codeDownloadCancel  = "dl_cancel"
)

// actionsFor derives the action menu from the file's extension. Metadata,
// save, and cancel are always offered; the rest depends on whether the
// extension is video or audio.
func actionsFor(cfg *config.Config, ext string) []messaging.Option {
	options := []messaging.Option{
		{Code: codeActMetadata, Label: "File info"},
	}
	switch {
	case cfg.IsVideoExtension(ext):
		options = append(options,
			messaging.Option{Code: codeActExtractAudio, Label: "Extract audio"},
			messaging.Option{Code: codeActConvertMP3, Label: "Convert to MP3"},
			messaging.Option{Code: codeActVideoQuality, Label: "Change video quality"},
		)
	case cfg.IsAudioExtension(ext):
		options = append(options,
			messaging.Option{Code: codeActConvertMP4, Label: "Convert to MP4"},
			messaging.Option{Code: codeActAudioQuality, Label: "Change audio quality"},
		)
	}
	options = append(options,
		messaging.Option{Code: codeActSave, Label: "Save to storage"},
		messaging.Option{Code: codeActCancel, Label: "Cancel"},
	)
	return options
}

// needsAudioQuality reports whether the action's quality step uses the
// audio presets.
func needsAudioQuality(action string) bool {
	switch action {
	case codeActExtractAudio, codeActConvertMP3, codeActConvertMP4, codeActAudioQuality:
		return true
	}
	return false
}

// needsVideoQuality reports whether the action's quality step uses the
// video presets.
func needsVideoQuality(action string) bool {
	return action == codeActVideoQuality
}

func audioQualityOptions(cfg *config.Config) []messaging.Option {
	options := make([]messaging.Option, 0, len(cfg.Quality.Audio)+1)
	for _, preset := range cfg.Quality.Audio {
		options = append(options, messaging.Option{Code: prefixAudioQuality + preset.Key, Label: preset.Label})
	}
	return append(options, messaging.Option{Code: codeQualityCancel, Label: "Cancel"})
}

func videoQualityOptions(cfg *config.Config) []messaging.Option {
	options := make([]messaging.Option, 0, len(cfg.Quality.Video)+1)
	for _, preset := range cfg.Quality.Video {
		options = append(options, messaging.Option{Code: prefixVideoQuality + preset.Key, Label: preset.Label})
	}
	return append(options, messaging.Option{Code: codeQualityCancel, Label: "Cancel"})
}

func downloadOptions(cfg *config.Config) []messaging.Option {
	options := make([]messaging.Option, 0, len(cfg.Quality.Download)+2)
	for _, tier := range cfg.Quality.Download {
		options = append(options, messaging.Option{Code: prefixDownloadVideo + tier.Key, Label: tier.Label})
	}
	options = append(options, messaging.Option{Code: codeDownloadAudio, Label: "Audio only"})
	return append(options, messaging.Option{Code: codeDownloadCancel, Label: "Cancel"})
}

// buttonKind classifies a decoded button payload.
type buttonKind int

const (
	buttonUnknown buttonKind = iota
	buttonRightsConfirm
	buttonRightsCancel
	buttonActionImmediate
	buttonActionQuality
	buttonUploadCancel
	buttonAudioQuality
	buttonVideoQuality
	buttonQualityCancel
	buttonDownloadVideo
	buttonDownloadAudio
	buttonDownloadCancel
)

// buttonPress is a decoded payload. code keeps the wire form for session
// and ledger records; key carries the preset or tier for the kinds that
// name one.
type buttonPress struct {
	kind buttonKind
	code string
	key  string
}

// decodeButton maps a wire payload to its press exactly once, at the
// dispatch boundary. Anything it cannot place is buttonUnknown.
func decodeButton(code string) buttonPress {
	press := buttonPress{code: code}
	switch code {
	case codeRightsConfirm:
		press.kind = buttonRightsConfirm
	case codeRightsCancel:
		press.kind = buttonRightsCancel
	case codeActMetadata, codeActSave:
		press.kind = buttonActionImmediate
	case codeActExtractAudio, codeActConvertMP3, codeActVideoQuality, codeActConvertMP4, codeActAudioQuality:
		press.kind = buttonActionQuality
	case codeActCancel:
		press.kind = buttonUploadCancel
	case codeQualityCancel:
		press.kind = buttonQualityCancel
	case codeDownloadAudio:
		press.kind = buttonDownloadAudio
	case codeDownloadCancel:
		press.kind = buttonDownloadCancel
	default:
		switch {
		case strings.HasPrefix(code, prefixAudioQuality):
			press.kind = buttonAudioQuality
			press.key = strings.TrimPrefix(code, prefixAudioQuality)
		case strings.HasPrefix(code, prefixVideoQuality):
			press.kind = buttonVideoQuality
			press.key = strings.TrimPrefix(code, prefixVideoQuality)
		case strings.HasPrefix(code, prefixDownloadVideo):
			press.kind = buttonDownloadVideo
			press.key = strings.TrimPrefix(code, prefixDownloadVideo)
		}
	}
	return press
}
