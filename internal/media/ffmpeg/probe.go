package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"mediagate/internal/media"
)

type probePayload struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		SampleRate   string `json:"sample_rate"`
		Channels     int    `json:"channels"`
	} `json:"streams"`
}

// Probe runs ffprobe against a local file and parses its JSON report.
func (c *Client) Probe(ctx context.Context, path string) (media.ProbeResult, error) {
	if strings.TrimSpace(path) == "" {
		return media.ProbeResult{}, errors.New("path required")
	}
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
	stdout, stderr, err := c.exec.Run(ctx, c.ffprobeBinary, args)
	if err != nil {
		if missingBinary(err) {
			return media.ProbeResult{}, media.Wrap(media.ErrToolMissing, "probe", c.ffprobeBinary, err)
		}
		return media.ProbeResult{}, media.Wrap(media.ErrToolError, "probe", tail(stderr), err)
	}

	var payload probePayload
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return media.ProbeResult{}, media.Wrap(media.ErrToolError, "probe", "malformed ffprobe output", err)
	}

	result := media.ProbeResult{
		Container:       payload.Format.FormatName,
		DurationSeconds: parseFloat(payload.Format.Duration),
		SizeBytes:       parseInt(payload.Format.Size),
		BitrateBps:      parseInt(payload.Format.BitRate),
	}
	for _, s := range payload.Streams {
		stream := media.Stream{Codec: s.CodecName}
		switch s.CodecType {
		case "video":
			stream.Kind = media.StreamVideo
			stream.Width = s.Width
			stream.Height = s.Height
			stream.FPS = parseFrameRate(s.AvgFrameRate)
		case "audio":
			stream.Kind = media.StreamAudio
			stream.SampleRateHz = int(parseInt(s.SampleRate))
			stream.Channels = s.Channels
		default:
			continue
		}
		result.Streams = append(result.Streams, stream)
	}
	return result, nil
}

func parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseInt(value string) int64 {
	parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// parseFrameRate handles ffprobe's rational notation ("30000/1001").
func parseFrameRate(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" || value == "0/0" {
		return 0
	}
	num, den, found := strings.Cut(value, "/")
	if !found {
		return parseFloat(value)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}
