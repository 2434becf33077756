package gateway

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mediagate/internal/artifacts"
	"mediagate/internal/media"
	"mediagate/internal/session"
	"mediagate/internal/textutil"
)

// userErrorCap bounds every user-facing error so oversized tool output can
// never break the chat protocol layer.
const userErrorCap = 200

var titleCaser = cases.Title(language.English)

const msgWelcome = "Welcome! Send me a media file to convert it, or paste a link to download from a supported site. Use /help for the full command list."

const msgHelp = `What I can do:
- Send a video or audio file and pick an action (info, convert, re-encode, save).
- Paste a link and pick a download quality.

Commands:
/files - list your saved files
/delete <name> - remove one saved file
/clear - remove all saved files
/cancel - abandon the current operation`

const msgGuidance = "I spotted a possible link but could not parse it. Supported platforms: YouTube (videos and shorts), Instagram (posts and reels), TikTok, Twitter/X, Facebook, Vimeo, Reddit."

const msgStateExpired = "That action has expired. Please start over."

const msgInternalError = "Something went wrong on our side. Please try again."

const msgCancelled = "Cancelled."

const msgNothingToCancel = "Nothing to cancel."

func msgUnsupportedFormat(ext string, supported []string) string {
	return fmt.Sprintf("Sorry, %s files are not supported. Supported formats: %s", ext, strings.Join(supported, ", "))
}

func msgFileTooBig(sizeBytes, limitBytes int64) string {
	return fmt.Sprintf("This file is %s, which is over the %s limit.",
		textutil.FormatSize(sizeBytes), textutil.FormatSize(limitBytes))
}

func msgRightsPrompt(fileName string) string {
	return fmt.Sprintf("Received %q. Do you confirm you have the rights to process this file?", fileName)
}

func msgActionPrompt(fileName string) string {
	return fmt.Sprintf("What should I do with %q?", fileName)
}

const msgQualityPrompt = "Pick a quality:"

func msgMetadataSummary(fileName string, probe media.ProbeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", fileName)
	fmt.Fprintf(&b, "Container: %s\n", probe.Container)
	fmt.Fprintf(&b, "Duration: %s\n", textutil.FormatDuration(int64(probe.DurationSeconds)))
	fmt.Fprintf(&b, "Size: %s", textutil.FormatSize(probe.SizeBytes))
	if probe.BitrateBps > 0 {
		fmt.Fprintf(&b, "\nBitrate: %s", textutil.FormatBitrate(probe.BitrateBps))
	}
	for _, stream := range probe.Streams {
		switch stream.Kind {
		case media.StreamVideo:
			fmt.Fprintf(&b, "\nVideo: %s %dx%d", stream.Codec, stream.Width, stream.Height)
			if stream.FPS > 0 {
				fmt.Fprintf(&b, " @ %.3g fps", stream.FPS)
			}
		case media.StreamAudio:
			fmt.Fprintf(&b, "\nAudio: %s", stream.Codec)
			if stream.SampleRateHz > 0 {
				fmt.Fprintf(&b, " %d Hz", stream.SampleRateHz)
			}
			if stream.Channels > 0 {
				fmt.Fprintf(&b, " %dch", stream.Channels)
			}
		}
	}
	return b.String()
}

func msgSaved(name string) string {
	return fmt.Sprintf("Saved as %q.", name)
}

const msgFetchingInfo = "Looking up that link..."

const msgChooseFormat = "Choose a format:"

func msgRemoteInfo(info media.RemoteInfo, maxTitle int) string {
	title := info.Title
	if title == "" {
		title = "(untitled)"
	}
	title = textutil.Truncate(title, maxTitle)

	var b strings.Builder
	b.WriteString(title)
	if info.Uploader != "" {
		fmt.Fprintf(&b, "\nBy: %s", info.Uploader)
	}
	if info.Platform != "" {
		fmt.Fprintf(&b, "\nSource: %s", titleCaser.String(strings.ToLower(info.Platform)))
	}
	if info.DurationSeconds > 0 {
		fmt.Fprintf(&b, "\nDuration: %s", textutil.FormatDuration(info.DurationSeconds))
	}
	if info.ViewCount > 0 {
		fmt.Fprintf(&b, "\nViews: %s", textutil.FormatCount(info.ViewCount))
	}
	return b.String()
}

const msgDownloading = "Downloading, this can take a while..."

const msgProcessing = "Working on it..."

func msgResultTooLarge(sizeBytes, capBytes int64) string {
	return fmt.Sprintf("The result is %s, over the %s delivery limit. Try a lower quality or audio only.",
		textutil.FormatSize(sizeBytes), textutil.FormatSize(capBytes))
}

func msgFilesList(entries []artifacts.Entry) string {
	if len(entries) == 0 {
		return "Your storage is empty."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Your files (%d):", len(entries))
	for _, entry := range entries {
		fmt.Fprintf(&b, "\n- %s (%s)", entry.Name, textutil.FormatSize(entry.Size))
	}
	return b.String()
}

func msgDeleted(name string) string {
	return fmt.Sprintf("Deleted %q.", name)
}

func msgCleared(count int) string {
	if count == 0 {
		return "Your storage was already empty."
	}
	return fmt.Sprintf("Deleted %d file(s).", count)
}

// userErrorMessage renders any flow error as a bounded, human-readable
// reply. Control characters are stripped and length is capped so the
// transport never chokes on raw tool output.
func userErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrStateExpired):
		return msgStateExpired
	case errors.Is(err, media.ErrToolMissing):
		return textutil.Truncate("A required tool is not installed: "+err.Error(), userErrorCap)
	case errors.Is(err, media.ErrAuthRequired):
		return "This source requires signing in. Configure a cookies file and try again."
	case errors.Is(err, media.ErrUnavailable):
		return "This content is unavailable. It may be private, deleted, or blocked in this region."
	case errors.Is(err, media.ErrTooLarge):
		return "The source is too large to deliver. Try a lower quality or audio only."
	case errors.Is(err, artifacts.ErrOutsideStore):
		return "That file name is not valid."
	default:
		return textutil.Truncate("Something went wrong: "+err.Error(), userErrorCap)
	}
}
