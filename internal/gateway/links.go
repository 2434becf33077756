package gateway

import (
	"regexp"
	"strings"
)

// Link shapes the download flow accepts. Matching is intentionally narrow:
// an unrecognized link never starts a download.
var platformLinkPattern = regexp.MustCompile(
	`https?://(?:www\.)?` +
		`(?:youtube\.com/(?:watch\?v=|shorts/)|youtu\.be/|` +
		`instagram\.com/(?:p/|reel/|reels/)|` +
		`tiktok\.com/@[\w.-]+/video/|vm\.tiktok\.com/|` +
		`twitter\.com/[^/\s]+/status/|x\.com/[^/\s]+/status/|` +
		`facebook\.com/[^\s]+/videos/|fb\.watch/|` +
		`vimeo\.com/|` +
		`reddit\.com/r/[^\s]+/comments/)` +
		`[\w\-._~:/?#\[\]@!$&'()*+,;=%]+`)

var linkHints = []string{"http://", "https://", "youtube", "youtu.be", "instagram", "tiktok"}

// recognizedLink returns the first supported platform link in text, or "".
func recognizedLink(text string) string {
	return platformLinkPattern.FindString(text)
}

// looksLikeLink reports whether text resembles a link without matching the
// supported shapes.
func looksLikeLink(text string) bool {
	lower := strings.ToLower(text)
	for _, hint := range linkHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
