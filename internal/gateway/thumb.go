package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

const placeholderSVG = `<svg xmlns='http://www.w3.org/2000/svg' width='640' height='360'><rect width='100%' height='100%' fill='#081028'/><text x='50%' y='50%' fill='#777' font-family='Arial' font-size='20' dominant-baseline='middle' text-anchor='middle'>Preview</text></svg>`

// ThumbnailFromLink derives a thumbnail reference from a video link. For a
// recognized YouTube link the thumbnail is the predictable hqdefault image
// for the extracted video id; anything else gets a procedural inline SVG
// placeholder. The derivation is a pure function of the link string and
// always returns some image reference.
func ThumbnailFromLink(link string) string {
	if videoID, ok := youtubeVideoID(link); ok {
		return fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID)
	}
	return "data:image/svg+xml;utf8," + url.PathEscape(placeholderSVG)
}

// EmbedFromLink derives an embeddable player URL. Recognized YouTube links
// map onto the no-related embed endpoint; other links embed as-is.
func EmbedFromLink(link string) string {
	if videoID, ok := youtubeVideoID(link); ok {
		return fmt.Sprintf("https://www.youtube.com/embed/%s?rel=0", videoID)
	}
	return link
}

// youtubeVideoID extracts the video identifier from youtube.com and
// youtu.be links: the v query parameter when present, else the last path
// segment.
func youtubeVideoID(link string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", false
	}
	host := parsed.Hostname()
	if !strings.Contains(host, "youtube") && !strings.Contains(host, "youtu.be") {
		return "", false
	}
	if v := parsed.Query().Get("v"); v != "" {
		return v, true
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return "", false
	}
	return last, true
}
