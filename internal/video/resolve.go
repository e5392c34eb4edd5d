package video

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// ResolveID extracts the 11 character identifier that follows a v= parameter or
// a path separator. ok is false when the reference holds no identifier.
func ResolveID(ref string) (string, bool) {
	match := videoIDPattern.FindStringSubmatch(ref)
	if match == nil {
		return "", false
	}
	return match[1], true
}

type EmbedOptions struct {
	Autoplay     bool
	Loop         bool
	HideControls bool
	Mute         bool
	EnableJSAPI  bool
	StartSeconds int
}

// EmbedURL builds the iframe URL for a resolved identifier.
func EmbedURL(videoID string, opts EmbedOptions) string {
	params := url.Values{}
	if opts.Autoplay {
		params.Set("autoplay", "1")
	}
	if opts.Loop {
		params.Set("loop", "1")
		params.Set("playlist", videoID)
	}
	if opts.HideControls {
		params.Set("controls", "0")
	}
	if opts.Mute {
		params.Set("mute", "1")
	}
	if opts.EnableJSAPI {
		params.Set("enablejsapi", "1")
	}
	if opts.StartSeconds > 0 {
		params.Set("start", strconv.Itoa(opts.StartSeconds))
	}

	params.Set("modestbranding", "1")
	params.Set("iv_load_policy", "3")
	params.Set("rel", "0")
	params.Set("disablekb", "1")
	params.Set("fs", "0")

	return fmt.Sprintf("https://www.youtube.com/embed/%s?%s", videoID, params.Encode())
}
