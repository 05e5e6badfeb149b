package likers

import (
	"fmt"
	"regexp"
	"strings"
)

// shortcodeAlphabet is the URL-safe base64 alphabet Instagram uses to encode
// media identifiers into post shortcodes.
const shortcodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

var shortcodePattern = regexp.MustCompile(`/(?:p|reel|tv)/([^/?#]+)/?`)

// ShortcodeFromURL extracts the shortcode segment from a post URL.
func ShortcodeFromURL(postURL string) (string, error) {
	m := shortcodePattern.FindStringSubmatch(postURL)
	if m == nil {
		return "", fmt.Errorf("invalid post URL: expected https://www.instagram.com/p/<shortcode>/")
	}
	return m[1], nil
}

// MediaPkFromShortcode decodes a post shortcode into its numeric media
// identifier. Shortcodes longer than 11 characters carry extra private-id
// bytes; only the leading 11 encode the pk.
func MediaPkFromShortcode(shortcode string) (int64, error) {
	if shortcode == "" {
		return 0, fmt.Errorf("empty shortcode")
	}
	if len(shortcode) > 11 {
		shortcode = shortcode[:11]
	}
	var pk int64
	for _, ch := range shortcode {
		idx := strings.IndexRune(shortcodeAlphabet, ch)
		if idx < 0 {
			return 0, fmt.Errorf("invalid shortcode character %q", ch)
		}
		pk = pk*64 + int64(idx)
	}
	return pk, nil
}
