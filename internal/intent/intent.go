// Package intent decides which workflow should answer a message.
package intent

import "strings"

type Mode string

const (
	ModeChat     Mode = "chat"
	ModePlaylist Mode = "playlist"
)

// Trigger phrases for playlist-style requests. Matching is best effort: an
// unusually phrased playlist request falls through to chat mode, and the chat
// workflow can still delegate to playlist generation on its own.
var playlistTriggers = []string{
	"create playlist",
	"make playlist",
	"create a playlist",
	"make a playlist",
	"make me a playlist",
	"create for me a playlist",
	"create me a playlist",
	"songs for",
	"music for",
	"podcasts for",
	"recommendations",
}

// Detect classifies a raw message as a chat or playlist request.
func Detect(message string) Mode {
	lower := strings.ToLower(message)
	for _, trigger := range playlistTriggers {
		if strings.Contains(lower, trigger) {
			return ModePlaylist
		}
	}
	return ModeChat
}

// Parse normalizes a caller-supplied mode. Anything other than an explicit
// "chat" or "playlist" means the caller wants automatic detection.
func Parse(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chat":
		return ModeChat, true
	case "playlist":
		return ModePlaylist, true
	default:
		return "", false
	}
}
